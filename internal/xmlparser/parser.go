// =============================================================================
// Fiscal Normalizer - XML Parser Entry Point
// =============================================================================
//
// Turns one XML document into a normalized table:
//
//   1. Classify the root tag (classifier.go)
//   2. Dispatch to the dialect parser for the family
//   3. Merge the rows, pruning empty columns and duplicate rows
//
// =============================================================================

package xmlparser

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/fiscal-normalizer/internal/logging"
	"github.com/ginjaninja78/fiscal-normalizer/internal/merger"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
	"go.uber.org/zap"
)

// Result is the outcome of parsing one XML document.
type Result struct {
	// Family is the dialect the document was parsed as.
	Family Family

	// RootTag is the local name of the document root.
	RootTag string

	// Table holds one row per line item, or a single row when the document
	// has no items. A document without values yields a row with no columns.
	Table *types.Table
}

// Parse normalizes a parsed document.
func Parse(doc *etree.Document, log *zap.Logger) (*Result, error) {
	log = logging.OrNop(log)
	if doc == nil || doc.Root() == nil {
		return nil, fmt.Errorf("%w: document has no root element", ErrMalformedInput)
	}

	root := doc.Root()
	family := Classify(root)
	log.Debug("Classified document", zap.String("root", root.Tag), zap.Stringer("family", family))

	var table *types.Table
	switch family {
	case InvoiceFamily:
		rows, cols := parseInvoice(root, log)
		table = merger.Merge(types.NewTable(cols, rows))
	case ServiceInvoiceFamily:
		rows, cols := parseService(root, log)
		table = merger.Merge(types.NewTable(cols, rows))
	case Generic:
		table = flattenTable(root)
	default:
		return nil, fmt.Errorf("unhandled document family %d", family)
	}

	return &Result{Family: family, RootTag: localName(root.Tag), Table: table}, nil
}

// ParseFile reads and normalizes the XML file at path.
func ParseFile(path string, log *zap.Logger) (*Result, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(doc, log)
}

// ParseBytes reads and normalizes an in-memory XML document.
func ParseBytes(data []byte, log *zap.Logger) (*Result, error) {
	doc, err := ReadBytes(data)
	if err != nil {
		return nil, err
	}
	return Parse(doc, log)
}
