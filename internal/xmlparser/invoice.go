// =============================================================================
// Fiscal Normalizer - Invoice Dialect (NF-e family)
// =============================================================================
//
// Extracts the fixed sections of NF-e style documents into prefixed keys and
// emits one row per line item (<det>), repeating the header on every row.
//
// LAYOUT HANDLED:
//   nfeProc / NFe / infNFe
//   ├── ide, emit, dest, total, transp, cobr, pag, infAdic   (sections)
//   └── det*                                                 (items)
//
// Section leaves are keyed `<prefix>_<tag>` without intermediate path, so
// emit/enderEmit/xMun becomes emit_xMun.
//
// =============================================================================

package xmlparser

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/fiscal-normalizer/internal/textutil"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
	"go.uber.org/zap"
)

// invoiceDocumentTags are tried in order; the first tag with any match
// defines the documents of the file. Manifests and waybills reference the
// documents they carry (infMDFe > infCTe > infNFe), so enclosing layouts are
// tried first.
var invoiceDocumentTags = []string{
	"infMDFe", "infCTe", "infBPe", "infNFCom", "infNF3e",
	"infNFe", "NFe", "nf", "NotaFiscal", "Nota",
}

type section struct {
	tag    string
	prefix string
}

var invoiceSections = []section{
	{"ide", "ide"},
	{"emit", "emit"},
	{"dest", "dest"},
	{"total", "total"},
	{"transp", "transp"},
	{"cobr", "cobr"},
	{"pag", "pag"},
	{"infAdic", "infadic"},
}

const invoiceItemTag = "det"

// parseInvoice returns the rows and ordered columns of an invoice-family
// document.
func parseInvoice(root *etree.Element, log *zap.Logger) ([]*types.FlatRecord, []string) {
	docs := findFirstOf(root, invoiceDocumentTags)
	if len(docs) == 0 {
		log.Debug("No invoice document element found, using root", zap.String("root", root.Tag))
		docs = []*etree.Element{root}
	}

	var rows []*types.FlatRecord
	for _, doc := range docs {
		rows = append(rows, invoiceRows(doc)...)
	}
	return rows, orderColumns(unionKeys(rows), invoiceGroups)
}

func invoiceRows(doc *etree.Element) []*types.FlatRecord {
	header := types.NewFlatRecord()
	for _, s := range invoiceSections {
		if el := findFirst(doc, s.tag); el != nil {
			insertSection(header, el, s.prefix)
		}
	}

	items := findAll(doc, invoiceItemTag)
	if len(items) == 0 {
		return []*types.FlatRecord{header}
	}

	rows := make([]*types.FlatRecord, 0, len(items))
	for i, item := range items {
		rows = append(rows, itemRow(header, item, i+1))
	}
	return rows
}

// insertSection adds every leaf of el as `<prefix>_<tag>`. A leaf named like
// the prefix itself is skipped.
func insertSection(rec *types.FlatRecord, el *etree.Element, prefix string) {
	for _, leaf := range leaves(el) {
		tag := localName(leaf.Tag)
		if textutil.Fold(tag) == prefix {
			continue
		}
		if text, ok := leafText(leaf); ok {
			rec.InsertIfAbsent(prefix+"_"+tag, text)
		}
	}
}

// itemRow copies header and adds item_numero plus one item_<tag> key per
// leaf found anywhere under item.
func itemRow(header *types.FlatRecord, item *etree.Element, n int) *types.FlatRecord {
	row := header.Clone()
	row.InsertIfAbsent("item_numero", strconv.Itoa(n))
	insertSection(row, item, "item")
	return row
}
