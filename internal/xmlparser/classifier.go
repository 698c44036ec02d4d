// =============================================================================
// Fiscal Normalizer - Tag Classifier
// =============================================================================
//
// Chooses how a document is parsed from its root tag alone. The root's local
// name is case-folded and matched as a substring against an ordered marker
// table; the first marker found wins. Roots matching nothing go to the
// generic flattener.
//
// =============================================================================

package xmlparser

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/fiscal-normalizer/internal/textutil"
)

// Family identifies the parser strategy for a document.
type Family int

const (
	// Generic documents are flattened without dialect knowledge.
	Generic Family = iota
	// InvoiceFamily covers NF-e and its relatives (NFC-e, CT-e, MDF-e, BP-e,
	// NFCom, NF3e).
	InvoiceFamily
	// ServiceInvoiceFamily covers municipal NFS-e layouts.
	ServiceInvoiceFamily
)

func (f Family) String() string {
	switch f {
	case InvoiceFamily:
		return "nfe"
	case ServiceInvoiceFamily:
		return "nfse"
	default:
		return "generic"
	}
}

type marker struct {
	token  string
	family Family
}

// markers is matched in order. "nfse" does not contain "nfe", so the invoice
// markers may safely come first.
var markers = []marker{
	{"nfe", InvoiceFamily},
	{"infnfe", InvoiceFamily},
	{"nfeproc", InvoiceFamily},
	{"nfce", InvoiceFamily},
	{"nfcescan", InvoiceFamily},
	{"cte", InvoiceFamily},
	{"infcte", InvoiceFamily},
	{"mdfe", InvoiceFamily},
	{"infmdfe", InvoiceFamily},
	{"bpe", InvoiceFamily},
	{"infbpe", InvoiceFamily},
	{"nfcom", InvoiceFamily},
	{"infnfcom", InvoiceFamily},
	{"nf3e", InvoiceFamily},
	{"infnf3e", InvoiceFamily},
	{"nfse", ServiceInvoiceFamily},
	{"nfservico", ServiceInvoiceFamily},
	{"gerarnfseresposta", ServiceInvoiceFamily},
}

// Classify returns the parser family for a document root. A nil root is
// Generic.
func Classify(root *etree.Element) Family {
	if root == nil {
		return Generic
	}
	return ClassifyTag(root.Tag)
}

// ClassifyTag classifies a raw tag name, accepting `{namespace}tag` and
// `prefix:tag` forms.
func ClassifyTag(tag string) Family {
	name := textutil.Fold(localName(tag))
	for _, m := range markers {
		if strings.Contains(name, m.token) {
			return m.family
		}
	}
	return Generic
}

// localName strips a Clark-notation namespace or a namespace prefix.
func localName(tag string) string {
	if i := strings.LastIndexByte(tag, '}'); i >= 0 {
		tag = tag[i+1:]
	}
	if i := strings.LastIndexByte(tag, ':'); i >= 0 {
		tag = tag[i+1:]
	}
	return tag
}
