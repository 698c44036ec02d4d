package xmlparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTag(t *testing.T) {
	tests := []struct {
		tag  string
		want Family
	}{
		{"{http://www.portalfiscal.inf.br/nfe}nfeProc", InvoiceFamily},
		{"NFe", InvoiceFamily},
		{"nfe:NFe", InvoiceFamily},
		{"cteProc", InvoiceFamily},
		{"mdfeProc", InvoiceFamily},
		{"NFCom", InvoiceFamily},
		{"nf3eProc", InvoiceFamily},
		{"BPe", InvoiceFamily},
		{"CompNfse", ServiceInvoiceFamily},
		{"GerarNfseResposta", ServiceInvoiceFamily},
		{"ConsultarNfseServicoPrestadoResposta", ServiceInvoiceFamily},
		{"NFServico", ServiceInvoiceFamily},
		{"Relatorio", Generic},
		{"", Generic},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTag(tt.tag))
		})
	}
}

func TestClassify_NilRoot(t *testing.T) {
	assert.Equal(t, Generic, Classify(nil))
}

func TestFamilyString(t *testing.T) {
	assert.Equal(t, "nfe", InvoiceFamily.String())
	assert.Equal(t, "nfse", ServiceInvoiceFamily.String())
	assert.Equal(t, "generic", Generic.String())
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "infNFe", localName("{http://www.portalfiscal.inf.br/nfe}infNFe"))
	assert.Equal(t, "infNFe", localName("nfe:infNFe"))
	assert.Equal(t, "infNFe", localName("infNFe"))
}
