package aggregator

import (
	"strings"

	"github.com/ginjaninja78/fiscal-normalizer/internal/textutil"
)

// Policy decides which columns carry monetary values and how they rank.
// All matching is substring matching on folded column names.
type Policy struct {
	// MonetaryTokens make a column a value candidate.
	MonetaryTokens []string `yaml:"monetary_tokens"`

	// ExclusionTokens disqualify a column even when it holds a monetary
	// token: rates, specific tax amounts, quantities, identifiers, dates.
	ExclusionTokens []string `yaml:"exclusion_tokens"`

	// PriorityTokens rank candidates; an earlier token outranks a later one
	// and a column matching none ranks last.
	PriorityTokens []string `yaml:"priority_tokens"`
}

// DefaultPolicy returns the built-in value policy.
func DefaultPolicy() Policy {
	return Policy{
		MonetaryTokens: []string{"valor", "vtotal", "vnf", "vprod", "price", "amount"},
		ExclusionTokens: []string{
			"aliquota", "percentual", "taxa",
			"vicms", "vipi", "vpis", "vcofins", "vbc", "vbcst", "vtottrib",
			"valoriss", "valorir", "valorcsll", "valorinss",
			"quantidade", "qtd", "numero", "id", "data",
			"cnpj", "cpf", "codigo", "ncm", "endereco", "nome", "razao",
		},
		PriorityTokens: []string{
			"valor",
			"total_vnf",
			"nfse_valorliquidonfse",
			"nfse_valorservicos",
			"total_vprod",
			"servico_valorservicos",
			"item_vprod",
		},
	}
}

// WithDefaults fills empty token lists from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	def := DefaultPolicy()
	if len(p.MonetaryTokens) == 0 {
		p.MonetaryTokens = def.MonetaryTokens
	}
	if len(p.ExclusionTokens) == 0 {
		p.ExclusionTokens = def.ExclusionTokens
	}
	if len(p.PriorityTokens) == 0 {
		p.PriorityTokens = def.PriorityTokens
	}
	return p
}

// Column is a value candidate column with its priority rank (lower wins).
type Column struct {
	Name string
	Rank int
}

type compiledPolicy struct {
	monetary  []string
	exclusion []string
	priority  []string
}

func compile(p Policy) compiledPolicy {
	p = p.WithDefaults()
	return compiledPolicy{
		monetary:  textutil.FoldAll(p.MonetaryTokens),
		exclusion: textutil.FoldAll(p.ExclusionTokens),
		priority:  textutil.FoldAll(p.PriorityTokens),
	}
}

// eligible reports whether a column is a value candidate. Exclusion wins
// over eligibility.
func (c compiledPolicy) eligible(column string) bool {
	name := textutil.Fold(column)
	return textutil.ContainsAny(name, c.monetary) && !textutil.ContainsAny(name, c.exclusion)
}

func (c compiledPolicy) rank(column string) int {
	name := textutil.Fold(column)
	for i, tok := range c.priority {
		if strings.Contains(name, tok) {
			return i
		}
	}
	return len(c.priority)
}

// candidateColumns returns the eligible columns in table order.
func (c compiledPolicy) candidateColumns(columns []string) []Column {
	var out []Column
	for _, col := range columns {
		if c.eligible(col) {
			out = append(out, Column{Name: col, Rank: c.rank(col)})
		}
	}
	return out
}
