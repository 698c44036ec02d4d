// =============================================================================
// Fiscal Normalizer - Service Invoice Dialect (NFS-e family)
// =============================================================================
//
// Municipal NFS-e layouts vary wildly between cities, so every section is
// looked up by a list of known element names and all matches contribute.
//
// SECTIONS:
//   nfse_          Nfse, nf, InfNfse, CompNfse, Valores, ValoresNfse
//   servico_       Servico, DadosServico
//   construcao_    ConstrucaoCivil
//   prestador_     PrestadorServico, Prestador, IdentificacaoPrestador
//   tomador_       Tomador, TomadorServico, IdentificacaoTomador
//   intermediario_ Intermediario, IntermediarioServico
//
// Counterparty leaves under an address or contact grouping are keyed
// <prefix>_endereco_<tag> and <prefix>_contato_<tag>.
//
// =============================================================================

package xmlparser

import (
	"github.com/beevik/etree"
	"github.com/ginjaninja78/fiscal-normalizer/internal/textutil"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
	"go.uber.org/zap"
)

var serviceDocumentTags = []string{"CompNfse", "InfNfse", "Nfse"}

type block struct {
	prefix string
	tags   []string
}

var serviceBlocks = []block{
	{"nfse", []string{"Nfse", "nf", "InfNfse", "CompNfse"}},
	{"nfse", []string{"Valores", "ValoresNfse"}},
	{"servico", []string{"Servico", "DadosServico"}},
	{"construcao", []string{"ConstrucaoCivil"}},
}

var serviceParties = []block{
	{"prestador", []string{"PrestadorServico", "Prestador", "IdentificacaoPrestador"}},
	{"tomador", []string{"Tomador", "TomadorServico", "IdentificacaoTomador"}},
	{"intermediario", []string{"Intermediario", "IntermediarioServico"}},
}

var (
	addressParents = map[string]bool{"endereco": true, "address": true, "enderecoprestador": true, "enderecotomador": true}
	contactParents = map[string]bool{"contato": true, "contact": true, "contatoprestador": true, "contatomador": true}
)

// parseService returns the rows and ordered columns of a service invoice.
func parseService(root *etree.Element, log *zap.Logger) ([]*types.FlatRecord, []string) {
	docs := findFirstOf(root, serviceDocumentTags)
	if len(docs) == 0 {
		log.Debug("No service document element found, using root", zap.String("root", root.Tag))
		docs = []*etree.Element{root}
	}

	var rows []*types.FlatRecord
	for _, doc := range docs {
		rows = append(rows, serviceRows(doc)...)
	}
	return rows, orderColumns(unionKeys(rows), serviceGroups)
}

// serviceRows builds the shared header from the blocks below doc, then one
// row per item. doc itself is never a block, so a root that is only named
// like one does not pull the items into the header.
func serviceRows(doc *etree.Element) []*types.FlatRecord {
	header := types.NewFlatRecord()
	for _, b := range serviceBlocks {
		for _, tag := range b.tags {
			for _, el := range findBelow(doc, tag) {
				insertSection(header, el, b.prefix)
			}
		}
	}
	for _, p := range serviceParties {
		for _, tag := range p.tags {
			for _, el := range findBelow(doc, tag) {
				insertParty(header, el, p.prefix)
			}
		}
	}

	items := serviceItems(doc)
	if len(items) == 0 {
		return []*types.FlatRecord{header}
	}

	rows := make([]*types.FlatRecord, 0, len(items))
	for i, item := range items {
		rows = append(rows, itemRow(header, item, i+1))
	}
	return rows
}

// insertParty adds the leaves of a counterparty block, qualifying them by an
// address or contact parent when there is one.
func insertParty(rec *types.FlatRecord, el *etree.Element, prefix string) {
	for _, leaf := range leaves(el) {
		tag := localName(leaf.Tag)
		if textutil.Fold(tag) == prefix {
			continue
		}
		text, ok := leafText(leaf)
		if !ok {
			continue
		}
		rec.InsertIfAbsent(partyKey(leaf, prefix, tag), text)
	}
}

func partyKey(leaf *etree.Element, prefix, tag string) string {
	if parent := leaf.Parent(); parent != nil {
		p := textutil.Fold(localName(parent.Tag))
		switch {
		case addressParents[p]:
			return prefix + "_endereco_" + tag
		case contactParents[p]:
			return prefix + "_contato_" + tag
		}
	}
	return prefix + "_" + tag
}

// serviceItems looks for item lists in the layouts seen in the wild:
// itens/lista, Item, ItensServico.
func serviceItems(doc *etree.Element) []*etree.Element {
	var items []*etree.Element
	for _, itens := range findAll(doc, "itens") {
		for _, c := range itens.ChildElements() {
			items = append(items, findAll(c, "lista")...)
		}
	}
	if len(items) > 0 {
		return items
	}
	if items = findAll(doc, "Item"); len(items) > 0 {
		return items
	}
	return findAll(doc, "ItensServico")
}
