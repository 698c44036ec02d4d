package xmlparser

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
)

// Column groups, in output order, for each dialect.
var (
	invoiceGroups = []string{"ide_", "emit_", "dest_", "total_", "transp_", "cobr_", "pag_", "infadic_", "item_"}
	serviceGroups = []string{"nfse_", "prestador_", "tomador_", "intermediario_", "construcao_", "servico_", "item_"}
)

// orderColumns arranges columns by group, sorting within each group.
// Columns belonging to no group go last, sorted.
func orderColumns(columns []string, groups []string) []string {
	buckets := make([][]string, len(groups)+1)
	for _, c := range columns {
		idx := len(groups)
		for i, g := range groups {
			if strings.HasPrefix(c, g) {
				idx = i
				break
			}
		}
		buckets[idx] = append(buckets[idx], c)
	}

	out := make([]string, 0, len(columns))
	for _, b := range buckets {
		sort.Strings(b)
		out = append(out, b...)
	}
	return out
}

// unionKeys returns every key used by rows in first-seen order.
func unionKeys(rows []*types.FlatRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	return out
}
