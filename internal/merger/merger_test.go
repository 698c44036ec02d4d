package merger

import (
	"testing"

	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(kv ...string) *types.FlatRecord {
	r := types.NewFlatRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.InsertIfAbsent(kv[i], kv[i+1])
	}
	return r
}

func TestMerge_KeepsFamilyExclusiveColumns(t *testing.T) {
	nfe := types.NewTable(
		[]string{"ide_nNF", "emit_CNPJ", "total_vNF"},
		[]*types.FlatRecord{record("ide_nNF", "1", "emit_CNPJ", "111", "total_vNF", "10.00")},
	)
	nfse := types.NewTable(
		[]string{"nfse_Numero", "prestador_Cnpj"},
		[]*types.FlatRecord{record("nfse_Numero", "77", "prestador_Cnpj", "222")},
	)

	merged := Merge(nfe, nfse)

	require.Equal(t, 2, merged.Len())
	assert.Equal(t, []string{"ide_nNF", "emit_CNPJ", "total_vNF", "nfse_Numero", "prestador_Cnpj"}, merged.Columns())

	_, ok := merged.Value(1, "emit_CNPJ")
	assert.False(t, ok)
}

func TestMerge_DropsColumnsNullEverywhere(t *testing.T) {
	tbl := types.NewTable(
		[]string{"a", "b", "c"},
		[]*types.FlatRecord{record("a", "1"), record("a", "2", "c", "x")},
	)

	merged := Merge(tbl)

	assert.Equal(t, []string{"a", "c"}, merged.Columns())
	assert.Equal(t, 2, merged.Len())
}

func TestMerge_RemovesExactDuplicatesInOrder(t *testing.T) {
	tbl := types.NewTable(
		[]string{"a", "b"},
		[]*types.FlatRecord{
			record("a", "1", "b", "x"),
			record("a", "2"),
			record("a", "1", "b", "x"),
			record("a", "2", "b", "y"),
		},
	)

	merged := Merge(tbl)

	require.Equal(t, 3, merged.Len())
	assert.Equal(t, []string{"1", "x"}, merged.RowValues(0))
	assert.Equal(t, []string{"2", ""}, merged.RowValues(1))
	assert.Equal(t, []string{"2", "y"}, merged.RowValues(2))
}

func TestMerge_IdempotentOnRepeatedInput(t *testing.T) {
	tbl := types.NewTable(
		[]string{"a", "b"},
		[]*types.FlatRecord{record("a", "1"), record("a", "2", "b", "z")},
	)

	once := Merge(tbl)
	twice := Merge(tbl, tbl)

	assert.Equal(t, once.Columns(), twice.Columns())
	assert.Equal(t, once.Len(), twice.Len())
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	tbl := types.NewTable([]string{"a", "b"}, []*types.FlatRecord{record("a", "1")})

	_ = Merge(tbl)

	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
}

func TestMerge_Empty(t *testing.T) {
	merged := Merge()
	assert.True(t, merged.IsEmpty())

	merged = Merge(nil, types.NewTable(nil, nil))
	assert.Equal(t, 0, merged.Len())
}

func TestAppend(t *testing.T) {
	base := Merge(types.NewTable([]string{"a"}, []*types.FlatRecord{record("a", "1")}))
	extra := types.NewTable([]string{"b"}, []*types.FlatRecord{record("b", "2")})

	out := Append(base, extra)

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"a", "b"}, out.Columns())
}
