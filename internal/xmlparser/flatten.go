// =============================================================================
// Fiscal Normalizer - Hierarchical Flattener
// =============================================================================
//
// Fallback for documents no dialect parser claims. Every leaf element and
// every attribute becomes one key built from the `_`-joined local names on the
// path below the root.
//
// EXAMPLE:
//   <Doc id="7"><Header><Num>1</Num></Header><Num>2</Num></Doc>
//   -> id=7, Header_Num=1, Num=2
//
// Paths are joined with '_' and not escaped, so <a><b>2</b></a> and a later
// <a_b>3</a_b> share the key a_b; like every other repeat, the first value
// (2) is kept.
//
// =============================================================================

package xmlparser

import (
	"sort"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
)

// Flatten collapses the tree under root into a single record. A key that is
// already populated keeps its first value.
func Flatten(root *etree.Element) *types.FlatRecord {
	rec := types.NewFlatRecord()
	if root == nil {
		return rec
	}
	flattenInto(rec, root, "")
	// A childless root has no path of its own; key its text by its tag.
	if len(root.ChildElements()) == 0 {
		if text, ok := leafText(root); ok {
			rec.InsertIfAbsent(localName(root.Tag), text)
		}
	}
	return rec
}

// flattenInto walks el depth-first. rec is owned by the caller for the whole
// walk.
func flattenInto(rec *types.FlatRecord, el *etree.Element, path string) {
	for _, attr := range el.Attr {
		if isNamespaceDecl(attr) {
			continue
		}
		rec.InsertIfAbsent(joinKey(path, localName(attr.Key)), attr.Value)
	}

	children := el.ChildElements()
	if len(children) == 0 {
		if path == "" {
			return
		}
		if text, ok := leafText(el); ok {
			rec.InsertIfAbsent(path, text)
		}
		return
	}

	for _, child := range children {
		flattenInto(rec, child, joinKey(path, localName(child.Tag)))
	}
}

// flattenTable wraps the flattened record in a one-row table with its
// columns sorted. A tree without any value yields a row with no columns.
func flattenTable(root *etree.Element) *types.Table {
	rec := Flatten(root)
	cols := rec.Keys()
	sort.Strings(cols)
	return types.NewTable(cols, []*types.FlatRecord{rec})
}

func joinKey(path, name string) string {
	if path == "" {
		return name
	}
	return path + "_" + name
}
