package xmlparser

import (
	"strings"

	"github.com/beevik/etree"
)

// findAll returns the outermost elements at or below scope whose local name
// equals name, ignoring case, in document order. Matches nested inside an
// earlier match are not returned.
func findAll(scope *etree.Element, name string) []*etree.Element {
	var out []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if strings.EqualFold(localName(el.Tag), name) {
			out = append(out, el)
			return
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	if scope != nil {
		walk(scope)
	}
	return out
}

// findBelow is findAll restricted to the descendants of scope; scope itself
// never matches.
func findBelow(scope *etree.Element, name string) []*etree.Element {
	if scope == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range scope.ChildElements() {
		out = append(out, findAll(c, name)...)
	}
	return out
}

// findFirst returns the first element at or below scope named name.
func findFirst(scope *etree.Element, name string) *etree.Element {
	if m := findAll(scope, name); len(m) > 0 {
		return m[0]
	}
	return nil
}

// findFirstOf tries each name in turn and returns the matches for the first
// name that has any.
func findFirstOf(scope *etree.Element, names []string) []*etree.Element {
	for _, n := range names {
		if m := findAll(scope, n); len(m) > 0 {
			return m
		}
	}
	return nil
}

// leaves returns el itself when it has no child elements, or every leaf
// below it in document order.
func leaves(el *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		children := e.ChildElements()
		if len(children) == 0 {
			out = append(out, e)
			return
		}
		for _, c := range children {
			walk(c)
		}
	}
	walk(el)
	return out
}

// leafText returns the trimmed text of a leaf element, or false when blank.
func leafText(el *etree.Element) (string, bool) {
	s := strings.TrimSpace(el.Text())
	return s, s != ""
}

// isNamespaceDecl reports whether attr is an xmlns declaration.
func isNamespaceDecl(attr etree.Attr) bool {
	return attr.Space == "xmlns" || (attr.Space == "" && attr.Key == "xmlns")
}
