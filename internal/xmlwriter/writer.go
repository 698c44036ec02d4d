// =============================================================================
// Fiscal Normalizer - XML Writer
// =============================================================================
//
// Serialises a normalized table as XML:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <documentos>
//     <registro n="1">
//       <ide_nNF>10</ide_nNF>
//       <emit_CNPJ>12345678000190</emit_CNPJ>
//     </registro>
//   </documentos>
//
// The document is built as an etree tree. Every column becomes one child
// element, in table order. Null cells are omitted. Column names that are not valid XML names are sanitised:
//   - characters outside [A-Za-z0-9_.-] become '_'
//   - a name not starting with a letter or '_' (or starting with "xml")
//     gets a leading '_'
//   - collisions after sanitising get a numeric suffix (_2, _3, ...)
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/beevik/etree"
	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
)

// =============================================================================
// OPTIONS
// =============================================================================

// GenerateOptions controls the XML output.
type GenerateOptions struct {
	// Indent is the number of spaces per nesting level. etree.NoIndent
	// writes the whole document on one line.
	Indent int

	IncludeXMLDeclaration bool
	XMLVersion            string
	Encoding              string

	// RootElement wraps the whole document.
	RootElement string

	// RecordElement wraps one table row.
	RecordElement string

	// RecordIndexAttribute holds the 1-based row number. Empty disables it.
	RecordIndexAttribute string

	// RootAttributes are written on the root element, sorted by name.
	RootAttributes map[string]string
}

// DefaultGenerateOptions returns the default output settings.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                2,
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
		RootElement:           "documentos",
		RecordElement:         "registro",
		RecordIndexAttribute:  "n",
		RootAttributes:        make(map[string]string),
	}
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate renders t with the default options.
func Generate(t *types.Table) ([]byte, error) {
	return GenerateWithOptions(t, DefaultGenerateOptions())
}

// GenerateWithOptions renders t.
func GenerateWithOptions(t *types.Table, options GenerateOptions) ([]byte, error) {
	doc, err := Build(t, options)
	if err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	if _, err := doc.WriteTo(&buffer); err != nil {
		return nil, fmt.Errorf("failed to serialise XML: %w", err)
	}
	return buffer.Bytes(), nil
}

// Build returns the indented document for t.
func Build(t *types.Table, options GenerateOptions) (*etree.Document, error) {
	if !isXMLName(options.RootElement) || !isXMLName(options.RecordElement) {
		return nil, fmt.Errorf("invalid root or record element name: %q, %q",
			options.RootElement, options.RecordElement)
	}
	if options.RecordIndexAttribute != "" && !isAttrName(options.RecordIndexAttribute) {
		return nil, fmt.Errorf("invalid record index attribute %q", options.RecordIndexAttribute)
	}

	doc := etree.NewDocument()
	if options.IncludeXMLDeclaration {
		doc.CreateProcInst("xml", fmt.Sprintf(`version="%s" encoding="%s"`,
			options.XMLVersion, options.Encoding))
	}

	root := doc.CreateElement(options.RootElement)
	if err := setRootAttributes(root, options.RootAttributes); err != nil {
		return nil, err
	}

	columns := t.Columns()
	names := ElementNames(columns)

	for i := 0; i < t.Len(); i++ {
		record := root.CreateElement(options.RecordElement)
		if options.RecordIndexAttribute != "" {
			record.CreateAttr(options.RecordIndexAttribute, fmt.Sprint(i+1))
		}
		for j, col := range columns {
			if value, ok := t.Value(i, col); ok {
				record.CreateElement(names[j]).SetText(value)
			}
		}
	}

	doc.Indent(options.Indent)
	return doc, nil
}

// WriteFile renders t with the default options and writes it to path.
func WriteFile(path string, t *types.Table) error {
	doc, err := Build(t, DefaultGenerateOptions())
	if err != nil {
		return err
	}
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("failed to write XML file: %w", err)
	}
	return nil
}

func setRootAttributes(root *etree.Element, attrs map[string]string) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !isAttrName(k) {
			return fmt.Errorf("invalid attribute name %q", k)
		}
		root.CreateAttr(k, attrs[k])
	}
	return nil
}

// =============================================================================
// NAMES
// =============================================================================

// ElementNames returns one unique, valid element name per column.
func ElementNames(columns []string) []string {
	out := make([]string, len(columns))
	used := make(map[string]bool, len(columns))

	for i, col := range columns {
		name := SanitizeName(col)
		if used[name] {
			base := name
			for n := 2; used[name]; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
			}
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// SanitizeName turns an arbitrary column name into a valid XML element name.
func SanitizeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if isNameRune(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}

	name := sb.String()
	if name == "" {
		return "_"
	}
	first := []rune(name)[0]
	if !(unicode.IsLetter(first) || first == '_') || strings.HasPrefix(strings.ToLower(name), "xml") {
		name = "_" + name
	}
	return name
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.'
}

func isXMLName(s string) bool {
	return s != "" && SanitizeName(s) == s
}

// isAttrName also admits prefixed and reserved names such as xmlns:nfe.
func isAttrName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !(unicode.IsLetter(r) || r == '_') {
			return false
		}
		if !isNameRune(r) && r != ':' {
			return false
		}
	}
	return true
}
