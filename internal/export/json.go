package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ginjaninja78/fiscal-normalizer/internal/types"
)

// WriteJSON writes the table as an indented JSON array with one object per
// row. Keys follow column order and null cells are left out.
func WriteJSON(w io.Writer, t *types.Table) error {
	var buf bytes.Buffer
	buf.WriteString("[")

	cols := t.Columns()
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")

		first := true
		for _, c := range cols {
			v, ok := t.Value(i, c)
			if !ok {
				continue
			}
			key, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("failed to encode column %q: %w", c, err)
			}
			val, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to encode value of column %q: %w", c, err)
			}
			if !first {
				buf.WriteString(",")
			}
			first = false
			buf.WriteString("\n    ")
			buf.Write(key)
			buf.WriteString(": ")
			buf.Write(val)
		}

		if !first {
			buf.WriteString("\n  ")
		}
		buf.WriteString("}")
	}

	if t.Len() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
