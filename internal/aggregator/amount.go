package aggregator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a Brazilian or international formatted number.
//
//	"100,00"    -> 100.00
//	"1.234,56"  -> 1234.56
//	"1,234.56"  -> 1234.56
//	"175.50"    -> 175.50
//
// A comma alone is the decimal separator. When both separators are present
// the last one is the decimal separator and the other is dropped.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")

	comma := strings.LastIndexByte(s, ',')
	dot := strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}

	return decimal.NewFromString(s)
}
