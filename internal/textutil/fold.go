// Package textutil holds the string normalisation used when matching column
// and element names against token lists.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the NFKC-normalised, case-folded form of s. Matching in the
// pipeline is always done on folded names.
func Fold(s string) string {
	// cases.Caser is stateful, so one is built per call.
	return cases.Fold().String(norm.NFKC.String(s))
}

// FoldAll folds every entry of in, dropping blanks.
func FoldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, Fold(s))
		}
	}
	return out
}

// ContainsAny reports whether s contains any of the tokens.
func ContainsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

// HasAnyPrefix reports whether s starts with any of the prefixes.
func HasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// CleanText NFKC-normalises s, trims it and removes control characters other
// than newline and tab.
func CleanText(s string) string {
	s = strings.TrimSpace(norm.NFKC.String(s))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Digits returns only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
