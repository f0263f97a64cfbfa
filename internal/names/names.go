// Package names folds area names so that two independently sourced spellings
// of the same suburb compare equal.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Folder produces comparison keys for area names.
type Folder struct {
	// StripDiacritics drops combining marks, so "Mérimbula" matches "Merimbula".
	StripDiacritics bool
}

// Fold returns the comparison key for s: Unicode case folded, trimmed, with
// runs of whitespace collapsed to one space.
func (f Folder) Fold(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if f.StripDiacritics {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		if out, _, err := transform.String(t, s); err == nil {
			s = out
		}
	}
	return cases.Fold().String(s)
}

// Equal reports whether a and b fold to the same key.
func (f Folder) Equal(a, b string) bool {
	return f.Fold(a) == f.Fold(b)
}
