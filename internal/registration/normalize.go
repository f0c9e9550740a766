package registration

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// normalize folds case and drops every whitespace rune so "ab 12" and
// "AB12" compare equal.
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return cases.Fold().String(s)
}
