// utils/text.go
package utils

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims, NFC-normalizes and collapses inner whitespace.
// Browsers on some platforms submit decomposed accents (NFD).
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// FoldForSearch lowercases and strips accents so "São Paulo" matches "sao paulo".
func FoldForSearch(s string) string {
	return strings.ToLower(unidecode.Unidecode(NormalizeText(s)))
}

// SanitizeState keeps ASCII letters only, upper-cased, at most two.
func SanitizeState(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
			if b.Len() == 2 {
				break
			}
		}
	}
	return strings.ToUpper(b.String())
}
