// utils/slug.go
package utils

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

// DefaultSlug is the folder used when a name has no usable characters.
const DefaultSlug = "geral"

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns free text into lowercase alphanumerics separated by single hyphens.
// Accented letters are transliterated ("São" → "sao"). Never returns "".
func Slugify(value string) string {
	s := slug.Make(strings.TrimSpace(value))
	// slug.Make keeps underscores; folders only allow [a-z0-9-].
	s = nonSlugRun.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return DefaultSlug
	}
	return s
}
