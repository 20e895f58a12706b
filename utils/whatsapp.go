// utils/whatsapp.go
package utils

import (
	"regexp"
	"strings"
)

var whatsappPattern = regexp.MustCompile(`^\(\d{2}\) \d{5}-\d{4}$`)

// FormatWhatsapp formats raw input progressively as "(DD) DDDDD-DDDD".
// Non-digits are dropped and only the first 11 digits are kept, so the
// output of a complete number formats to itself.
func FormatWhatsapp(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 11 {
				break
			}
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 0:
		return ""
	case len(digits) < 2:
		return "(" + digits
	case len(digits) == 2:
		return "(" + digits + ") "
	case len(digits) <= 7:
		return "(" + digits[:2] + ") " + digits[2:]
	default:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
	}
}

// IsValidWhatsapp reports whether s is a complete "(DD) DDDDD-DDDD" number.
func IsValidWhatsapp(s string) bool {
	return whatsappPattern.MatchString(s)
}
