package validators

import (
	"strings"
	"unicode"
)

const maxCodeLen = 64

// SanitizeString trims input and caps it at maxLen runes. Control
// characters are dropped.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	if runes := []rune(cleaned); maxLen > 0 && len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return cleaned
}

// SanitizeCode normalizes a customer-entered promotion code. Stripe matches
// codes case-insensitively and they never contain whitespace.
func SanitizeCode(input string) string {
	code := strings.Join(strings.Fields(input), "")
	return strings.ToUpper(SanitizeString(code, maxCodeLen))
}
