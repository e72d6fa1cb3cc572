package validators

import "strings"

// SanitizeString trims whitespace and truncates to maxLen runes, so multibyte
// input is never cut mid-character.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return string(runes[:maxLen])
}
