package validators

import "strings"

// SanitizeString trims input, collapses inner whitespace runs to one space
// and caps the result at maxLen runes.
func SanitizeString(input string, maxLen int) string {
	collapsed := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 {
		return collapsed
	}
	runes := []rune(collapsed)
	if len(runes) > maxLen {
		return strings.TrimSpace(string(runes[:maxLen]))
	}
	return collapsed
}
