package utils

import "strings"

// Summarize flattens newlines and truncates a response body to maxRunes runes.
// The feedback and interaction stores keep a single-line, bounded summary
// instead of the full response.
func Summarize(text string, maxRunes int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if maxRunes > 0 && len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return flat
}
