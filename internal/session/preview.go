package session

import "strings"

// PreviewChars bounds the selection preview shown in the panel.
const PreviewChars = 100

// Preview collapses whitespace and cuts text to limit characters, marking
// the cut with an ellipsis.
func Preview(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
