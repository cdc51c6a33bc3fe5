package textutil

import (
	"strings"
	"unicode/utf8"
)

// Wrap greedily packs whitespace-separated words into lines of at most
// maxLineChars runes and joins them with newlines. A word longer than the
// limit is placed on its own line and never split. A non-positive limit
// disables wrapping.
func Wrap(text string, maxLineChars int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if maxLineChars <= 0 {
		return strings.Join(words, " ")
	}

	lines := make([]string, 0, len(words))
	var line strings.Builder
	lineLen := 0
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		switch {
		case lineLen == 0:
			line.WriteString(word)
			lineLen = wordLen
		case lineLen+1+wordLen <= maxLineChars:
			line.WriteByte(' ')
			line.WriteString(word)
			lineLen += 1 + wordLen
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			lineLen = wordLen
		}
	}
	if lineLen > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
