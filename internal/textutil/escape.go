package textutil

import "strings"

// EscapeFilterText doubles single quotes and then escapes colons so text can
// be embedded as a quoted literal in a filter expression. No other characters
// are touched; backslashes in particular pass through unchanged.
func EscapeFilterText(text string) string {
	escaped := strings.ReplaceAll(text, "'", "''")
	return strings.ReplaceAll(escaped, ":", `\:`)
}
