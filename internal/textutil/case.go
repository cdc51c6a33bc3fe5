package textutil

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HookCase upper-cases a caption using the casing rules of tag. An undefined
// tag falls back to language-neutral rules.
func HookCase(text string, tag language.Tag) string {
	return cases.Upper(tag).String(text)
}
