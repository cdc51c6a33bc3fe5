// Package textutil lays out caption text for burn-in.
//
// The primary use cases are:
//   - Greedy word wrapping to a fixed line width (Wrap)
//   - Escaping text so it survives as a literal inside an ffmpeg filter
//     expression (EscapeFilterText)
//   - Language-aware upper casing of hook captions (HookCase)
//
// Widths are measured in runes so Vietnamese diacritics count as one
// character each.
package textutil
