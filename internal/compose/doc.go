// Package compose turns a source video, synthesized speech, caption text and
// brand assets into the final hook clip with a single encoder invocation.
//
// Two strategies share one entry point. The relative strategy sizes the
// overlay and logo against the base video with scale2ref expressions and
// needs no metadata. The measured strategy probes the video, speech and logo
// first, then emits literal pixel geometry, a fade-out ending at the spoken
// duration, and an explicit trim. Both render the same visual layout, but
// their graphs and failure surfaces differ, so they are kept separate.
package compose
