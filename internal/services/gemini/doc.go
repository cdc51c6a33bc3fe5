// Package gemini asks Google's Gemini generateContent API for a short spoken
// sales hook describing a video.
//
// The whole video travels inline as base64 next to a fixed instruction. The
// client issues exactly one request per call and never retries; a non-2xx
// status or a reply without candidate text is reported as services.ErrUpstream
// carrying the raw response for diagnostics.
package gemini
