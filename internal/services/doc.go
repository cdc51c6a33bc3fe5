// Package services defines shared utilities consumed by the pipeline stages
// and the external service clients.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (configuration, upstream, timeout, encoding, validation).
//   - ResponseError, which keeps the raw upstream status and body so operators
//     can see what a vendor actually returned.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
