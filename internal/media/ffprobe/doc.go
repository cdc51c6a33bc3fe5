// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no hookclip-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/image stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Parse: decodes an ffprobe JSON payload captured elsewhere
//
// Helper methods on Result provide the geometry and timing the compositor
// needs: frame dimensions of the first video stream and the best available
// duration of the file.
package ffprobe
