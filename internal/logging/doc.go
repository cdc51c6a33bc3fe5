// Package logging assembles the structured slog loggers used across hookclip.
//
// It owns the console ("pretty") and JSON handlers, level parsing, the
// rotating file sink, and the context helpers that tag every line with the
// active job id, pipeline stage and correlation id. A no-op logger is
// available for tests and wiring code that cannot fail.
//
// Components obtain a logger through NewComponentLogger so that the console
// handler can render the component name in the line header.
package logging
