// Package logs reads the rotating JSON log file for `hookclip logs`.
//
// It returns the last N lines with bounded memory, follows the file as new
// lines are appended, and decodes entries so callers can filter by job.
package logs
