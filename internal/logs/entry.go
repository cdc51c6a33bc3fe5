package logs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hookclip/internal/logging"
)

// Entry is one decoded JSON log record.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	JobID     string
	Stage     string
	EventType string
	ErrorKind string
	Error     string
}

// ParseEntry decodes a JSON log line. Lines that are not JSON objects
// report false.
func ParseEntry(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	e := Entry{
		Level:     str(raw, logging.JSONLevelKey),
		Message:   str(raw, logging.JSONMessageKey),
		Component: str(raw, logging.FieldComponent),
		JobID:     str(raw, logging.FieldJobID),
		Stage:     str(raw, logging.FieldStage),
		EventType: str(raw, logging.FieldEventType),
		ErrorKind: str(raw, logging.FieldErrorKind),
		Error:     str(raw, "error"),
	}
	if ts := str(raw, logging.JSONTimeKey); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Time = parsed
		}
	}
	return e, true
}

// Filter decodes lines and keeps the entries for jobID. An empty jobID keeps
// every decodable entry.
func Filter(lines []string, jobID string) []Entry {
	jobID = strings.TrimSpace(jobID)
	var out []Entry
	for _, line := range lines {
		e, ok := ParseEntry(line)
		if !ok {
			continue
		}
		if jobID != "" && !strings.HasPrefix(e.JobID, jobID) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Format renders an entry as a single terminal line.
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s", strings.ToUpper(e.Level))
	if e.Component != "" {
		fmt.Fprintf(&b, " [%s]", e.Component)
	}
	if e.JobID != "" {
		id := e.JobID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(&b, " job %s", id)
		if e.Stage != "" {
			fmt.Fprintf(&b, " (%s)", e.Stage)
		}
	}
	b.WriteString(" - ")
	b.WriteString(e.Message)
	if e.Error != "" {
		fmt.Fprintf(&b, ": %s", e.Error)
	}
	return b.String()
}

func str(raw map[string]any, key string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
