package logging

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Keys of the JSON log line. internal/logs decodes the file with the same
// names.
const (
	JSONTimeKey    = "ts"
	JSONLevelKey   = "level"
	JSONMessageKey = "msg"
	JSONSourceKey  = "source"
)

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: jsonAttr,
	})
}

// jsonAttr normalizes the built-in keys: UTC RFC 3339 timestamps with
// nanoseconds, lower-case levels and file:line sources.
func jsonAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() != slog.KindTime {
			return attr
		}
		return slog.String(JSONTimeKey, attr.Value.Time().UTC().Format(time.RFC3339Nano))
	case slog.LevelKey:
		return slog.String(JSONLevelKey, strings.ToLower(attr.Value.String()))
	case slog.MessageKey:
		attr.Key = JSONMessageKey
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			return slog.String(JSONSourceKey, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return attr
}
