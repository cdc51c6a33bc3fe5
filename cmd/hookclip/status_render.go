package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"hookclip/internal/pipeline"
	"hookclip/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// eventLine renders a pipeline status event.
func eventLine(e pipeline.Event, colorize bool) string {
	label := stageLabel(e.Stage)
	switch e.Kind {
	case pipeline.EventStarted:
		return renderStatusLine(label, statusInfo, "started", colorize)
	case pipeline.EventCompleted:
		msg := "done"
		if e.Message != "" {
			msg = "done in " + e.Message
		}
		if e.Stage.Terminal() {
			msg = e.Message
		}
		return renderStatusLine(label, statusOK, msg, colorize)
	case pipeline.EventProgress:
		return renderStatusLine(label, statusWarn, e.Message, colorize)
	case pipeline.EventFailed:
		return renderStatusLine(label, statusError, e.Message, colorize)
	default:
		return renderStatusLine(label, statusInfo, e.Message, colorize)
	}
}

func stageLabel(stage pipeline.Stage) string {
	if stage == "" || stage.Terminal() {
		return "Job"
	}
	switch stage {
	case pipeline.StageAssets:
		return "Assets"
	case pipeline.StageCaption:
		return "Caption"
	case pipeline.StageSpeech:
		return "Speech"
	case pipeline.StageCompose:
		return "Compose"
	default:
		return strings.ToUpper(string(stage[:1])) + string(stage[1:])
	}
}

// lineSink prints pipeline events as status lines.
type lineSink struct {
	mu       sync.Mutex
	w        io.Writer
	colorize bool
}

func newLineSink(w io.Writer) *lineSink {
	return &lineSink{w: w, colorize: shouldColorize(w)}
}

func (s *lineSink) Report(e pipeline.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, eventLine(e, s.colorize))
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results)+1)
	failed := 0
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
			failed++
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	if failed == 0 {
		lines = append(lines, renderStatusLine("Summary", statusOK, "all checks passed", colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusError, fmt.Sprintf("%d of %d checks failed", failed, len(results)), colorize))
	}
	return lines
}
