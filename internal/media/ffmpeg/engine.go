package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"hookclip/internal/logging"
	"hookclip/internal/media/ffprobe"
	"hookclip/internal/services"
)

const stderrTailLimit = 2000

// commandRunner executes name in dir and returns captured stderr.
type commandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// prober inspects a file on disk.
type prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Engine launches ffmpeg/ffprobe against job workspaces.
type Engine struct {
	ffmpegBinary  string
	ffprobeBinary string
	workRoot      string
	keepWorkspace bool
	logger        *slog.Logger
	run           commandRunner
	probe         prober
}

// Option customizes the engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.NewComponentLogger(logger, "ffmpeg")
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func WithCommandRunner(r commandRunner) Option {
	return func(e *Engine) {
		if r != nil {
			e.run = r
		}
	}
}

// WithProber overrides how staged files are inspected (useful for tests).
func WithProber(p prober) Option {
	return func(e *Engine) {
		if p != nil {
			e.probe = p
		}
	}
}

// WithKeepWorkspace leaves job directories on disk after Close for debugging.
func WithKeepWorkspace(keep bool) Option {
	return func(e *Engine) {
		e.keepWorkspace = keep
	}
}

// NewEngine constructs an engine. Empty binary names fall back to the
// executables on PATH.
func NewEngine(ffmpegBinary, ffprobeBinary, workRoot string, opts ...Option) *Engine {
	e := &Engine{
		ffmpegBinary:  strings.TrimSpace(ffmpegBinary),
		ffprobeBinary: strings.TrimSpace(ffprobeBinary),
		workRoot:      strings.TrimSpace(workRoot),
		logger:        logging.NewComponentLogger(nil, "ffmpeg"),
		run:           defaultCommandRunner,
		probe:         ffprobe.Inspect,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ffmpegBinary == "" {
		e.ffmpegBinary = "ffmpeg"
	}
	if e.ffprobeBinary == "" {
		e.ffprobeBinary = "ffprobe"
	}
	return e
}

// Open creates the workspace for one job.
func (e *Engine) Open(jobID string) (*Session, error) {
	if e.workRoot == "" {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "open workspace", "work directory not configured", nil)
	}
	ws, err := newWorkspace(e.workRoot, jobID)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("workspace opened", logging.String("dir", ws.Dir()))
	return &Session{engine: e, ws: ws}, nil
}

func defaultCommandRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

func exitDetail(err error, stderr []byte) string {
	tail := strings.TrimSpace(string(stderr))
	if len(tail) > stderrTailLimit {
		tail = "..." + tail[len(tail)-stderrTailLimit:]
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if tail == "" {
			return fmt.Sprintf("exit status %d", exitErr.ExitCode())
		}
		return fmt.Sprintf("exit status %d: %s", exitErr.ExitCode(), tail)
	}
	if tail == "" {
		return err.Error()
	}
	return err.Error() + ": " + tail
}
