package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hookclip/internal/logging"
	"hookclip/internal/media/ffprobe"
	"hookclip/internal/services"
)

// Input is a named buffer staged before an invocation. A nil Data means the
// file was staged earlier in the same session.
type Input struct {
	Name string
	Data []byte
}

// Invocation describes one ffmpeg run: staged inputs, arguments (without the
// global flags and output name) and the output file to read back.
type Invocation struct {
	Inputs []Input
	Args   []string
	Output string
}

// Session binds an engine to one job workspace.
type Session struct {
	engine *Engine
	ws     *Workspace
}

// Workspace exposes the job-scoped file area.
func (s *Session) Workspace() *Workspace {
	return s.ws
}

// Render stages the invocation inputs, runs ffmpeg once and returns the output bytes.
func (s *Session) Render(ctx context.Context, inv Invocation) ([]byte, error) {
	if s == nil || s.ws == nil {
		return nil, errors.New("ffmpeg session closed")
	}
	if err := validName(inv.Output); err != nil {
		return nil, services.Wrap(services.ErrValidation, "engine", "render", "invalid output name", err)
	}
	for _, in := range inv.Inputs {
		if err := s.stage(in); err != nil {
			return nil, err
		}
	}

	args := make([]string, 0, len(inv.Args)+5)
	args = append(args, "-hide_banner", "-loglevel", "error", "-y")
	args = append(args, inv.Args...)
	args = append(args, inv.Output)

	logger := logging.WithContext(ctx, s.engine.logger)
	started := time.Now()
	logger.Debug("ffmpeg started",
		logging.String(logging.FieldEventType, "ffmpeg_start"),
		logging.String("output", inv.Output),
		logging.Int("inputs", len(inv.Inputs)),
	)
	stderr, err := s.engine.run(ctx, s.ws.Dir(), s.engine.ffmpegBinary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrEncoding, "engine", "render", exitDetail(err, stderr), err)
	}
	data, err := s.ws.Read(inv.Output)
	if err != nil {
		return nil, services.Wrap(services.ErrEncoding, "engine", "render", "output missing after ffmpeg run", err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrEncoding, "engine", "render", "ffmpeg produced an empty output", nil)
	}
	logger.Debug("ffmpeg completed",
		logging.String(logging.FieldEventType, "ffmpeg_complete"),
		logging.String("output", inv.Output),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return data, nil
}

// Probe stages data under name (when non-nil) and returns its ffprobe metadata.
func (s *Session) Probe(ctx context.Context, name string, data []byte) (ffprobe.Result, error) {
	if s == nil || s.ws == nil {
		return ffprobe.Result{}, errors.New("ffmpeg session closed")
	}
	if err := s.stage(Input{Name: name, Data: data}); err != nil {
		return ffprobe.Result{}, err
	}
	path, err := s.ws.Path(name)
	if err != nil {
		return ffprobe.Result{}, services.Wrap(services.ErrValidation, "engine", "probe", "invalid input name", err)
	}
	result, err := s.engine.probe(ctx, s.engine.ffprobeBinary, path)
	if err != nil {
		return ffprobe.Result{}, services.Wrap(services.ErrEncoding, "engine", "probe", name, err)
	}
	return result, nil
}

// NormalizeAudio converts a fetched speech payload to 16-bit PCM WAV.
func (s *Session) NormalizeAudio(ctx context.Context, name string, data []byte) ([]byte, error) {
	src := name
	if src == "" {
		src = "temp_tts.mp3"
	}
	wav, err := s.Render(ctx, Invocation{
		Inputs: []Input{{Name: src, Data: data}},
		Args:   []string{"-i", src, "-vn", "-c:a", "pcm_s16le"},
		Output: "temp_tts.wav",
	})
	if err != nil {
		return nil, fmt.Errorf("normalize audio: %w", err)
	}
	return wav, nil
}

// Close releases the workspace unless the engine keeps workspaces for debugging.
func (s *Session) Close() error {
	if s == nil || s.ws == nil {
		return nil
	}
	if s.engine.keepWorkspace {
		s.engine.logger.Info("workspace kept", logging.String("dir", s.ws.Dir()))
		s.ws = nil
		return nil
	}
	err := s.ws.Close()
	s.ws = nil
	return err
}

func (s *Session) stage(in Input) error {
	if err := validName(in.Name); err != nil {
		return services.Wrap(services.ErrValidation, "engine", "stage input", "invalid input name", err)
	}
	if in.Data == nil {
		if !s.ws.Exists(in.Name) {
			return services.Wrap(services.ErrValidation, "engine", "stage input", fmt.Sprintf("%s was never staged", in.Name), nil)
		}
		return nil
	}
	if err := s.ws.Write(in.Name, in.Data); err != nil {
		return services.Wrap(services.ErrEncoding, "engine", "stage input", in.Name, err)
	}
	return nil
}
