package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hookclip/internal/logging"
	"hookclip/internal/media/ffmpeg"
	"hookclip/internal/media/ffprobe"
	"hookclip/internal/services"
)

// Engine is the slice of the encoding engine the compositor drives.
type Engine interface {
	Render(ctx context.Context, inv ffmpeg.Invocation) ([]byte, error)
	Probe(ctx context.Context, name string, data []byte) (ffprobe.Result, error)
}

// Inputs are the buffers for one composition.
type Inputs struct {
	Video   []byte
	Audio   []byte
	Overlay []byte
	Logo    []byte
	Font    []byte
	Caption string
	// AudioSeconds is used by the measured strategy when the speech probe
	// reports no duration.
	AudioSeconds float64
}

// Output is the encoded clip and the layout that produced it.
type Output struct {
	Data []byte
	Spec Spec
}

// Compositor builds and runs the composition filter graph.
type Compositor struct {
	strategy Strategy
	layout   Layout
	logger   *slog.Logger
}

// Option customizes the compositor.
type Option func(*Compositor)

// WithLogger sets the compositor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compositor) {
		c.logger = logging.NewComponentLogger(logger, "compose")
	}
}

// New validates layout and returns a compositor for strategy.
func New(strategy Strategy, layout Layout, opts ...Option) (*Compositor, error) {
	if strategy != StrategyRelative && strategy != StrategyMeasured {
		return nil, services.Wrap(services.ErrConfiguration, "compose", "init", fmt.Sprintf("unknown strategy %q", strategy), nil)
	}
	if err := layout.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "compose", "init", "invalid layout", err)
	}
	c := &Compositor{strategy: strategy, layout: layout, logger: logging.NewComponentLogger(nil, "compose")}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Strategy reports the configured strategy.
func (c *Compositor) Strategy() Strategy {
	return c.strategy
}

// Layout returns the layout parameters in use.
func (c *Compositor) Layout() Layout {
	return c.layout
}

// Compose renders the final clip. Any failure is reported as
// services.ErrEncoding and no partial output is returned.
func (c *Compositor) Compose(ctx context.Context, eng Engine, in Inputs) (Output, error) {
	if eng == nil {
		return Output{}, fmt.Errorf("compose: engine required")
	}
	if err := checkInputs(in); err != nil {
		return Output{}, services.Wrap(services.ErrValidation, "compose", "inputs", "", err)
	}
	logger := logging.WithContext(ctx, c.logger)

	var (
		spec   Spec
		err    error
		staged = map[string]bool{}
	)
	switch c.strategy {
	case StrategyRelative:
		spec, err = buildRelativeSpec(in.Caption, c.layout)
	default:
		var m measurements
		m, err = c.measure(ctx, eng, in)
		if err != nil {
			return Output{}, err
		}
		staged[videoFile], staged[audioFile], staged[logoFile] = true, true, true
		spec, err = buildMeasuredSpec(in.Caption, c.layout, m)
	}
	if err != nil {
		return Output{}, services.Wrap(services.ErrEncoding, "compose", "build filter graph", "", err)
	}

	logger.Info("composition planned",
		logging.String(logging.FieldEventType, "compose_planned"),
		logging.String("strategy", string(spec.Strategy)),
		logging.Int("caption_lines", spec.Lines),
		logging.Any("fade", spec.Fade),
		logging.Float64("trim_seconds", spec.TrimSeconds),
	)
	logger.Debug("composition filter graph", logging.String("filter_graph", spec.FilterGraph))

	inv := ffmpeg.Invocation{
		Inputs: []ffmpeg.Input{
			stagedInput(videoFile, in.Video, staged),
			stagedInput(overlayFile, in.Overlay, staged),
			stagedInput(audioFile, in.Audio, staged),
			stagedInput(logoFile, in.Logo, staged),
			stagedInput(fontFile, in.Font, staged),
		},
		Args:   spec.Args,
		Output: outputFile,
	}
	started := time.Now()
	data, err := eng.Render(ctx, inv)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Output{}, ctxErr
		}
		return Output{}, services.Wrap(services.ErrEncoding, "compose", "render", "", err)
	}
	logger.Info("composition rendered",
		logging.String(logging.FieldEventType, "compose_rendered"),
		logging.Int("output_bytes", len(data)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Output{Data: data, Spec: spec}, nil
}

// measure probes video, speech and logo. Probe-before-build is the only
// ordering the measured strategy adds.
func (c *Compositor) measure(ctx context.Context, eng Engine, in Inputs) (measurements, error) {
	var m measurements

	video, err := eng.Probe(ctx, videoFile, in.Video)
	if err != nil {
		return m, probeError("video", err)
	}
	w, h, ok := video.Dimensions()
	if !ok {
		return m, services.Wrap(services.ErrEncoding, "compose", "probe video", "no video stream dimensions", nil)
	}
	m.width, m.height = w, h
	m.videoSeconds = video.BestDurationSeconds()

	audio, err := eng.Probe(ctx, audioFile, in.Audio)
	if err != nil {
		return m, probeError("audio", err)
	}
	if audio.AudioStreamCount() == 0 {
		return m, services.Wrap(services.ErrEncoding, "compose", "probe audio", "speech file has no audio stream", nil)
	}
	m.audioSeconds = audio.BestDurationSeconds()
	if m.audioSeconds <= 0 {
		m.audioSeconds = in.AudioSeconds
	}

	logo, err := eng.Probe(ctx, logoFile, in.Logo)
	if err != nil {
		return m, probeError("logo", err)
	}
	lw, lh, ok := logo.Dimensions()
	if !ok {
		return m, services.Wrap(services.ErrEncoding, "compose", "probe logo", "no image dimensions", nil)
	}
	m.logoWidth, m.logoHeight = lw, lh
	return m, nil
}

func probeError(what string, err error) error {
	return services.Wrap(services.ErrEncoding, "compose", "probe "+what, "", err)
}

func stagedInput(name string, data []byte, staged map[string]bool) ffmpeg.Input {
	if staged[name] {
		return ffmpeg.Input{Name: name}
	}
	return ffmpeg.Input{Name: name, Data: data}
}

func checkInputs(in Inputs) error {
	var missing []string
	if len(in.Video) == 0 {
		missing = append(missing, "video")
	}
	if len(in.Audio) == 0 {
		missing = append(missing, "audio")
	}
	if len(in.Overlay) == 0 {
		missing = append(missing, "overlay")
	}
	if len(in.Logo) == 0 {
		missing = append(missing, "logo")
	}
	if len(in.Font) == 0 {
		missing = append(missing, "font")
	}
	if strings.TrimSpace(in.Caption) == "" {
		missing = append(missing, "caption")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}
