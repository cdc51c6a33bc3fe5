package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"hookclip/internal/assets"
	"hookclip/internal/compose"
	"hookclip/internal/config"
	"hookclip/internal/logging"
	"hookclip/internal/media/ffmpeg"
	"hookclip/internal/services"
	"hookclip/internal/services/fpttts"
	"hookclip/internal/services/gemini"
)

// ErrBusy is returned when a job is already active in this process or in
// another process sharing the work directory.
var ErrBusy = errors.New("pipeline busy: another job is active")

// LockFileName is created under the work directory while a job runs.
const LockFileName = "hookclip.lock"

// Captioner produces the spoken caption for a video.
type Captioner interface {
	GenerateCaption(ctx context.Context, video []byte, mimeType string) (string, error)
}

// Synthesizer turns caption text into a normalized audio track.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, norm fpttts.AudioNormalizer) (fpttts.AudioTrack, error)
}

// AssetFetcher retrieves the brand assets.
type AssetFetcher interface {
	FetchAll(ctx context.Context, paths config.AssetPaths) (assets.Bundle, error)
}

// Session is a job-scoped encoding workspace.
type Session interface {
	compose.Engine
	fpttts.AudioNormalizer
	Close() error
}

// Opener creates the encoding session for a job.
type Opener func(jobID string) (Session, error)

// Pipeline sequences the stages of a job.
type Pipeline struct {
	cfg        *config.Config
	captioner  Captioner
	speech     Synthesizer
	assets     AssetFetcher
	compositor *compose.Compositor
	open       Opener
	sink       StatusSink
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
	httpClient *http.Client
	sleeper    func(time.Duration)

	active  atomic.Bool
	mu      sync.Mutex
	current *Job
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger; it is shared with the default clients.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStatusSink registers the receiver of status events.
func WithStatusSink(sink StatusSink) Option {
	return func(p *Pipeline) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithCaptioner replaces the Gemini caption client.
func WithCaptioner(c Captioner) Option {
	return func(p *Pipeline) { p.captioner = c }
}

// WithSynthesizer replaces the FPT.AI speech client.
func WithSynthesizer(s Synthesizer) Option {
	return func(p *Pipeline) { p.speech = s }
}

// WithAssetFetcher replaces the asset loader.
func WithAssetFetcher(f AssetFetcher) Option {
	return func(p *Pipeline) { p.assets = f }
}

// WithOpener replaces the ffmpeg session factory.
func WithOpener(open Opener) Option {
	return func(p *Pipeline) { p.open = open }
}

// WithHTTPClient sets the HTTP client used by the default service clients.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) { p.httpClient = client }
}

// WithSleeper overrides the speech poll wait.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(p *Pipeline) { p.sleeper = sleeper }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator overrides job id generation.
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) {
		if newID != nil {
			p.newID = newID
		}
	}
}

// New wires a pipeline from configuration. Construction performs no I/O;
// required settings are checked when a job runs.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "configuration required", nil)
	}
	p := &Pipeline{
		cfg:    cfg,
		sink:   nopSink{},
		logger: logging.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")

	strategy, err := compose.ParseStrategy(cfg.Compose.Strategy)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "", err)
	}
	compositor, err := compose.New(strategy, LayoutFromConfig(cfg), compose.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}
	p.compositor = compositor

	if p.captioner == nil {
		p.captioner = gemini.NewClient(gemini.Config{
			APIKey:         cfg.APIKeys.GoogleGemini,
			BaseURL:        cfg.Caption.BaseURL,
			Model:          cfg.Caption.Model,
			Prompt:         cfg.Caption.Prompt,
			TimeoutSeconds: cfg.Caption.TimeoutSeconds,
		}, gemini.WithLogger(p.logger), gemini.WithHTTPClient(p.httpClient))
	}
	if p.speech == nil {
		p.speech = fpttts.NewClient(fpttts.Config{
			APIKey:         cfg.APIKeys.FPTAI,
			BaseURL:        cfg.Speech.BaseURL,
			Voice:          cfg.Speech.Voice,
			Speed:          cfg.Speech.Speed,
			MaxAttempts:    cfg.Speech.MaxAttempts,
			PollInterval:   time.Duration(cfg.Speech.PollIntervalMS) * time.Millisecond,
			TimeoutSeconds: cfg.Speech.TimeoutSeconds,
		},
			fpttts.WithLogger(p.logger),
			fpttts.WithHTTPClient(p.httpClient),
			fpttts.WithSleeper(p.sleeper),
			fpttts.WithObserver(p.observePoll),
		)
	}
	if p.assets == nil {
		p.assets = assets.NewLoader(assets.WithLogger(p.logger), assets.WithHTTPClient(p.httpClient))
	}
	if p.open == nil {
		engine := ffmpeg.NewEngine(cfg.Engine.FFmpegBinary, cfg.Engine.FFprobeBinary, cfg.Paths.WorkDir,
			ffmpeg.WithLogger(p.logger),
			ffmpeg.WithKeepWorkspace(cfg.Engine.KeepWorkspace),
		)
		p.open = func(jobID string) (Session, error) {
			session, err := engine.Open(jobID)
			if err != nil {
				return nil, err
			}
			return session, nil
		}
	}
	return p, nil
}

// Strategy reports the configured composition strategy.
func (p *Pipeline) Strategy() compose.Strategy {
	return p.compositor.Strategy()
}

// Current returns a snapshot of the active job.
func (p *Pipeline) Current() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Job{}, false
	}
	return *p.current, true
}

// Stage reports the stage of the active job, or idle.
func (p *Pipeline) Stage() Stage {
	if job, ok := p.Current(); ok {
		return job.Stage
	}
	return StageIdle
}

// Run executes one job. It returns ErrBusy when another job is active and a
// services.ErrConfiguration before any I/O when required settings are empty.
func (p *Pipeline) Run(ctx context.Context, src Source) (*Result, error) {
	if !p.active.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.active.Store(false)

	if err := p.preflight(src); err != nil {
		logging.ErrorWithContext(p.logger, "job rejected", "job_rejected",
			logging.ErrorKind(services.Kind(err)),
			logging.String(logging.FieldErrorHint, errorHint(err)),
			logging.Error(err),
		)
		return nil, err
	}

	unlock, err := p.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	job := &Job{ID: p.newID(), Source: src, Stage: StageIdle, StartedAt: p.now()}
	p.setCurrent(job)
	defer p.setCurrent(nil)

	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("source", src.Path),
		logging.Int("source_bytes", len(src.Data)),
		logging.String("strategy", string(p.Strategy())),
	)

	session, err := p.open(job.ID)
	if err != nil {
		return nil, p.fail(ctx, job, StageIdle, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logging.WarnWithContext(logger, "workspace cleanup failed", "workspace_cleanup_failed",
				logging.Error(cerr),
				logging.String(logging.FieldErrorHint, "remove the job directory under work_dir by hand"),
				logging.String(logging.FieldImpact, "temporary media files left on disk"),
			)
		}
	}()

	var bundle assets.Bundle
	if err := p.runStage(ctx, job, StageAssets, func(ctx context.Context) error {
		var err error
		bundle, err = p.assets.FetchAll(ctx, p.cfg.AssetPaths)
		return err
	}); err != nil {
		return nil, err
	}

	if err := p.runStage(ctx, job, StageCaption, func(ctx context.Context) error {
		text, err := p.captioner.GenerateCaption(ctx, src.Data, src.MimeType)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return services.Wrap(services.ErrUpstream, string(StageCaption), "generate", "caption service returned empty text", nil)
		}
		p.update(func() { job.Caption = text })
		return nil
	}); err != nil {
		return nil, err
	}

	var track fpttts.AudioTrack
	if err := p.runStage(ctx, job, StageSpeech, func(ctx context.Context) error {
		var err error
		track, err = p.speech.Synthesize(ctx, job.Caption, session)
		return err
	}); err != nil {
		return nil, err
	}

	var out compose.Output
	if err := p.runStage(ctx, job, StageCompose, func(ctx context.Context) error {
		var err error
		out, err = p.compositor.Compose(ctx, session, compose.Inputs{
			Video:        src.Data,
			Audio:        track.Data,
			Overlay:      bundle.Overlay,
			Logo:         bundle.Logo,
			Font:         bundle.Font,
			Caption:      job.Caption,
			AudioSeconds: track.DurationSeconds,
		})
		return err
	}); err != nil {
		return nil, err
	}

	finished := p.now()
	p.update(func() {
		job.Stage = StageDone
		job.FinishedAt = finished
	})
	p.report(job, StageDone, EventCompleted, "clip ready", nil)
	res := &Result{
		JobID:        job.ID,
		Filename:     outputFilename(finished),
		Data:         out.Data,
		Caption:      job.Caption,
		AudioSeconds: track.DurationSeconds,
		TTSAttempts:  track.Attempts,
		Layout:       p.compositor.Layout(),
		Spec:         out.Spec,
		StartedAt:    job.StartedAt,
		FinishedAt:   finished,
	}
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("filename", res.Filename),
		logging.Int("output_bytes", len(res.Data)),
		logging.Duration("elapsed", res.Elapsed()),
	)
	return res, nil
}

func (p *Pipeline) preflight(src Source) error {
	if missing := p.cfg.MissingFields(); len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "pipeline", "preflight",
			"missing required configuration: "+strings.Join(missing, ", "), nil)
	}
	if len(src.Data) == 0 {
		return services.Wrap(services.ErrValidation, "pipeline", "preflight", "source video is empty", nil)
	}
	return nil
}

func (p *Pipeline) acquireLock() (func(), error) {
	dir := p.cfg.Paths.WorkDir
	if strings.TrimSpace(dir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "lock", "work directory not configured", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	lockPath := filepath.Join(dir, LockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock held: %s)", ErrBusy, lockPath)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(p.logger, "failed to release job lock", "job_lock_release_failed",
				logging.String("lock", lockPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "next run may report the pipeline as busy"),
			)
		}
	}, nil
}

func (p *Pipeline) runStage(ctx context.Context, job *Job, stage Stage, fn func(context.Context) error) error {
	p.update(func() { job.Stage = stage })
	stageCtx := services.WithStage(ctx, string(stage))
	logger := logging.WithContext(stageCtx, p.logger)
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	p.report(job, stage, EventStarted, "", nil)

	started := p.now()
	if err := fn(stageCtx); err != nil {
		return p.fail(stageCtx, job, stage, err)
	}
	elapsed := p.now().Sub(started)
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", elapsed),
	)
	p.report(job, stage, EventCompleted, elapsed.Round(time.Millisecond).String(), nil)
	return nil
}

func (p *Pipeline) fail(ctx context.Context, job *Job, stage Stage, err error) error {
	p.update(func() {
		job.Stage = StageFailed
		job.Err = err
		job.FinishedAt = p.now()
	})
	attrs := []logging.Attr{
		logging.String("failed_stage", string(stage)),
		logging.ErrorKind(services.Kind(err)),
		logging.String(logging.FieldErrorHint, errorHint(err)),
		logging.Error(err),
	}
	var respErr *services.ResponseError
	if errors.As(err, &respErr) {
		attrs = append(attrs,
			logging.String("response_service", respErr.Service),
			logging.Int("response_status", respErr.StatusCode),
			logging.String("response_body", services.Snippet(respErr.Body, 400)),
		)
	}
	logging.ErrorWithContext(logging.WithContext(ctx, p.logger), "job failed", "job_failed", attrs...)
	p.report(job, stage, EventFailed, err.Error(), err)
	return err
}

func (p *Pipeline) observePoll(t fpttts.Transition) {
	job, ok := p.Current()
	if !ok {
		return
	}
	msg := string(t.State)
	if t.Max > 0 {
		msg = fmt.Sprintf("%s %d/%d", t.State, t.Attempt, t.Max)
	}
	p.sink.Report(Event{JobID: job.ID, Stage: StageSpeech, Kind: EventProgress, Message: msg, At: p.now(), Err: t.Err})
}

func (p *Pipeline) report(job *Job, stage Stage, kind EventKind, msg string, err error) {
	p.sink.Report(Event{JobID: job.ID, Stage: stage, Kind: kind, Message: msg, At: p.now(), Err: err})
}

func (p *Pipeline) update(fn func()) {
	p.mu.Lock()
	fn()
	p.mu.Unlock()
}

func (p *Pipeline) setCurrent(job *Job) {
	p.mu.Lock()
	p.current = job
	p.mu.Unlock()
}

func errorHint(err error) string {
	switch services.Kind(err) {
	case "config":
		return "check the config file and credentials (hookclip config validate)"
	case "upstream":
		return "the caption or speech service rejected the request; see the response detail"
	case "timeout":
		return "speech audio was not ready in time; retry the job"
	case "encoding":
		return "ffmpeg failed; rerun with --log-level debug to see the filter graph"
	case "validation":
		return "check the input video"
	default:
		return ""
	}
}
