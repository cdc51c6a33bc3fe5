package fpttts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hookclip/internal/logging"
	"hookclip/internal/services"
)

const (
	serviceName         = "fpt_tts"
	defaultBaseURL      = "https://api.fpt.ai/hmi/tts/v5"
	defaultVoice        = "banmai"
	defaultMaxAttempts  = 10
	defaultPollInterval = 2000 * time.Millisecond
	defaultHTTPTimeout  = 30 * time.Second
	fetchedAudioName    = "temp_tts.mp3"
)

// Config captures the runtime settings required to talk to FPT.AI.
type Config struct {
	APIKey         string
	BaseURL        string
	Voice          string
	// Speed is sent unchanged; 0 is the service's normal rate.
	Speed          float64
	MaxAttempts    int
	PollInterval   time.Duration
	TimeoutSeconds int
}

// AudioNormalizer converts the fetched payload to the WAV track the
// compositor consumes.
type AudioNormalizer interface {
	NormalizeAudio(ctx context.Context, name string, data []byte) ([]byte, error)
}

// AudioTrack is normalized speech audio.
type AudioTrack struct {
	Data            []byte
	DurationSeconds float64
	Attempts        int
}

// Client wraps the TTS submit and download endpoints.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	sleeper    func(time.Duration)
	observer   Observer
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how poll waits are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithObserver registers a callback for poll transitions.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, serviceName)
	}
}

// NewClient constructs a speech client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Voice:          strings.TrimSpace(cfg.Voice),
			Speed:          cfg.Speed,
			MaxAttempts:    cfg.MaxAttempts,
			PollInterval:   cfg.PollInterval,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(nil, serviceName),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.Voice == "" {
		client.cfg.Voice = defaultVoice
	}
	if client.cfg.MaxAttempts <= 0 {
		client.cfg.MaxAttempts = defaultMaxAttempts
	}
	if client.cfg.PollInterval <= 0 {
		client.cfg.PollInterval = defaultPollInterval
	}
	return client
}

type submitResponse struct {
	Async     string `json:"async"`
	Error     int    `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// Synthesize submits text, waits for the audio to become available and
// returns it normalized to WAV. No partial result is ever returned.
func (c *Client) Synthesize(ctx context.Context, text string, norm AudioNormalizer) (AudioTrack, error) {
	if c.cfg.APIKey == "" {
		return AudioTrack{}, services.Wrap(services.ErrConfiguration, "speech", "synthesize", "fpt.ai api key not configured", nil)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return AudioTrack{}, services.Wrap(services.ErrValidation, "speech", "synthesize", "caption text is empty", nil)
	}
	if norm == nil {
		return AudioTrack{}, errors.New("fpt tts: audio normalizer required")
	}
	logger := logging.WithContext(ctx, c.logger)

	link, requestID, err := c.submit(ctx, text)
	if err != nil {
		return AudioTrack{}, err
	}
	if requestID != "" {
		ctx = services.WithRequestID(ctx, requestID)
		logger = logging.WithContext(ctx, c.logger)
	}
	logger.Info("speech submitted",
		logging.String(logging.FieldEventType, "tts_submitted"),
		logging.String("voice", c.cfg.Voice),
		logging.String("link", link),
	)

	payload, attempts, err := c.await(ctx, logger, link)
	if err != nil {
		return AudioTrack{}, err
	}

	wav, err := norm.NormalizeAudio(ctx, fetchedAudioName, payload)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return AudioTrack{}, ctxErr
		}
		return AudioTrack{}, services.Wrap(services.ErrEncoding, "speech", "normalize audio", "", err)
	}
	track := AudioTrack{Data: wav, DurationSeconds: wavDuration(wav), Attempts: attempts}
	logger.Info("speech ready",
		logging.String(logging.FieldEventType, "tts_ready"),
		logging.Int("attempts", attempts),
		logging.Float64("audio_seconds", track.DurationSeconds),
	)
	return track, nil
}

func (c *Client) submit(ctx context.Context, text string) (link, requestID string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, strings.NewReader(text))
	if err != nil {
		return "", "", services.Wrap(services.ErrConfiguration, "speech", "build request", c.cfg.BaseURL, err)
	}
	req.Header.Set("api-key", c.cfg.APIKey)
	req.Header.Set("voice", c.cfg.Voice)
	req.Header.Set("speed", strconv.FormatFloat(c.cfg.Speed, 'f', -1, 64))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", "", ctxErr
		}
		return "", "", services.Wrap(services.ErrUpstream, "speech", "submit", fmt.Sprintf("http error (timeout=%s)", c.httpClient.Timeout), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", services.Wrap(services.ErrUpstream, "speech", "read body", "", err)
	}
	respErr := &services.ResponseError{Service: serviceName, StatusCode: resp.StatusCode, Body: string(body)}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", services.Wrap(services.ErrUpstream, "speech", "submit", "", respErr)
	}
	var parsed submitResponse
	if err := json.Unmarshal(bytes.TrimSpace(body), &parsed); err != nil {
		return "", "", services.Wrap(services.ErrUpstream, "speech", "decode response", "", respErr)
	}
	if parsed.Error != 0 {
		msg := fmt.Sprintf("service error %d", parsed.Error)
		if m := strings.TrimSpace(parsed.Message); m != "" {
			msg += ": " + m
		}
		return "", "", services.Wrap(services.ErrUpstream, "speech", "submit", msg, respErr)
	}
	link = strings.TrimSpace(parsed.Async)
	if link == "" {
		return "", "", services.Wrap(services.ErrUpstream, "speech", "submit", "response carried no download link", respErr)
	}
	return link, strings.TrimSpace(parsed.RequestID), nil
}

// await polls link until a 2xx response arrives or the attempt budget is spent.
func (c *Client) await(ctx context.Context, logger *slog.Logger, link string) ([]byte, int, error) {
	p := newPoller(link, c.cfg.MaxAttempts, c.cfg.PollInterval)
	c.notify(Transition{State: p.state, Max: p.maxAttempts})

	for p.begin() {
		if err := c.sleep(ctx, p.interval); err != nil {
			return nil, p.attempt, err
		}
		payload, status, err := c.fetch(ctx, p.link)
		if err == nil {
			p.ready()
			c.notify(Transition{State: p.state, Attempt: p.attempt, Max: p.maxAttempts, Status: status})
			return payload, p.attempt, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, p.attempt, ctxErr
		}
		logger.Debug("speech not ready",
			logging.String(logging.FieldEventType, "tts_poll"),
			logging.Int("attempt", p.attempt),
			logging.Int("max_attempts", p.maxAttempts),
			logging.Int("status", status),
			logging.Error(err),
		)
		exhausted := p.failed()
		c.notify(Transition{State: p.state, Attempt: p.attempt, Max: p.maxAttempts, Status: status, Err: err})
		if exhausted {
			break
		}
	}
	return nil, p.attempt, services.Wrap(services.ErrTimeout, "speech", "await audio",
		fmt.Sprintf("audio not available after %d attempts", p.attempt), nil)
}

func (c *Client) fetch(ctx context.Context, link string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &services.ResponseError{Service: serviceName, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, resp.StatusCode, nil
}

func (c *Client) notify(t Transition) {
	if c.observer != nil {
		c.observer(t)
	}
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
