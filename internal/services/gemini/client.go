package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hookclip/internal/logging"
	"hookclip/internal/services"
)

const (
	serviceName        = "gemini"
	defaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel       = "gemini-1.5-flash"
	defaultHTTPTimeout = 120 * time.Second
	fallbackMimeType   = "video/mp4"
)

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Prompt         string
	TimeoutSeconds int
}

// Client wraps the generateContent endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
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

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, serviceName)
	}
}

// NewClient constructs a caption client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			Prompt:         strings.TrimSpace(cfg.Prompt),
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
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	if client.cfg.Prompt == "" {
		client.cfg.Prompt = DefaultPrompt
	}
	return client
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// GenerateCaption sends the video to the model and returns the trimmed caption text.
func (c *Client) GenerateCaption(ctx context.Context, video []byte, mimeType string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "caption", "generate", "google gemini api key not configured", nil)
	}
	if len(video) == 0 {
		return "", services.Wrap(services.ErrValidation, "caption", "generate", "video payload is empty", nil)
	}
	mimeType = resolveMimeType(mimeType, video)

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "models", c.cfg.Model+":generateContent")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "caption", "build url", c.cfg.BaseURL, err)
	}
	payload := generateRequest{Contents: []content{{Parts: []part{
		{Text: c.cfg.Prompt},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(video)}},
	}}}}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("gemini request: encode body: %w", err)
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("gemini request",
		logging.String(logging.FieldEventType, "caption_request"),
		logging.String("model", c.cfg.Model),
		logging.String("mime_type", mimeType),
		logging.Int("video_bytes", len(video)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("gemini request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", services.Wrap(services.ErrUpstream, "caption", "generate", fmt.Sprintf("http error (timeout=%s)", c.httpClient.Timeout), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "caption", "read body", "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", services.Wrap(services.ErrUpstream, "caption", "generate", "", &services.ResponseError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}

	text, reason, err := extractCaption(body)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "caption", "decode response", "", &services.ResponseError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}
	if text == "" {
		msg := "no caption text in response"
		if reason != "" {
			msg += " (block_reason=" + reason + ")"
		}
		return "", services.Wrap(services.ErrUpstream, "caption", "generate", msg, &services.ResponseError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}

	logger.Info("caption generated",
		logging.String(logging.FieldEventType, "caption_generated"),
		logging.String("caption", text),
		logging.Duration("elapsed", time.Since(started)),
	)
	return text, nil
}

// extractCaption returns candidates[0].content.parts[0].text trimmed, plus the
// prompt block reason when Gemini refused the request.
func extractCaption(body []byte) (string, string, error) {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", "", err
	}
	var reason string
	if parsed.PromptFeedback != nil {
		reason = strings.TrimSpace(parsed.PromptFeedback.BlockReason)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", reason, nil
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), reason, nil
}

func resolveMimeType(mimeType string, video []byte) string {
	if mimeType = strings.TrimSpace(mimeType); mimeType != "" {
		return mimeType
	}
	detected := http.DetectContentType(video)
	if strings.HasPrefix(detected, "video/") {
		return detected
	}
	return fallbackMimeType
}
