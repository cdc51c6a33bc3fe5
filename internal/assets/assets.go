// Package assets retrieves the brand assets (overlay, logo, font) a
// composition needs. References are local paths or http(s) URLs.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"hookclip/internal/config"
	"hookclip/internal/logging"
	"hookclip/internal/services"
)

const (
	stageName      = "assets"
	defaultTimeout = 60 * time.Second
	maxAssetBytes  = 64 << 20
	snippetLimit   = 160
)

// Bundle holds the fetched asset bytes.
type Bundle struct {
	Overlay []byte
	Logo    []byte
	Font    []byte
}

// Loader fetches asset references.
type Loader struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient overrides the HTTP client used for remote references.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader constructs a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FetchAll retrieves the overlay, logo and font concurrently. The first
// failure cancels the remaining fetches.
func (l *Loader) FetchAll(ctx context.Context, paths config.AssetPaths) (Bundle, error) {
	var bundle Bundle
	g, gctx := errgroup.WithContext(ctx)
	targets := []struct {
		name string
		ref  string
		dst  *[]byte
	}{
		{"overlay", paths.Overlay, &bundle.Overlay},
		{"logo", paths.Logo, &bundle.Logo},
		{"font", paths.Font, &bundle.Font},
	}
	for _, target := range targets {
		g.Go(func() error {
			data, err := l.Fetch(gctx, target.ref)
			if err != nil {
				return fmt.Errorf("%s: %w", target.name, err)
			}
			*target.dst = data
			l.logger.Debug("asset fetched",
				logging.String("asset", target.name),
				logging.Int("bytes", len(data)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}
	return bundle, nil
}

// Fetch retrieves a single reference.
func (l *Loader) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "fetch", "empty asset reference", nil)
	}
	if config.IsRemote(ref) {
		return l.fetchRemote(ctx, ref)
	}
	return fetchLocal(ref)
}

func fetchLocal(ref string) ([]byte, error) {
	path, err := config.ExpandPath(ref)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "fetch", ref, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, stageName, "fetch", fmt.Sprintf("asset %s not found", path), err)
		}
		return nil, services.Wrap(services.ErrConfiguration, stageName, "fetch", fmt.Sprintf("read %s", path), err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "fetch", fmt.Sprintf("asset %s is empty", path), nil)
	}
	return data, nil
}

func (l *Loader) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "fetch", fmt.Sprintf("invalid url %s", url), err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, stageName, "fetch", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, stageName, "fetch", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, services.Wrap(services.ErrUpstream, stageName, "fetch", url,
			&services.ResponseError{Service: "asset host", StatusCode: resp.StatusCode, Body: services.Snippet(string(body), snippetLimit)})
	}
	if len(body) > maxAssetBytes {
		return nil, services.Wrap(services.ErrUpstream, stageName, "fetch", fmt.Sprintf("%s exceeds %d bytes", url, maxAssetBytes), nil)
	}
	if len(body) == 0 {
		return nil, services.Wrap(services.ErrUpstream, stageName, "fetch", fmt.Sprintf("%s returned an empty body", url), nil)
	}
	return body, nil
}
