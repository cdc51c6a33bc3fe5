package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"hookclip/internal/config"
	"hookclip/internal/services"
)

func writeAsset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	return path
}

func TestFetchAllMixesLocalAndRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote-logo"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	paths := config.AssetPaths{
		Overlay: writeAsset(t, dir, "overlay.png", "overlay"),
		Logo:    srv.URL + "/logo.png",
		Font:    writeAsset(t, dir, "font.otf", "font"),
	}
	bundle, err := NewLoader(WithHTTPClient(srv.Client())).FetchAll(context.Background(), paths)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if string(bundle.Overlay) != "overlay" || string(bundle.Logo) != "remote-logo" || string(bundle.Font) != "font" {
		t.Fatalf("unexpected bundle: %q %q %q", bundle.Overlay, bundle.Logo, bundle.Font)
	}
}

func TestFetchMissingLocalFileIsConfigurationError(t *testing.T) {
	_, err := NewLoader().Fetch(context.Background(), filepath.Join(t.TempDir(), "absent.png"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFetchRemoteNon2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := NewLoader(WithHTTPClient(srv.Client())).Fetch(context.Background(), srv.URL+"/logo.png")
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	var respErr *services.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusGone {
		t.Fatalf("expected response error with 410, got %v", err)
	}
}

func TestFetchEmptyReference(t *testing.T) {
	_, err := NewLoader().Fetch(context.Background(), "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFetchAllFailureCancelsSiblings(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-r.Context().Done()
	}))
	defer srv.Close()

	dir := t.TempDir()
	paths := config.AssetPaths{
		Overlay: filepath.Join(dir, "missing.png"),
		Logo:    srv.URL + "/logo.png",
		Font:    writeAsset(t, dir, "font.otf", "font"),
	}
	_, err := NewLoader(WithHTTPClient(srv.Client())).FetchAll(context.Background(), paths)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error from overlay, got %v", err)
	}
}
