package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"hookclip/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credentials are set and the three brand assets exist as small local files.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.APIKeys.GoogleGemini = "test-gemini"
	cfgVal.APIKeys.FPTAI = "test-fpt"
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	assetDir := filepath.Join(base, "assets")
	cfgVal.AssetPaths.Overlay = filepath.Join(assetDir, "overlay.png")
	cfgVal.AssetPaths.Logo = filepath.Join(assetDir, "logo.png")
	cfgVal.AssetPaths.Font = filepath.Join(assetDir, "font.otf")
	for _, path := range []string{cfgVal.AssetPaths.Overlay, cfgVal.AssetPaths.Logo, cfgVal.AssetPaths.Font} {
		WriteMedia(t, path)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKeys sets both service credentials.
func WithAPIKeys(gemini, fpt string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.APIKeys.GoogleGemini = gemini
		b.cfg.APIKeys.FPTAI = fpt
	}
}

// WithStrategy selects the composition strategy.
func WithStrategy(strategy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Compose.Strategy = strategy
	}
}

// WithServiceURLs points the caption and speech clients at test servers.
func WithServiceURLs(captionBase, speechBase string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Caption.BaseURL = captionBase
		b.cfg.Speech.BaseURL = speechBase
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
