package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"hookclip/internal/config"
	"hookclip/internal/services"
	"hookclip/internal/testsupport"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("FPT_AI_API_KEY", "")
}

func TestConfigInitAndValidate(t *testing.T) {
	clearCredentialEnv(t)
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	target := filepath.Join(tmp, "hookclip", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, target)
}

func TestConfigValidateReportsMissingValues(t *testing.T) {
	clearCredentialEnv(t)
	cfg := testsupport.NewConfig(t, testsupport.WithAPIKeys("", "fpt"))
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "validate"}, path)
	if err == nil {
		t.Fatal("expected validate to fail")
	}
	requireContains(t, out, "api_keys.google_gemini")
}

func TestConfigInitStdoutWritesNoFile(t *testing.T) {
	clearCredentialEnv(t)
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	out, _, err := runCLI(t, []string{"config", "init", "--stdout"}, "")
	if err != nil {
		t.Fatalf("config init --stdout: %v", err)
	}
	if out != config.SampleConfig() {
		t.Fatalf("expected the embedded sample, got %q", out)
	}
	requireContains(t, out, "[api_keys]")
	requireContains(t, out, "[asset_paths]")
	if _, err := os.Stat(filepath.Join(tmp, ".config", "hookclip", "config.toml")); !os.IsNotExist(err) {
		t.Fatalf("expected no config file to be written, stat err=%v", err)
	}
}

func TestConfigShowMasksCredentials(t *testing.T) {
	clearCredentialEnv(t)
	cfg := testsupport.NewConfig(t, testsupport.WithAPIKeys("gemini-secret-key", "fpt-secret-key"))
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "show"}, path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "gemini-secret-key") || strings.Contains(out, "fpt-secret-key") {
		t.Fatalf("credentials leaked: %s", out)
	}
	requireContains(t, out, "[asset_paths]")
	requireContains(t, out, cfg.AssetPaths.Logo)
}

func TestCheckPassesWithStubbedBinaries(t *testing.T) {
	clearCredentialEnv(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"check"}, path)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "all checks passed")
}

func TestCheckFailsWithoutBinaries(t *testing.T) {
	clearCredentialEnv(t)
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)
	t.Setenv("PATH", "")

	out, _, err := runCLI(t, []string{"check"}, path)
	if err == nil {
		t.Fatal("expected check to fail")
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "checks failed")
}

func TestRenderWithMissingCredentialWritesNothing(t *testing.T) {
	clearCredentialEnv(t)
	cfg := testsupport.NewConfig(t, testsupport.WithAPIKeys("gemini", ""))
	path := writeTestConfig(t, cfg)
	video := filepath.Join(testsupport.BaseDir(cfg), "clip.mp4")
	testsupport.WriteMedia(t, video)

	_, _, err := runCLI(t, []string{"render", "--quiet", video}, path)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	entries, _ := os.ReadDir(cfg.Paths.OutputDir)
	if len(entries) != 0 {
		t.Fatalf("expected no output files, found %d", len(entries))
	}
}

func TestRenderMissingSourceIsValidationError(t *testing.T) {
	clearCredentialEnv(t)
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)

	_, _, err := runCLI(t, []string{"render", filepath.Join(t.TempDir(), "absent.mp4")}, path)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMissingConfigFileIsConfigurationError(t *testing.T) {
	_, _, err := runCLI(t, []string{"check"}, filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	requireContains(t, formatError(err), "Hint:")
}

func TestVersionSkipsConfig(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "hookclip dev")
}
