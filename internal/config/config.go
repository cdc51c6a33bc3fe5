package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"hookclip/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// APIKeys holds the external service credentials.
type APIKeys struct {
	GoogleGemini string `toml:"google_gemini" json:"google_gemini"`
	FPTAI        string `toml:"fpt_ai" json:"fpt_ai"`
}

// AssetPaths references the brand assets. Each value is a local path or an
// http(s) URL.
type AssetPaths struct {
	Overlay string `toml:"overlay" json:"overlay"`
	Logo    string `toml:"logo" json:"logo"`
	Font    string `toml:"font" json:"font"`
}

// Caption configures the Gemini caption request.
type Caption struct {
	BaseURL        string `toml:"base_url" json:"base_url"`
	Model          string `toml:"model" json:"model"`
	Prompt         string `toml:"prompt" json:"prompt"`
	Language       string `toml:"language" json:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds" json:"timeout_seconds"`
}

// Speech configures FPT.AI synthesis and download polling.
type Speech struct {
	BaseURL        string  `toml:"base_url" json:"base_url"`
	Voice          string  `toml:"voice" json:"voice"`
	Speed          float64 `toml:"speed" json:"speed"`
	MaxAttempts    int     `toml:"max_attempts" json:"max_attempts"`
	PollIntervalMS int     `toml:"poll_interval_ms" json:"poll_interval_ms"`
	TimeoutSeconds int     `toml:"timeout_seconds" json:"timeout_seconds"`
}

// Compose configures layout and export encoding.
type Compose struct {
	Strategy        string  `toml:"strategy" json:"strategy"`
	WrapChars       int     `toml:"wrap_chars" json:"wrap_chars"`
	FontSize        int     `toml:"font_size" json:"font_size"`
	LineSpacing     int     `toml:"line_spacing" json:"line_spacing"`
	FontColor       string  `toml:"font_color" json:"font_color"`
	BorderWidth     int     `toml:"border_width" json:"border_width"`
	BorderColor     string  `toml:"border_color" json:"border_color"`
	TextYRatio      float64 `toml:"text_y_ratio" json:"text_y_ratio"`
	LogoWidthRatio  float64 `toml:"logo_width_ratio" json:"logo_width_ratio"`
	LogoMargin      int     `toml:"logo_margin" json:"logo_margin"`
	LogoBottomRatio float64 `toml:"logo_bottom_ratio" json:"logo_bottom_ratio"`
	FadeSeconds     float64 `toml:"fade_seconds" json:"fade_seconds"`
	VideoCodec      string  `toml:"video_codec" json:"video_codec"`
	Preset          string  `toml:"preset" json:"preset"`
	CRF             int     `toml:"crf" json:"crf"`
	PixelFormat     string  `toml:"pixel_format" json:"pixel_format"`
	AudioCodec      string  `toml:"audio_codec" json:"audio_codec"`
	AudioBitrate    string  `toml:"audio_bitrate" json:"audio_bitrate"`
}

// Engine names the encoder executables.
type Engine struct {
	FFmpegBinary  string `toml:"ffmpeg_binary" json:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary" json:"ffprobe_binary"`
	KeepWorkspace bool   `toml:"keep_workspace" json:"keep_workspace"`
}

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir" json:"work_dir"`
	OutputDir string `toml:"output_dir" json:"output_dir"`
	LogDir    string `toml:"log_dir" json:"log_dir"`
}

// Logging configures log output and file rotation.
type Logging struct {
	Format     string `toml:"format" json:"format"`
	Level      string `toml:"level" json:"level"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days"`
	Compress   bool   `toml:"compress" json:"compress"`
}

// Config is the complete hookclip configuration.
type Config struct {
	APIKeys    APIKeys    `toml:"api_keys" json:"api_keys"`
	AssetPaths AssetPaths `toml:"asset_paths" json:"asset_paths"`
	Caption    Caption    `toml:"caption" json:"caption"`
	Speech     Speech     `toml:"speech" json:"speech"`
	Compose    Compose    `toml:"compose" json:"compose"`
	Engine     Engine     `toml:"engine" json:"engine"`
	Paths      Paths      `toml:"paths" json:"paths"`
	Logging    Logging    `toml:"logging" json:"logging"`
}

// requiredGroups must be present in every configuration document.
var requiredGroups = []string{"api_keys", "asset_paths"}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file or a
// document without the required groups is a services.ErrConfiguration.
func Load(path string) (*Config, string, bool, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if !exists {
		return nil, resolvedPath, false, services.Wrap(services.ErrConfiguration, "config", "load",
			fmt.Sprintf("config file %s not found (run `hookclip config init`)", resolvedPath), nil)
	}

	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, resolvedPath, true, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, formatFor(resolvedPath))
	if err != nil {
		return nil, resolvedPath, true, err
	}
	return cfg, resolvedPath, true, nil
}

// Parse decodes a document in the given format ("toml" or "json"), applies
// defaults, normalizes and validates it.
func Parse(data []byte, format string) (*Config, error) {
	var doc map[string]any
	cfg := Default()
	switch format {
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "config", "parse", "invalid json", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "config", "parse", "invalid json", err)
		}
	default:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "config", "parse", "invalid toml", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "config", "parse", "invalid toml", err)
		}
	}
	for _, group := range requiredGroups {
		if _, ok := doc[group].(map[string]any); !ok {
			return nil, services.Wrap(services.ErrConfiguration, "config", "parse", fmt.Sprintf("missing required group [%s]", group), nil)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "normalize", "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
	}
	return &cfg, nil
}

func formatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "toml"
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	candidates := []string{defaultPath}
	for _, local := range []string{projectConfigName, legacyConfigName} {
		abs, err := filepath.Abs(local)
		if err != nil {
			return "", false, err
		}
		candidates = append(candidates, abs)
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the work, output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MissingFields lists the required settings that are empty, using their
// document keys.
func (c *Config) MissingFields() []string {
	var missing []string
	check := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	check("api_keys.google_gemini", c.APIKeys.GoogleGemini)
	check("api_keys.fpt_ai", c.APIKeys.FPTAI)
	check("asset_paths.overlay", c.AssetPaths.Overlay)
	check("asset_paths.logo", c.AssetPaths.Logo)
	check("asset_paths.font", c.AssetPaths.Font)
	return missing
}

// CaptionLanguage returns the parsed caption language, defaulting to Vietnamese.
func (c *Config) CaptionLanguage() language.Tag {
	tag, err := language.Parse(c.Caption.Language)
	if err != nil {
		return language.Vietnamese
	}
	return tag
}

// IsRemote reports whether an asset reference is an http(s) URL.
func IsRemote(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample document.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
