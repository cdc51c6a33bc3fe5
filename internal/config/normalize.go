package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAPIKeys()
	if err := c.normalizeAssets(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServices()
	c.normalizeEngine()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeAPIKeys() {
	c.APIKeys.GoogleGemini = envFallback(c.APIKeys.GoogleGemini, "GEMINI_API_KEY")
	c.APIKeys.FPTAI = envFallback(c.APIKeys.FPTAI, "FPT_AI_API_KEY")
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}

func (c *Config) normalizeAssets() error {
	refs := map[string]*string{
		"asset_paths.overlay": &c.AssetPaths.Overlay,
		"asset_paths.logo":    &c.AssetPaths.Logo,
		"asset_paths.font":    &c.AssetPaths.Font,
	}
	for key, ref := range refs {
		*ref = strings.TrimSpace(*ref)
		if *ref == "" || IsRemote(*ref) {
			continue
		}
		expanded, err := expandPath(*ref)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*ref = expanded
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServices() {
	c.Caption.BaseURL = strings.TrimRight(strings.TrimSpace(c.Caption.BaseURL), "/")
	if c.Caption.BaseURL == "" {
		c.Caption.BaseURL = defaultGeminiURL
	}
	c.Caption.Model = strings.TrimSpace(c.Caption.Model)
	if c.Caption.Model == "" {
		c.Caption.Model = defaultGeminiModel
	}
	c.Caption.Prompt = strings.TrimSpace(c.Caption.Prompt)
	c.Caption.Language = strings.TrimSpace(c.Caption.Language)
	if c.Caption.Language == "" {
		c.Caption.Language = defaultLanguage
	}

	c.Speech.BaseURL = strings.TrimSpace(c.Speech.BaseURL)
	if c.Speech.BaseURL == "" {
		c.Speech.BaseURL = defaultFPTURL
	}
	c.Speech.Voice = strings.TrimSpace(c.Speech.Voice)
	if c.Speech.Voice == "" {
		c.Speech.Voice = defaultVoice
	}

	c.Compose.Strategy = strings.ToLower(strings.TrimSpace(c.Compose.Strategy))
	if c.Compose.Strategy == "" {
		c.Compose.Strategy = defaultStrategy
	}
}

func (c *Config) normalizeEngine() {
	c.Engine.FFmpegBinary = strings.TrimSpace(c.Engine.FFmpegBinary)
	if c.Engine.FFmpegBinary == "" {
		c.Engine.FFmpegBinary = "ffmpeg"
	}
	c.Engine.FFprobeBinary = strings.TrimSpace(c.Engine.FFprobeBinary)
	if c.Engine.FFprobeBinary == "" {
		c.Engine.FFprobeBinary = "ffprobe"
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSize
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}
