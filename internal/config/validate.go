package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration values are usable. Empty credentials
// and asset references are reported by MissingFields instead, so a partly
// filled document can still be inspected.
func (c *Config) Validate() error {
	if err := c.validateCaption(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateCompose(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCaption() error {
	if _, err := language.Parse(c.Caption.Language); err != nil {
		return fmt.Errorf("caption.language: %q is not a BCP 47 tag", c.Caption.Language)
	}
	if c.Caption.TimeoutSeconds < 0 {
		return errors.New("caption.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateSpeech() error {
	if c.Speech.Speed < -3 || c.Speech.Speed > 3 {
		return fmt.Errorf("speech.speed must be within [-3, 3], got %v", c.Speech.Speed)
	}
	if c.Speech.MaxAttempts <= 0 {
		return errors.New("speech.max_attempts must be positive")
	}
	if c.Speech.PollIntervalMS <= 0 {
		return errors.New("speech.poll_interval_ms must be positive")
	}
	if c.Speech.TimeoutSeconds < 0 {
		return errors.New("speech.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateCompose() error {
	cp := c.Compose
	switch cp.Strategy {
	case "relative", "measured":
	default:
		return fmt.Errorf("compose.strategy: unsupported value %q (want relative or measured)", cp.Strategy)
	}
	if cp.WrapChars <= 0 {
		return errors.New("compose.wrap_chars must be positive")
	}
	if cp.FontSize <= 0 {
		return errors.New("compose.font_size must be positive")
	}
	if err := ensureRatio("compose.text_y_ratio", cp.TextYRatio, true); err != nil {
		return err
	}
	if err := ensureRatio("compose.logo_width_ratio", cp.LogoWidthRatio, false); err != nil {
		return err
	}
	if err := ensureRatio("compose.logo_bottom_ratio", cp.LogoBottomRatio, false); err != nil {
		return err
	}
	if cp.FadeSeconds < 0 {
		return errors.New("compose.fade_seconds must not be negative")
	}
	if cp.CRF < 0 || cp.CRF > 51 {
		return fmt.Errorf("compose.crf must be within [0, 51], got %d", cp.CRF)
	}
	if strings.TrimSpace(cp.VideoCodec) == "" || strings.TrimSpace(cp.AudioCodec) == "" {
		return errors.New("compose.video_codec and compose.audio_codec are required")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensureRatio(key string, value float64, allowZero bool) error {
	if value < 0 || value > 1 || (!allowZero && value == 0) {
		bounds := "(0, 1]"
		if allowZero {
			bounds = "[0, 1]"
		}
		return fmt.Errorf("%s must be within %s, got %v", key, bounds, value)
	}
	return nil
}
