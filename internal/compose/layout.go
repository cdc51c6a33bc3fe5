package compose

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Strategy selects how composition geometry is derived.
type Strategy string

const (
	StrategyRelative Strategy = "relative"
	StrategyMeasured Strategy = "measured"
)

// ParseStrategy maps a configuration value to a Strategy.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case "", StrategyMeasured:
		return StrategyMeasured, nil
	case StrategyRelative:
		return StrategyRelative, nil
	default:
		return "", fmt.Errorf("unknown composition strategy %q (want %q or %q)", value, StrategyRelative, StrategyMeasured)
	}
}

// Layout holds the static typography, placement and encoding parameters.
type Layout struct {
	WrapChars       int
	FontSize        int
	LineSpacing     int
	FontColor       string
	BorderWidth     int
	BorderColor     string
	TextYRatio      float64
	LogoWidthRatio  float64
	LogoMargin      int
	LogoBottomRatio float64
	FadeSeconds     float64
	Language        language.Tag
	Encoding        Encoding
}

// Encoding lists the export codec settings.
type Encoding struct {
	VideoCodec   string
	Preset       string
	CRF          int
	PixelFormat  string
	AudioCodec   string
	AudioBitrate string
}

// DefaultLayout returns the house style for hook clips.
func DefaultLayout() Layout {
	return Layout{
		WrapChars:       30,
		FontSize:        33,
		LineSpacing:     11,
		FontColor:       "white",
		BorderWidth:     2,
		BorderColor:     "black@0.6",
		TextYRatio:      0.82,
		LogoWidthRatio:  0.2,
		LogoMargin:      30,
		LogoBottomRatio: 0.68,
		FadeSeconds:     1,
		Language:        language.Vietnamese,
		Encoding: Encoding{
			VideoCodec:   "libx264",
			Preset:       "fast",
			CRF:          22,
			PixelFormat:  "yuv420p",
			AudioCodec:   "aac",
			AudioBitrate: "192k",
		},
	}
}

// Validate reports the first invalid parameter.
func (l Layout) Validate() error {
	switch {
	case l.WrapChars <= 0:
		return fmt.Errorf("wrap width must be positive")
	case l.FontSize <= 0:
		return fmt.Errorf("font size must be positive")
	case l.LineSpacing < 0:
		return fmt.Errorf("line spacing must not be negative")
	case l.BorderWidth < 0:
		return fmt.Errorf("border width must not be negative")
	case l.TextYRatio < 0 || l.TextYRatio > 1:
		return fmt.Errorf("text y ratio must be within [0,1]")
	case l.LogoWidthRatio <= 0 || l.LogoWidthRatio > 1:
		return fmt.Errorf("logo width ratio must be within (0,1]")
	case l.LogoBottomRatio <= 0 || l.LogoBottomRatio > 1:
		return fmt.Errorf("logo bottom ratio must be within (0,1]")
	case l.LogoMargin < 0:
		return fmt.Errorf("logo margin must not be negative")
	case l.FadeSeconds < 0:
		return fmt.Errorf("fade duration must not be negative")
	case strings.TrimSpace(l.FontColor) == "" || strings.TrimSpace(l.BorderColor) == "":
		return fmt.Errorf("font and border colours are required")
	case l.Encoding.VideoCodec == "" || l.Encoding.AudioCodec == "":
		return fmt.Errorf("video and audio codecs are required")
	}
	return nil
}
