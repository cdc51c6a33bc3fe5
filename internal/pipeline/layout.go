package pipeline

import (
	"hookclip/internal/compose"
	"hookclip/internal/config"
)

// LayoutFromConfig maps the compose group onto a compositor layout.
func LayoutFromConfig(cfg *config.Config) compose.Layout {
	c := cfg.Compose
	return compose.Layout{
		WrapChars:       c.WrapChars,
		FontSize:        c.FontSize,
		LineSpacing:     c.LineSpacing,
		FontColor:       c.FontColor,
		BorderWidth:     c.BorderWidth,
		BorderColor:     c.BorderColor,
		TextYRatio:      c.TextYRatio,
		LogoWidthRatio:  c.LogoWidthRatio,
		LogoMargin:      c.LogoMargin,
		LogoBottomRatio: c.LogoBottomRatio,
		FadeSeconds:     c.FadeSeconds,
		Language:        cfg.CaptionLanguage(),
		Encoding: compose.Encoding{
			VideoCodec:   c.VideoCodec,
			Preset:       c.Preset,
			CRF:          c.CRF,
			PixelFormat:  c.PixelFormat,
			AudioCodec:   c.AudioCodec,
			AudioBitrate: c.AudioBitrate,
		},
	}
}
