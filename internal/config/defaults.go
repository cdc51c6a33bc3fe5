package config

const (
	defaultConfigPath  = "~/.config/hookclip/config.toml"
	projectConfigName  = "hookclip.toml"
	legacyConfigName   = "config.json"
	defaultWorkDir     = "~/.cache/hookclip/work"
	defaultOutputDir   = "."
	defaultLogDir      = "~/.local/state/hookclip/logs"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultLogMaxSize  = 20
	defaultLogBackups  = 5
	defaultLogMaxAge   = 30
	defaultGeminiURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel = "gemini-1.5-flash"
	defaultLanguage    = "vi"
	defaultFPTURL      = "https://api.fpt.ai/hmi/tts/v5"
	defaultVoice       = "banmai"
	defaultSpeed       = 1.2
	defaultMaxAttempts = 10
	defaultPollMS      = 2000
	defaultStrategy    = "measured"
)

// Default returns a Config populated with repository defaults. Credentials
// and asset references have no defaults.
func Default() Config {
	return Config{
		Caption: Caption{
			BaseURL:        defaultGeminiURL,
			Model:          defaultGeminiModel,
			Language:       defaultLanguage,
			TimeoutSeconds: 120,
		},
		Speech: Speech{
			BaseURL:        defaultFPTURL,
			Voice:          defaultVoice,
			Speed:          defaultSpeed,
			MaxAttempts:    defaultMaxAttempts,
			PollIntervalMS: defaultPollMS,
			TimeoutSeconds: 30,
		},
		Compose: Compose{
			Strategy:        defaultStrategy,
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
			VideoCodec:      "libx264",
			Preset:          "fast",
			CRF:             22,
			PixelFormat:     "yuv420p",
			AudioCodec:      "aac",
			AudioBitrate:    "192k",
		},
		Engine: Engine{
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
		},
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSize,
			MaxBackups: defaultLogBackups,
			MaxAgeDays: defaultLogMaxAge,
		},
	}
}
