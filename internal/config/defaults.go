package config

const (
	defaultConfigPath           = "~/.config/reelsmith/config.toml"
	defaultWorkDir              = "~/.cache/reelsmith/work"
	defaultExportDir            = "~/Videos/reelsmith"
	defaultLogDir               = "~/.local/share/reelsmith/logs"
	defaultJobDBPath            = "~/.local/share/reelsmith/jobs.db"
	defaultWhisperXCacheDir     = "~/.cache/reelsmith/whisperx"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultWidth                = 1080
	defaultHeight               = 1920
	defaultFPS                  = 30
	defaultTransitionSeconds    = 0.5
	defaultImageDurationSeconds = 3.0
	defaultLogoScale            = 0.15
	defaultLogoOffset           = 50
	defaultMusicVolume          = 0.15
	defaultVideoCodec           = "libx264"
	defaultPreset               = "medium"
	defaultCRF                  = 23
	defaultAudioCodec           = "aac"
	defaultAudioBitrate         = "192k"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultProbeTimeoutSeconds  = 30
	defaultFontFamily           = "Arial"
	defaultFontSize             = 24
	defaultPrimaryColor         = "#FFFFFF"
	defaultBackgroundColor      = "#000000"
	defaultMarginV              = 60
	defaultCaptionMode          = CaptionModeSentence
	defaultCoverFontSize        = 80
	defaultCoverStrokeWidth     = 4
	defaultCoverPosition        = "center"
	defaultVoice                = "Kore"
	defaultSpeed                = 1.0
	defaultSourceLanguage       = "en"
	defaultGeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiTranslateModel = "gemini-2.5-flash"
	defaultGeminiTTSModel       = "gemini-2.5-flash-preview-tts"
	defaultGeminiTimeoutSeconds = 120
	defaultGeminiMaxAttempts    = 1
	defaultGeminiRetryBackoff   = 2
	defaultWhisperXModel        = "large-v3-turbo"
	defaultWhisperXVADMethod    = "silero"
	defaultExportConcurrency    = 2
	defaultManifestName         = "reelsmith_manifest.json"
	defaultProjectName          = "reelsmith"
	defaultNtfyTimeoutSeconds   = 10
)

// Caption timing modes.
const (
	CaptionModeSentence = "sentence"
	CaptionModeWord     = "word"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			ExportDir: defaultExportDir,
			LogDir:    defaultLogDir,
			JobDBPath: defaultJobDBPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Render: Render{
			Width:                defaultWidth,
			Height:               defaultHeight,
			FPS:                  defaultFPS,
			TransitionSeconds:    defaultTransitionSeconds,
			ImageDurationSeconds: defaultImageDurationSeconds,
			LogoScale:            defaultLogoScale,
			LogoX:                defaultLogoOffset,
			LogoY:                defaultLogoOffset,
			MusicVolume:          defaultMusicVolume,
			VideoCodec:           defaultVideoCodec,
			Preset:               defaultPreset,
			CRF:                  defaultCRF,
			AudioCodec:           defaultAudioCodec,
			AudioBitrate:         defaultAudioBitrate,
			FFmpegBinary:         defaultFFmpegBinary,
			FFprobeBinary:        defaultFFprobeBinary,
			ProbeTimeoutSeconds:  defaultProbeTimeoutSeconds,
		},
		Captions: Captions{
			FontFamily:      defaultFontFamily,
			FontSize:        defaultFontSize,
			PrimaryColor:    defaultPrimaryColor,
			BorderEnabled:   true,
			BackgroundColor: defaultBackgroundColor,
			MarginV:         defaultMarginV,
			Mode:            defaultCaptionMode,
		},
		Cover: Cover{
			FontSize:    defaultCoverFontSize,
			Color:       defaultPrimaryColor,
			StrokeColor: defaultBackgroundColor,
			StrokeWidth: defaultCoverStrokeWidth,
			Position:    defaultCoverPosition,
			Anchor:      CoverAnchorMiddle,
		},
		Dub: Dub{
			Voice:          defaultVoice,
			Speed:          defaultSpeed,
			SourceLanguage: defaultSourceLanguage,
			BurnCaptions:   true,
		},
		Gemini: Gemini{
			BaseURL:             defaultGeminiBaseURL,
			TranslateModel:      defaultGeminiTranslateModel,
			TTSModel:            defaultGeminiTTSModel,
			TimeoutSeconds:      defaultGeminiTimeoutSeconds,
			MaxAttempts:         defaultGeminiMaxAttempts,
			RetryBackoffSeconds: defaultGeminiRetryBackoff,
		},
		WhisperX: WhisperX{
			Model:     defaultWhisperXModel,
			VADMethod: defaultWhisperXVADMethod,
			CacheDir:  defaultWhisperXCacheDir,
		},
		Export: Export{
			ProjectName:  defaultProjectName,
			Concurrency:  defaultExportConcurrency,
			ManifestName: defaultManifestName,
		},
		Notify: Notify{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
	}
}
