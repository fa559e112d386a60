package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeCaptions()
	c.normalizeCover()
	c.normalizeDub()
	c.normalizeGemini()
	if err := c.normalizeWhisperX(); err != nil {
		return err
	}
	if err := c.normalizeExport(); err != nil {
		return err
	}
	c.normalizePublish()
	c.normalizeNotify()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.work_dir", &c.Paths.WorkDir, defaultWorkDir},
		{"paths.export_dir", &c.Paths.ExportDir, defaultExportDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.job_db_path", &c.Paths.JobDBPath, defaultJobDBPath},
		{"paths.font_file", &c.Paths.FontFile, ""},
		{"paths.env_file", &c.Paths.EnvFile, ""},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeRender() {
	c.Render.VideoCodec = strings.TrimSpace(c.Render.VideoCodec)
	if c.Render.VideoCodec == "" {
		c.Render.VideoCodec = defaultVideoCodec
	}
	c.Render.Preset = strings.TrimSpace(c.Render.Preset)
	if c.Render.Preset == "" {
		c.Render.Preset = defaultPreset
	}
	c.Render.AudioCodec = strings.TrimSpace(c.Render.AudioCodec)
	if c.Render.AudioCodec == "" {
		c.Render.AudioCodec = defaultAudioCodec
	}
	c.Render.AudioBitrate = strings.TrimSpace(c.Render.AudioBitrate)
	if c.Render.AudioBitrate == "" {
		c.Render.AudioBitrate = defaultAudioBitrate
	}
	if c.Render.ProbeTimeoutSeconds <= 0 {
		c.Render.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
	if c.Render.LogoScale <= 0 {
		c.Render.LogoScale = defaultLogoScale
	}
}

func (c *Config) normalizeCaptions() {
	c.Captions.FontFamily = strings.TrimSpace(c.Captions.FontFamily)
	c.Captions.PrimaryColor = strings.ToUpper(strings.TrimSpace(c.Captions.PrimaryColor))
	if c.Captions.PrimaryColor == "" {
		c.Captions.PrimaryColor = defaultPrimaryColor
	}
	c.Captions.BackgroundColor = strings.ToUpper(strings.TrimSpace(c.Captions.BackgroundColor))
	if c.Captions.BackgroundColor == "" {
		c.Captions.BackgroundColor = defaultBackgroundColor
	}
	c.Captions.Mode = strings.ToLower(strings.TrimSpace(c.Captions.Mode))
	if c.Captions.Mode == "" {
		c.Captions.Mode = defaultCaptionMode
	}
}

func (c *Config) normalizeCover() {
	if c.Cover.FontSize <= 0 {
		c.Cover.FontSize = defaultCoverFontSize
	}
	c.Cover.Color = strings.ToUpper(strings.TrimSpace(c.Cover.Color))
	if c.Cover.Color == "" {
		c.Cover.Color = defaultPrimaryColor
	}
	c.Cover.StrokeColor = strings.ToUpper(strings.TrimSpace(c.Cover.StrokeColor))
	if c.Cover.StrokeColor == "" {
		c.Cover.StrokeColor = defaultBackgroundColor
	}
	c.Cover.Position = strings.ToLower(strings.TrimSpace(c.Cover.Position))
	if c.Cover.Position == "" {
		c.Cover.Position = defaultCoverPosition
	}
	c.Cover.Anchor = strings.ToLower(strings.TrimSpace(c.Cover.Anchor))
	switch c.Cover.Anchor {
	case "", "mm":
		c.Cover.Anchor = CoverAnchorMiddle
	case "lt":
		c.Cover.Anchor = CoverAnchorTopLeft
	}
}

func (c *Config) normalizeDub() {
	c.Dub.Voice = strings.TrimSpace(c.Dub.Voice)
	if c.Dub.Voice == "" {
		c.Dub.Voice = defaultVoice
	}
	if c.Dub.Speed <= 0 {
		c.Dub.Speed = defaultSpeed
	}
	c.Dub.StyleHint = strings.TrimSpace(c.Dub.StyleHint)
	c.Dub.SourceLanguage = strings.ToLower(strings.TrimSpace(c.Dub.SourceLanguage))
	if c.Dub.SourceLanguage == "" {
		c.Dub.SourceLanguage = defaultSourceLanguage
	}
	c.Dub.SkipCaptionLanguages = normalizeLanguages(c.Dub.SkipCaptionLanguages)
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("GOOGLE_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = defaultGeminiBaseURL
	}
	c.Gemini.TranslateModel = strings.TrimSpace(c.Gemini.TranslateModel)
	if c.Gemini.TranslateModel == "" {
		c.Gemini.TranslateModel = defaultGeminiTranslateModel
	}
	c.Gemini.TTSModel = strings.TrimSpace(c.Gemini.TTSModel)
	if c.Gemini.TTSModel == "" {
		c.Gemini.TTSModel = defaultGeminiTTSModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}
	// Calls are not retried unless max_attempts asks for it; 0 means one try.
	if c.Gemini.MaxAttempts <= 0 {
		c.Gemini.MaxAttempts = 1
	}
	if c.Gemini.RetryBackoffSeconds < 0 {
		c.Gemini.RetryBackoffSeconds = 0
	}
}

func (c *Config) normalizeWhisperX() error {
	c.WhisperX.Model = strings.TrimSpace(c.WhisperX.Model)
	if c.WhisperX.Model == "" {
		c.WhisperX.Model = defaultWhisperXModel
	}
	c.WhisperX.VADMethod = strings.ToLower(strings.TrimSpace(c.WhisperX.VADMethod))
	if c.WhisperX.VADMethod == "" {
		c.WhisperX.VADMethod = defaultWhisperXVADMethod
	}
	c.WhisperX.HuggingFaceToken = strings.TrimSpace(c.WhisperX.HuggingFaceToken)
	if c.WhisperX.HuggingFaceToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.WhisperX.HuggingFaceToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.WhisperX.HuggingFaceToken = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.WhisperX.CacheDir) == "" {
		c.WhisperX.CacheDir = defaultWhisperXCacheDir
	}
	var err error
	if c.WhisperX.CacheDir, err = expandPath(c.WhisperX.CacheDir); err != nil {
		return fmt.Errorf("whisperx.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() error {
	c.Export.ProjectName = strings.TrimSpace(c.Export.ProjectName)
	if c.Export.ProjectName == "" {
		c.Export.ProjectName = defaultProjectName
	}
	c.Export.Languages = normalizeLanguages(c.Export.Languages)
	if c.Export.Concurrency <= 0 {
		c.Export.Concurrency = defaultExportConcurrency
	}
	c.Export.ManifestName = strings.TrimSpace(c.Export.ManifestName)
	if c.Export.ManifestName == "" {
		c.Export.ManifestName = defaultManifestName
	}
	var err error
	if c.Export.LogoPath, err = expandPath(strings.TrimSpace(c.Export.LogoPath)); err != nil {
		return fmt.Errorf("export.logo_path: %w", err)
	}
	if c.Export.MusicPath, err = expandPath(strings.TrimSpace(c.Export.MusicPath)); err != nil {
		return fmt.Errorf("export.music_path: %w", err)
	}
	return nil
}

func (c *Config) normalizePublish() {
	c.Publish.Bucket = strings.TrimSpace(c.Publish.Bucket)
	c.Publish.Prefix = strings.Trim(strings.TrimSpace(c.Publish.Prefix), "/")
	c.Publish.Region = strings.TrimSpace(c.Publish.Region)
	if c.Publish.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			c.Publish.Region = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNotify() {
	c.Notify.NtfyTopic = strings.TrimSpace(c.Notify.NtfyTopic)
	if c.Notify.RequestTimeoutSeconds <= 0 {
		c.Notify.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeLanguages(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
