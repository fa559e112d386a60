package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	ExportDir string `toml:"export_dir"`
	LogDir    string `toml:"log_dir"`
	JobDBPath string `toml:"job_db_path"`
	FontFile  string `toml:"font_file"`
	EnvFile   string `toml:"env_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Render contains canvas geometry and encoder settings shared by every
// composition.
type Render struct {
	Width                int     `toml:"width"`
	Height               int     `toml:"height"`
	FPS                  int     `toml:"fps"`
	TransitionSeconds    float64 `toml:"transition_seconds"`
	ImageDurationSeconds float64 `toml:"image_duration_seconds"`
	LogoScale            float64 `toml:"logo_scale"`
	LogoX                int     `toml:"logo_x"`
	LogoY                int     `toml:"logo_y"`
	MusicVolume          float64 `toml:"music_volume"`
	VideoCodec           string  `toml:"video_codec"`
	Preset               string  `toml:"preset"`
	CRF                  int     `toml:"crf"`
	AudioCodec           string  `toml:"audio_codec"`
	AudioBitrate         string  `toml:"audio_bitrate"`
	FFmpegBinary         string  `toml:"ffmpeg_binary"`
	FFprobeBinary        string  `toml:"ffprobe_binary"`
	ProbeTimeoutSeconds  int     `toml:"probe_timeout_seconds"`
}

// Captions contains the abstract caption style applied to burned subtitles.
type Captions struct {
	FontFamily        string `toml:"font_family"`
	FontSize          int    `toml:"font_size"`
	PrimaryColor      string `toml:"primary_color"`
	BorderEnabled     bool   `toml:"border_enabled"`
	BackgroundEnabled bool   `toml:"background_enabled"`
	BackgroundColor   string `toml:"background_color"`
	MarginV           int    `toml:"margin_v"`
	Mode              string `toml:"mode"`
}

// Cover contains the text style drawn on cover images. Position is "center"
// or "x,y" in pixels; Anchor says whether x,y names the block's top-left or
// its middle.
type Cover struct {
	FontSize    int    `toml:"font_size"`
	Color       string `toml:"color"`
	StrokeColor string `toml:"stroke_color"`
	StrokeWidth int    `toml:"stroke_width"`
	Position    string `toml:"position"`
	Anchor      string `toml:"anchor"`
}

// Dub contains narration and dubbing settings.
type Dub struct {
	Voice                string   `toml:"voice"`
	Speed                float64  `toml:"speed"`
	StyleHint            string   `toml:"style_hint"`
	SourceLanguage       string   `toml:"source_language"`
	BurnCaptions         bool     `toml:"burn_captions"`
	SkipCaptionLanguages []string `toml:"skip_caption_languages"`
}

// Gemini contains connection settings for translation and speech synthesis.
type Gemini struct {
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	TranslateModel      string `toml:"translate_model"`
	TTSModel            string `toml:"tts_model"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	MaxAttempts         int    `toml:"max_attempts"`
	RetryBackoffSeconds int    `toml:"retry_backoff_seconds"`
}

// WhisperX contains transcription settings.
type WhisperX struct {
	Model            string `toml:"model"`
	CUDAEnabled      bool   `toml:"cuda_enabled"`
	VADMethod        string `toml:"vad_method"`
	HuggingFaceToken string `toml:"hf_token"`
	CacheDir         string `toml:"cache_dir"`
}

// Export contains batch settings.
type Export struct {
	ProjectName  string   `toml:"project_name"`
	Languages    []string `toml:"languages"`
	Concurrency  int      `toml:"concurrency"`
	ManifestName string   `toml:"manifest_name"`
	CoverEnabled bool     `toml:"cover_enabled"`
	LogoPath     string   `toml:"logo_path"`
	MusicPath    string   `toml:"music_path"`
}

// Publish contains S3 upload settings.
type Publish struct {
	Enabled bool   `toml:"enabled"`
	Bucket  string `toml:"bucket"`
	Prefix  string `toml:"prefix"`
	Region  string `toml:"region"`
}

// Notify contains ntfy settings for batch notifications.
type Notify struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Config encapsulates all configuration values for reelsmith.
//
// Configuration sections by subsystem:
//   - Paths: work, export, log directories and the job database
//   - Logging: log format and level
//   - Render: canvas geometry, transitions, logo overlay, encoder settings
//   - Captions: caption style for burned subtitles
//   - Cover: cover text style and placement
//   - Dub: voice, speed, and caption skip policy
//   - Gemini: translation and TTS service
//   - WhisperX: transcription
//   - Export: batch concurrency, manifest, cover
//   - Publish: optional S3 upload
//   - Notify: optional ntfy batch notifications
type Config struct {
	Paths    Paths    `toml:"paths"`
	Logging  Logging  `toml:"logging"`
	Render   Render   `toml:"render"`
	Captions Captions `toml:"captions"`
	Cover    Cover    `toml:"cover"`
	Dub      Dub      `toml:"dub"`
	Gemini   Gemini   `toml:"gemini"`
	WhisperX WhisperX `toml:"whisperx"`
	Export   Export   `toml:"export"`
	Publish  Publish  `toml:"publish"`
	Notify   Notify   `toml:"notify"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnvFile(cfg.Paths.EnvFile); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadEnvFile populates unset environment variables from a dotenv file. An
// explicitly configured file must exist; the implicit ./.env is optional.
// Values already present in the environment win.
func loadEnvFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = ".env"
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("paths.env_file: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil {
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
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

	projectPath, err := filepath.Abs("reelsmith.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work, export, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.ExportDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.JobDBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for every composition.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Render.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Render.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// SkipCaptions reports whether captions should not be burned for lang.
func (c *Config) SkipCaptions(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, skip := range c.Dub.SkipCaptionLanguages {
		if skip == lang {
			return true
		}
	}
	return false
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

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Cover anchors.
const (
	CoverAnchorTopLeft = "top-left"
	CoverAnchorMiddle  = "middle"
)

// CoverPoint parses cover.position. centered is true for "center"; otherwise
// x and y are the pixel coordinates.
func (c Cover) CoverPoint() (x, y float64, centered bool, err error) {
	value := strings.ToLower(strings.TrimSpace(c.Position))
	if value == "" || value == "center" {
		return 0, 0, true, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, false, fmt.Errorf("cover.position: %q must be center or x,y", c.Position)
	}
	if x, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, false, fmt.Errorf("cover.position: bad x in %q", c.Position)
	}
	if y, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, false, fmt.Errorf("cover.position: bad y in %q", c.Position)
	}
	if x < 0 || y < 0 {
		return 0, 0, false, fmt.Errorf("cover.position: %q must not be negative", c.Position)
	}
	return x, y, false, nil
}
