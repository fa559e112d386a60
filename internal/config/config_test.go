package config_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelsmith/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "HF_TOKEN", "HUGGING_FACE_HUB_TOKEN", "AWS_REGION"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	home := isolateEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "reelsmith", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if want := filepath.Join(home, ".cache", "reelsmith", "work"); cfg.Paths.WorkDir != want {
		t.Fatalf("work dir = %q, want %q", cfg.Paths.WorkDir, want)
	}
	if want := filepath.Join(home, ".local", "share", "reelsmith", "jobs.db"); cfg.Paths.JobDBPath != want {
		t.Fatalf("job db = %q, want %q", cfg.Paths.JobDBPath, want)
	}
	if cfg.Gemini.APIKey != "gem-key" {
		t.Fatalf("expected Gemini key from env, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Render.LogoScale != 0.15 || cfg.Render.LogoX != 50 || cfg.Render.LogoY != 50 {
		t.Fatalf("unexpected logo defaults: %+v", cfg.Render)
	}
	if cfg.Captions.Mode != config.CaptionModeSentence {
		t.Fatalf("unexpected caption mode %q", cfg.Captions.Mode)
	}
	if cfg.Export.ManifestName != "reelsmith_manifest.json" {
		t.Fatalf("unexpected manifest name %q", cfg.Export.ManifestName)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.ExportDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.JobDBPath)} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "reelsmith.toml")

	type payload struct {
		Captions struct {
			PrimaryColor string `toml:"primary_color"`
			Mode         string `toml:"mode"`
		} `toml:"captions"`
		Dub struct {
			SkipCaptionLanguages []string `toml:"skip_caption_languages"`
		} `toml:"dub"`
		Export struct {
			Languages []string `toml:"languages"`
		} `toml:"export"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	var custom payload
	custom.Captions.PrimaryColor = " #ffcc00 "
	custom.Captions.Mode = "WORD"
	custom.Dub.SkipCaptionLanguages = []string{"ZH", "zh", " ja "}
	custom.Export.Languages = []string{"en", "ES", "", "es"}
	custom.Logging.Format = "xml"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.Captions.PrimaryColor != "#FFCC00" {
		t.Fatalf("primary color = %q", cfg.Captions.PrimaryColor)
	}
	if cfg.Captions.Mode != config.CaptionModeWord {
		t.Fatalf("mode = %q", cfg.Captions.Mode)
	}
	if got := strings.Join(cfg.Dub.SkipCaptionLanguages, ","); got != "zh,ja" {
		t.Fatalf("skip languages = %q", got)
	}
	if got := strings.Join(cfg.Export.Languages, ","); got != "en,es" {
		t.Fatalf("languages = %q", got)
	}
	if !cfg.SkipCaptions("ZH") || cfg.SkipCaptions("en") {
		t.Fatal("unexpected skip policy")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unknown log format should fall back to console, got %q", cfg.Logging.Format)
	}
}

func TestLoadEnvFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, "secrets.env")
	if err := os.WriteFile(envPath, []byte("GEMINI_API_KEY=from-dotenv\nHF_TOKEN=hf-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("HF_TOKEN")
	})
	cfgPath := filepath.Join(dir, "reelsmith.toml")
	if err := os.WriteFile(cfgPath, []byte("[paths]\nenv_file = \""+envPath+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gemini.APIKey != "from-dotenv" {
		t.Fatalf("gemini key = %q", cfg.Gemini.APIKey)
	}
	if cfg.WhisperX.HuggingFaceToken != "hf-dotenv" {
		t.Fatalf("hf token = %q", cfg.WhisperX.HuggingFaceToken)
	}
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "reelsmith.toml")
	if err := os.WriteFile(cfgPath, []byte("[paths]\nenv_file = \""+filepath.Join(dir, "missing.env")+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(cfgPath); err == nil || !strings.Contains(err.Error(), "paths.env_file") {
		t.Fatalf("expected env_file error, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"odd width", func(c *config.Config) { c.Render.Width = 1081 }, "even"},
		{"zero fps", func(c *config.Config) { c.Render.FPS = 0 }, "render.fps"},
		{"bad color", func(c *config.Config) { c.Captions.PrimaryColor = "#FFF" }, "captions.primary_color"},
		{"bad mode", func(c *config.Config) { c.Captions.Mode = "paragraph" }, "captions.mode"},
		{"negative transition", func(c *config.Config) { c.Render.TransitionSeconds = -1 }, "transition_seconds"},
		{"publish without bucket", func(c *config.Config) { c.Publish.Enabled = true }, "publish.bucket"},
		{"manifest path", func(c *config.Config) { c.Export.ManifestName = "a/b.json" }, "manifest_name"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"ntfy topic without scheme", func(c *config.Config) { c.Notify.NtfyTopic = "ntfy.sh/reels" }, "notify.ntfy_topic"},
		{"cover color", func(c *config.Config) { c.Cover.Color = "white" }, "cover.color"},
		{"cover anchor", func(c *config.Config) { c.Cover.Anchor = "bottom" }, "cover.anchor"},
		{"cover position", func(c *config.Config) { c.Cover.Position = "540" }, "cover.position"},
		{"cover negative stroke", func(c *config.Config) { c.Cover.StrokeWidth = -1 }, "cover.stroke_width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected binaries %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}

func TestGeminiRetryIsOptIn(t *testing.T) {
	isolateEnv(t)
	if got := config.Default().Gemini.MaxAttempts; got != 1 {
		t.Fatalf("default max_attempts = %d, want 1", got)
	}
	for _, attempts := range []int{0, -2} {
		path := filepath.Join(t.TempDir(), "reelsmith.toml")
		body := "[gemini]\nmax_attempts = " + strconv.Itoa(attempts) + "\n"
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Gemini.MaxAttempts != 1 {
			t.Fatalf("max_attempts %d normalized to %d, want 1", attempts, cfg.Gemini.MaxAttempts)
		}
	}
}

func TestCoverSection(t *testing.T) {
	isolateEnv(t)
	def := config.Default().Cover
	if def.FontSize != 80 || def.StrokeWidth != 4 || def.Anchor != config.CoverAnchorMiddle {
		t.Fatalf("unexpected cover defaults: %+v", def)
	}

	path := filepath.Join(t.TempDir(), "reelsmith.toml")
	body := "[cover]\nfont_size = 96\ncolor = \"#ffcc00\"\nstroke_width = 0\nposition = \" 540, 300 \"\nanchor = \"MM\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cover.FontSize != 96 || cfg.Cover.Color != "#FFCC00" || cfg.Cover.StrokeColor != "#000000" || cfg.Cover.StrokeWidth != 0 {
		t.Fatalf("unexpected cover: %+v", cfg.Cover)
	}
	if cfg.Cover.Anchor != config.CoverAnchorMiddle {
		t.Fatalf("anchor = %q", cfg.Cover.Anchor)
	}
	x, y, centered, err := cfg.Cover.CoverPoint()
	if err != nil || centered || x != 540 || y != 300 {
		t.Fatalf("CoverPoint() = %v, %v, %v, %v", x, y, centered, err)
	}
}

func TestCoverPoint(t *testing.T) {
	cases := []struct {
		position string
		centered bool
		x, y     float64
		wantErr  bool
	}{
		{position: "center", centered: true},
		{position: "", centered: true},
		{position: "10,20", x: 10, y: 20},
		{position: "10.5, 20", x: 10.5, y: 20},
		{position: "10", wantErr: true},
		{position: "a,b", wantErr: true},
		{position: "-1,5", wantErr: true},
	}
	for _, tc := range cases {
		x, y, centered, err := config.Cover{Position: tc.position}.CoverPoint()
		if tc.wantErr {
			if err == nil {
				t.Fatalf("CoverPoint(%q) expected error", tc.position)
			}
			continue
		}
		if err != nil || centered != tc.centered || x != tc.x || y != tc.y {
			t.Fatalf("CoverPoint(%q) = %v, %v, %v, %v", tc.position, x, y, centered, err)
		}
	}
}
