package captions

import (
	"bytes"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
)

func intPtr(v int) *int { return &v }

func TestASSColor(t *testing.T) {
	tests := []struct {
		hex   string
		alpha uint8
		want  string
	}{
		{"#FFFFFF", AlphaOpaque, "&H00FFFFFF"},
		{"#000000", AlphaHalf, "&H80000000"},
		{"#112233", AlphaOpaque, "&H00332211"},
		{"#ff8800", AlphaOpaque, "&H000088FF"},
		{"abcdef", AlphaHalf, "&H80EFCDAB"},
	}
	for _, tt := range tests {
		got, err := ASSColor(tt.hex, tt.alpha)
		if err != nil {
			t.Fatalf("ASSColor(%q): %v", tt.hex, err)
		}
		if got != tt.want {
			t.Errorf("ASSColor(%q) = %q, want %q", tt.hex, got, tt.want)
		}
	}
	for _, bad := range []string{"#FFF", "#GGGGGG", "", "#1234567"} {
		if _, err := ASSColor(bad, 0); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ASSColor(%q) err = %v, want ErrInvalidColor", bad, err)
		}
	}
}

func TestTranslatePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		style Style
		want  string
	}{
		{
			name:  "border white",
			style: Style{PrimaryColorHex: "#FFFFFF", BorderEnabled: true},
			want:  "Alignment=2,BorderStyle=1,Outline=2,Shadow=1,OutlineColour=&H00000000,PrimaryColour=&H00FFFFFF",
		},
		{
			name:  "background wins over border",
			style: Style{PrimaryColorHex: "#FFFFFF", BorderEnabled: true, BackgroundEnabled: true, BackgroundColorHex: "#000000"},
			want:  "Alignment=2,BorderStyle=3,Outline=2,Shadow=0,OutlineColour=&H80000000,BackColour=&H80000000,PrimaryColour=&H00FFFFFF",
		},
		{
			name:  "plain with font and margin",
			style: Style{FontFamily: "Noto Sans", FontSizePx: 48, PrimaryColorHex: "#FFCC00", MarginFromBottomPx: intPtr(120)},
			want:  "Alignment=2,BorderStyle=1,Outline=0,Shadow=0,Fontname=Noto Sans,Fontsize=48,PrimaryColour=&H0000CCFF,MarginV=120",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.style, 1920, logging.NewNop())
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("Translate = %q\nwant        %q", got.String(), tt.want)
			}
		})
	}
}

func TestTranslateRoundTripTokens(t *testing.T) {
	border, err := Translate(Style{PrimaryColorHex: "#FFFFFF", BorderEnabled: true}, 1920, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !border.Has("PrimaryColour=&H00FFFFFF") || !border.Has("BorderStyle=1") || !border.Has("Outline=2") {
		t.Fatalf("border style missing tokens: %v", border.Params)
	}

	box, err := Translate(Style{PrimaryColorHex: "#FFFFFF", BackgroundEnabled: true, BackgroundColorHex: "#000000"}, 1920, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !box.Has("BorderStyle=3") || !box.Has("BackColour=&H80000000") {
		t.Fatalf("box style missing tokens: %v", box.Params)
	}
}

func TestTranslateInvalidColor(t *testing.T) {
	if _, err := Translate(Style{PrimaryColorHex: "#FFF"}, 1920, nil); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
	// Background color is only checked when the box is enabled.
	if _, err := Translate(Style{PrimaryColorHex: "#FFFFFF", BackgroundColorHex: "nope"}, 1920, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Translate(Style{PrimaryColorHex: "#FFFFFF", BackgroundEnabled: true, BackgroundColorHex: "nope"}, 1920, nil); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor for background, got %v", err)
	}
}

func TestTranslateOrDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	got := TranslateOrDefault(Style{PrimaryColorHex: "red", BackgroundEnabled: true, BackgroundColorHex: "#00"}, 1920, logger)
	if !got.Has("PrimaryColour=&H00FFFFFF") || !got.Has("BackColour=&H80000000") {
		t.Fatalf("expected defaults, got %v", got.Params)
	}
	if !strings.Contains(buf.String(), "caption_style_fallback") {
		t.Fatalf("expected fallback warning, got %s", buf.String())
	}
}

func TestMarginValidationLogs(t *testing.T) {
	tests := []struct {
		margin    int
		wantLevel string
	}{
		{100, ""},
		{1000, `"level":"WARN"`},
		{2000, `"level":"ERROR"`},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		style := Style{PrimaryColorHex: "#FFFFFF", MarginFromBottomPx: intPtr(tt.margin)}
		got, err := Translate(style, 1920, logger)
		if err != nil {
			t.Fatalf("margin %d: unexpected error %v", tt.margin, err)
		}
		if !got.Has("MarginV=" + strconv.Itoa(tt.margin)) {
			t.Fatalf("margin %d not passed through: %v", tt.margin, got.Params)
		}
		out := buf.String()
		if tt.wantLevel == "" && out != "" {
			t.Fatalf("margin %d: expected no log, got %s", tt.margin, out)
		}
		if tt.wantLevel != "" && !strings.Contains(out, tt.wantLevel) {
			t.Fatalf("margin %d: expected %s, got %s", tt.margin, tt.wantLevel, out)
		}
	}
}

func TestImageStyle(t *testing.T) {
	got, err := ImageStyle(Style{FontSizePx: 36, PrimaryColorHex: "#FFFFFF", BackgroundEnabled: true}, 1080, nil)
	if err != nil {
		t.Fatalf("ImageStyle: %v", err)
	}
	want := "Alignment=2,BorderStyle=1,Outline=1,Shadow=0,Fontsize=36,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000"
	if got.String() != want {
		t.Fatalf("ImageStyle = %q, want %q", got.String(), want)
	}
}

func TestStyleFromConfig(t *testing.T) {
	cfg := config.Default().Captions
	style := StyleFromConfig(cfg)
	if style.MarginFromBottomPx == nil || *style.MarginFromBottomPx != cfg.MarginV {
		t.Fatalf("margin not carried: %+v", style)
	}
	if style.PrimaryColorHex != cfg.PrimaryColor || !style.BorderEnabled {
		t.Fatalf("unexpected style %+v", style)
	}
}

func TestEscapeFilterPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/tmp/subs.srt", "/tmp/subs.srt"},
		{`C:\work\subs.srt`, `C\:/work/subs.srt`},
		{"/tmp/it's.srt", `/tmp/it'\''s.srt`},
		{"/tmp/[draft]/a.srt", `/tmp/\[draft\]/a.srt`},
	}
	for _, tt := range tests {
		if got := EscapeFilterPath(tt.in); got != tt.want {
			t.Errorf("EscapeFilterPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
