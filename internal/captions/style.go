package captions

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
)

// ErrInvalidColor marks a color that is not #RRGGBB.
var ErrInvalidColor = errors.New("invalid caption color")

// Alpha bytes used in ASS color tokens.
const (
	AlphaOpaque   = 0x00
	AlphaHalf     = 0x80
	blackOutline  = "&H00000000"
	alignmentBase = "Alignment=2"
)

// Default colors substituted by TranslateOrDefault.
const (
	DefaultPrimaryColor    = "#FFFFFF"
	DefaultBackgroundColor = "#000000"
)

// Style is the abstract caption style chosen by the user.
type Style struct {
	FontFamily        string
	FontSizePx        int
	PrimaryColorHex   string
	BorderEnabled     bool
	BackgroundEnabled bool
	// BackgroundColorHex is only consulted when BackgroundEnabled is set.
	BackgroundColorHex string
	// MarginFromBottomPx is passed through as MarginV when non-nil.
	MarginFromBottomPx *int
}

// StyleFromConfig builds a Style from the [captions] config section.
func StyleFromConfig(cfg config.Captions) Style {
	margin := cfg.MarginV
	return Style{
		FontFamily:         cfg.FontFamily,
		FontSizePx:         cfg.FontSize,
		PrimaryColorHex:    cfg.PrimaryColor,
		BorderEnabled:      cfg.BorderEnabled,
		BackgroundEnabled:  cfg.BackgroundEnabled,
		BackgroundColorHex: cfg.BackgroundColor,
		MarginFromBottomPx: &margin,
	}
}

// RenderStyle is the ordered list of ASS style overrides.
type RenderStyle struct {
	Params []string
}

// String joins the overrides into a force_style value.
func (r RenderStyle) String() string {
	return strings.Join(r.Params, ",")
}

// Has reports whether the style carries the exact parameter.
func (r RenderStyle) Has(param string) bool {
	for _, p := range r.Params {
		if p == param {
			return true
		}
	}
	return false
}

// Translate converts style into ASS overrides for a canvas of the given
// height. Precedence is background box, then outlined text, then plain text.
func Translate(style Style, canvasHeight int, logger *slog.Logger) (RenderStyle, error) {
	primary, err := ASSColor(style.PrimaryColorHex, AlphaOpaque)
	if err != nil {
		return RenderStyle{}, fmt.Errorf("primary color: %w", err)
	}

	var params []string
	switch {
	case style.BackgroundEnabled:
		bg, err := ASSColor(style.BackgroundColorHex, AlphaHalf)
		if err != nil {
			return RenderStyle{}, fmt.Errorf("background color: %w", err)
		}
		params = []string{alignmentBase, "BorderStyle=3", "Outline=2", "Shadow=0",
			"OutlineColour=" + bg, "BackColour=" + bg}
	case style.BorderEnabled:
		params = []string{alignmentBase, "BorderStyle=1", "Outline=2", "Shadow=1",
			"OutlineColour=" + blackOutline}
	default:
		params = []string{alignmentBase, "BorderStyle=1", "Outline=0", "Shadow=0"}
	}

	params = appendFont(params, style)
	params = append(params, "PrimaryColour="+primary)
	if style.MarginFromBottomPx != nil {
		checkMargin(*style.MarginFromBottomPx, canvasHeight, logger)
		params = append(params, "MarginV="+strconv.Itoa(*style.MarginFromBottomPx))
	}
	return RenderStyle{Params: params}, nil
}

// TranslateOrDefault behaves like Translate but substitutes white text and a
// black background when a color is malformed.
func TranslateOrDefault(style Style, canvasHeight int, logger *slog.Logger) RenderStyle {
	out, err := Translate(style, canvasHeight, logger)
	if err == nil {
		return out
	}
	logging.WarnWithContext(logger, "caption color invalid; using defaults", "caption_style_fallback",
		logging.Error(err),
		logging.String("primary_color", style.PrimaryColorHex),
		logging.String("background_color", style.BackgroundColorHex),
		logging.String(logging.FieldErrorHint, "use #RRGGBB colors in [captions]"),
		logging.String(logging.FieldImpact, "captions rendered white on black"),
	)
	style.PrimaryColorHex = DefaultPrimaryColor
	style.BackgroundColorHex = DefaultBackgroundColor
	out, err = Translate(style, canvasHeight, logger)
	if err != nil {
		// Unreachable with valid defaults.
		return RenderStyle{Params: []string{alignmentBase}}
	}
	return out
}

// ImageStyle returns the overrides used when burning captions onto a single
// still image: thin black outline, no shadow, no box.
func ImageStyle(style Style, canvasHeight int, logger *slog.Logger) (RenderStyle, error) {
	primary, err := ASSColor(style.PrimaryColorHex, AlphaOpaque)
	if err != nil {
		return RenderStyle{}, fmt.Errorf("primary color: %w", err)
	}
	params := []string{alignmentBase, "BorderStyle=1", "Outline=1", "Shadow=0"}
	params = appendFont(params, style)
	params = append(params, "PrimaryColour="+primary, "OutlineColour="+blackOutline)
	if style.MarginFromBottomPx != nil {
		checkMargin(*style.MarginFromBottomPx, canvasHeight, logger)
		params = append(params, "MarginV="+strconv.Itoa(*style.MarginFromBottomPx))
	}
	return RenderStyle{Params: params}, nil
}

// ASSColor converts #RRGGBB into &HAABBGGRR with the given alpha byte.
func ASSColor(hex string, alpha uint8) (string, error) {
	c := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(c) != 6 {
		return "", fmt.Errorf("%w: %q must be #RRGGBB", ErrInvalidColor, hex)
	}
	if _, err := strconv.ParseUint(c, 16, 32); err != nil {
		return "", fmt.Errorf("%w: %q is not hexadecimal", ErrInvalidColor, hex)
	}
	c = strings.ToUpper(c)
	return fmt.Sprintf("&H%02X%s%s%s", alpha, c[4:6], c[2:4], c[0:2]), nil
}

func appendFont(params []string, style Style) []string {
	if name := strings.TrimSpace(style.FontFamily); name != "" {
		params = append(params, "Fontname="+name)
	}
	if style.FontSizePx > 0 {
		params = append(params, "Fontsize="+strconv.Itoa(style.FontSizePx))
	}
	return params
}

func checkMargin(margin, canvasHeight int, logger *slog.Logger) {
	if canvasHeight <= 0 || logger == nil {
		return
	}
	switch {
	case margin > canvasHeight:
		logging.ErrorWithContext(logger, "caption margin exceeds canvas height", "caption_margin",
			logging.Int("margin_v", margin),
			logging.Int("canvas_height", canvasHeight),
			logging.String(logging.FieldErrorHint, "lower captions.margin_v; captions will be off-screen"),
		)
	case margin > canvasHeight/2:
		logging.WarnWithContext(logger, "caption margin above half canvas height", "caption_margin",
			logging.Int("margin_v", margin),
			logging.Int("canvas_height", canvasHeight),
			logging.String(logging.FieldErrorHint, "lower captions.margin_v"),
			logging.String(logging.FieldImpact, "captions may sit too high"),
		)
	}
}
