package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Service credentials are
// checked by the clients that need them so that offline commands keep working
// without keys.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateCover(); err != nil {
		return err
	}
	if err := c.validateDub(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateNotify(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRender() error {
	if err := ensurePositiveMap(map[string]int{
		"render.width":  c.Render.Width,
		"render.height": c.Render.Height,
		"render.fps":    c.Render.FPS,
	}); err != nil {
		return err
	}
	if c.Render.Width%2 != 0 || c.Render.Height%2 != 0 {
		return errors.New("render.width and render.height must be even")
	}
	if c.Render.TransitionSeconds < 0 {
		return errors.New("render.transition_seconds must not be negative")
	}
	if c.Render.ImageDurationSeconds <= 0 {
		return errors.New("render.image_duration_seconds must be positive")
	}
	if c.Render.LogoScale > 1 {
		return errors.New("render.logo_scale must be between 0 and 1")
	}
	if c.Render.MusicVolume < 0 || c.Render.MusicVolume > 1 {
		return errors.New("render.music_volume must be between 0 and 1")
	}
	if c.Render.CRF < 0 || c.Render.CRF > 51 {
		return errors.New("render.crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.FontSize <= 0 {
		return errors.New("captions.font_size must be positive")
	}
	if !isHexColor(c.Captions.PrimaryColor) {
		return fmt.Errorf("captions.primary_color: %q is not a #RRGGBB color", c.Captions.PrimaryColor)
	}
	if !isHexColor(c.Captions.BackgroundColor) {
		return fmt.Errorf("captions.background_color: %q is not a #RRGGBB color", c.Captions.BackgroundColor)
	}
	if c.Captions.MarginV < 0 {
		return errors.New("captions.margin_v must not be negative")
	}
	switch c.Captions.Mode {
	case CaptionModeSentence, CaptionModeWord:
	default:
		return fmt.Errorf("captions.mode: unsupported value %q (want sentence or word)", c.Captions.Mode)
	}
	return nil
}

func (c *Config) validateCover() error {
	if !isHexColor(c.Cover.Color) {
		return fmt.Errorf("cover.color: %q is not a #RRGGBB color", c.Cover.Color)
	}
	if !isHexColor(c.Cover.StrokeColor) {
		return fmt.Errorf("cover.stroke_color: %q is not a #RRGGBB color", c.Cover.StrokeColor)
	}
	if c.Cover.StrokeWidth < 0 {
		return errors.New("cover.stroke_width must not be negative")
	}
	switch c.Cover.Anchor {
	case CoverAnchorTopLeft, CoverAnchorMiddle:
	default:
		return fmt.Errorf("cover.anchor: unsupported value %q (want top-left or middle)", c.Cover.Anchor)
	}
	_, _, _, err := c.Cover.CoverPoint()
	return err
}

func (c *Config) validateDub() error {
	if c.Dub.Speed < 0.25 || c.Dub.Speed > 4 {
		return errors.New("dub.speed must be between 0.25 and 4")
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.Concurrency > 16 {
		return errors.New("export.concurrency must not exceed 16")
	}
	if strings.ContainsAny(c.Export.ManifestName, `/\`) {
		return errors.New("export.manifest_name must be a file name, not a path")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if !c.Publish.Enabled {
		return nil
	}
	if c.Publish.Bucket == "" {
		return errors.New("publish.bucket must be set when publish.enabled is true")
	}
	return nil
}

func (c *Config) validateNotify() error {
	topic := c.Notify.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notify.ntfy_topic must be a full http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

func isHexColor(value string) bool {
	if len(value) != 7 || value[0] != '#' {
		return false
	}
	for _, r := range value[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
