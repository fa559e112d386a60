package export

import (
	"context"
	"path/filepath"
	"strings"

	"reelsmith/internal/config"
	"reelsmith/internal/jobstore"
	"reelsmith/internal/language"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/textlayout"
	"reelsmith/internal/textutil"
)

// DefaultFrameRatio picks the base frame from the middle of the video.
const DefaultFrameRatio = 0.5

// Cover requests a title image next to each exported video.
type Cover struct {
	// Topic is translated into each job's language; empty uses the title.
	Topic string
	// BaseImage is drawn on when set; otherwise a frame is taken from the
	// exported video at FrameRatio.
	BaseImage  string
	FrameRatio float64
	Style      textlayout.Style
}

// CoverStyle builds the cover text style from the [cover] section and the
// configured font.
func CoverStyle(cfg *config.Config) (textlayout.Style, error) {
	style := textlayout.DefaultStyle()
	style.FontPath = cfg.Paths.FontFile
	if cfg.Cover.FontSize > 0 {
		style.FontSize = float64(cfg.Cover.FontSize)
	}
	if cfg.Cover.Color != "" {
		style.Color = cfg.Cover.Color
	}
	if cfg.Cover.StrokeColor != "" {
		style.StrokeColor = cfg.Cover.StrokeColor
	}
	style.StrokeWidth = cfg.Cover.StrokeWidth
	x, y, centered, err := cfg.Cover.CoverPoint()
	if err != nil {
		return textlayout.Style{}, services.Wrap(services.ErrConfiguration, "export", "cover style", "", err)
	}
	if !centered {
		style.Position = textlayout.At(x, y)
	}
	if style.Anchor, err = textlayout.ParseAnchor(cfg.Cover.Anchor); err != nil {
		return textlayout.Style{}, services.Wrap(services.ErrConfiguration, "export", "cover style", "", err)
	}
	return style, nil
}

// coverFor renders base+".jpg" in the export directory. Failures are logged
// and yield no cover; the video itself is already exported.
func (r *Runner) coverFor(ctx context.Context, cover *Cover, lang, title, video, dir, base string) string {
	if cover == nil {
		return ""
	}
	r.setStage(ctx, "cover")
	logger := logging.WithContext(ctx, r.logger)
	text := title
	if topic := strings.TrimSpace(cover.Topic); topic != "" {
		translated, err := r.translator.Translate(ctx, topic, lang)
		if err != nil || strings.TrimSpace(translated) == "" {
			logging.WarnWithContext(logger, "cover topic translation failed; using title", "cover_degraded",
				logging.Error(err),
				logging.String(logging.FieldImpact, "cover shows the video title"),
			)
		} else {
			text = translated
		}
	}
	dst := filepath.Join(r.cfg.Paths.ExportDir, base+".jpg")
	if err := r.renderCover(ctx, cover, text, video, dir, dst); err != nil {
		logging.WarnWithContext(logger, "cover generation failed", "cover_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "video exported without cover"),
			logging.String(logging.FieldErrorHint, "check the cover base image and font file"),
		)
		return ""
	}
	logger.Info("cover generated", logging.String("cover", dst))
	return dst
}

func (r *Runner) renderCover(ctx context.Context, cover *Cover, text, video, dir, dst string) error {
	baseImage := cover.BaseImage
	if baseImage == "" {
		ratio := cover.FrameRatio
		if ratio <= 0 {
			ratio = DefaultFrameRatio
		}
		baseImage = filepath.Join(dir, "cover_frame.jpg")
		if err := r.compositor.ExtractFrame(ctx, video, baseImage, ratio); err != nil {
			return err
		}
	}
	style := cover.Style
	if style.FontSize == 0 {
		var err error
		if style, err = CoverStyle(r.cfg); err != nil {
			return err
		}
	}
	_, err := textlayout.RenderFile(baseImage, dst, text, style)
	return err
}

// CoverBatch renders one translated cover per language without producing
// video.
type CoverBatch struct {
	Topic     string
	Languages []string
	// BaseImage is drawn on when set; otherwise Video supplies a frame.
	BaseImage  string
	Video      string
	FrameRatio float64
	Style      textlayout.Style
}

// RunCovers writes cover_{language}_{topic prefix}.jpg per language. A
// language whose translation fails is reported failed and skipped.
func (r *Runner) RunCovers(ctx context.Context, batch CoverBatch) (Report, error) {
	topic := strings.TrimSpace(batch.Topic)
	if topic == "" {
		return Report{}, services.Wrap(services.ErrValidation, "export", "covers", "topic required", nil)
	}
	if batch.BaseImage == "" && batch.Video == "" {
		return Report{}, services.Wrap(services.ErrValidation, "export", "covers", "base image or video required", nil)
	}
	langs, err := normalizeLanguages("covers", batch.Languages)
	if err != nil {
		return Report{}, err
	}
	cover := &Cover{BaseImage: batch.BaseImage, FrameRatio: batch.FrameRatio, Style: batch.Style}

	specs := make([]jobSpec, 0, len(langs))
	for _, lang := range langs {
		dst := filepath.Join(r.cfg.Paths.ExportDir, CoverName(lang, topic))
		specs = append(specs, jobSpec{
			kind:     jobstore.KindCover,
			language: lang,
			title:    topic,
			output:   dst,
			run: func(ctx context.Context, _ string) (string, error) {
				dir, cleanup, err := r.jobDir(jobstore.KindCover, lang)
				if err != nil {
					return "", err
				}
				defer cleanup()
				text, err := r.translator.Translate(ctx, topic, lang)
				if err != nil {
					return "", err
				}
				if strings.TrimSpace(text) == "" {
					return "", services.Wrap(services.ErrExternalService, "export", "covers", "empty translation", nil)
				}
				if err := r.renderCover(ctx, cover, text, batch.Video, dir, dst); err != nil {
					return "", err
				}
				return dst, nil
			},
		})
	}
	return r.execute(ctx, specs)
}

// CoverName is the standalone cover file name for lang and topic.
func CoverName(lang, topic string) string {
	prefix := []rune(topic)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	name := "cover_" + language.DisplayName(lang) + "_" + string(prefix) + ".jpg"
	return textutil.SanitizeFileName(name)
}
