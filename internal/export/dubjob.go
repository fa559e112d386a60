package export

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"reelsmith/internal/dub"
	"reelsmith/internal/jobstore"
	"reelsmith/internal/language"
	"reelsmith/internal/services"
)

// DubBatch dubs or subtitles one source video into several languages.
type DubBatch struct {
	Source    string
	Title     string
	Mode      dub.Mode
	Languages []string
	Cover     *Cover
}

// RunDub runs the dub pipeline once per language.
func (r *Runner) RunDub(ctx context.Context, batch DubBatch) (Report, error) {
	if err := requireFile(batch.Source); err != nil {
		return Report{}, services.Wrap(services.ErrAssetUnreadable, "export", "dub", "source video", err)
	}
	langs, err := normalizeLanguages("dub", batch.Languages)
	if err != nil {
		return Report{}, err
	}

	specs := make([]jobSpec, 0, len(langs))
	for _, lang := range langs {
		title := strings.TrimSpace(batch.Title)
		if title == "" {
			title = DefaultTitle(lang)
		}
		base, err := reserveBase(r.cfg.Paths.ExportDir, title, lang, r.suffix)
		if err != nil {
			return Report{}, err
		}
		output := filepath.Join(r.cfg.Paths.ExportDir, base+".mp4")
		job := dub.JobFromConfig(r.cfg, batch.Source, output, lang, batch.Mode)
		job.MusicPath = r.cfg.Export.MusicPath
		specs = append(specs, jobSpec{
			kind:     jobstore.KindDub,
			language: lang,
			title:    title,
			output:   output,
			run: func(ctx context.Context, jobID string) (string, error) {
				job.ID = jobID
				if _, err := r.dub.Run(ctx, job); err != nil {
					return "", err
				}
				if batch.Cover == nil {
					return "", nil
				}
				dir, cleanup, err := r.jobDir(jobstore.KindCover, lang)
				if err != nil {
					// The dubbed video is already in place; only the cover is lost.
					return "", nil
				}
				defer cleanup()
				return r.coverFor(ctx, batch.Cover, lang, title, output, dir, base), nil
			},
		})
	}
	return r.execute(ctx, specs)
}

// normalizeLanguages resolves codes and drops duplicates, keeping order.
func normalizeLanguages(op string, in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		code, err := language.Normalize(raw)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "export", op, "languages", err)
		}
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	if len(out) == 0 {
		return nil, services.Wrap(services.ErrValidation, "export", op, "at least one language required", nil)
	}
	return out, nil
}
