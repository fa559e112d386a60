package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

// AssetKind distinguishes still images from video clips.
type AssetKind int

const (
	AssetImage AssetKind = iota
	AssetVideo
)

func (k AssetKind) String() string {
	if k == AssetVideo {
		return "video"
	}
	return "image"
}

var assetExtensions = map[string]AssetKind{
	".jpg":  AssetImage,
	".jpeg": AssetImage,
	".png":  AssetImage,
	".webp": AssetImage,
	".mp4":  AssetVideo,
	".mov":  AssetVideo,
	".avi":  AssetVideo,
	".mkv":  AssetVideo,
}

// MediaAsset is one discovered image or clip. DurationSeconds is nil for
// images and for videos that have not been probed.
type MediaAsset struct {
	Path            string
	Kind            AssetKind
	DurationSeconds *float64
}

// ClassifyPath returns the asset kind for a file extension.
func ClassifyPath(path string) (AssetKind, bool) {
	kind, ok := assetExtensions[strings.ToLower(filepath.Ext(path))]
	return kind, ok
}

// ScanFolder lists supported media directly inside dir, sorted by path.
// Subdirectories are not descended.
func ScanFolder(dir string) ([]MediaAsset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrAssetUnreadable, "timeline", "scan folder", dir, err)
	}
	assets := make([]MediaAsset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		kind, ok := ClassifyPath(entry.Name())
		if !ok {
			continue
		}
		assets = append(assets, MediaAsset{Path: filepath.Join(dir, entry.Name()), Kind: kind})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Path < assets[j].Path })
	return assets, nil
}

// DurationProber reports the playable duration of a media file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FillDurations probes every video asset lacking a duration. Probe failures
// are logged and leave the duration unset; the asset is still usable.
func FillDurations(ctx context.Context, prober DurationProber, assets []MediaAsset, logger *slog.Logger) []MediaAsset {
	out := make([]MediaAsset, len(assets))
	copy(out, assets)
	if prober == nil {
		return out
	}
	for i := range out {
		if out[i].Kind != AssetVideo || out[i].DurationSeconds != nil {
			continue
		}
		seconds, err := prober.Duration(ctx, out[i].Path)
		if err != nil {
			logging.WarnWithContext(logger, "clip duration probe failed", "asset_probe_failed",
				logging.String("path", out[i].Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "clip will not be looped if shorter than its slot"),
			)
			continue
		}
		out[i].DurationSeconds = &seconds
	}
	return out
}

func (a MediaAsset) String() string {
	if a.DurationSeconds != nil {
		return fmt.Sprintf("%s(%s, %.2fs)", a.Kind, filepath.Base(a.Path), *a.DurationSeconds)
	}
	return fmt.Sprintf("%s(%s)", a.Kind, filepath.Base(a.Path))
}
