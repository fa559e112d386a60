package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DefaultManifestName is the manifest file written into the export directory.
const DefaultManifestName = "reelsmith_manifest.json"

// Manifest lists every video a batch produced.
type Manifest struct {
	ProjectName string          `json:"project_name"`
	CreatedAt   string          `json:"created_at"`
	Videos      []ManifestEntry `json:"videos"`
}

// ManifestEntry describes one exported video. Language is the display name.
type ManifestEntry struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Title    string `json:"title"`
	FilePath string `json:"file_path"`
}

// NewManifestEntry assigns a short random id.
func NewManifestEntry(languageName, title, path string) ManifestEntry {
	return ManifestEntry{
		ID:       uuid.NewString()[:8],
		Language: languageName,
		Title:    title,
		FilePath: path,
	}
}

// WriteManifest writes m as four-space indented JSON with non-ASCII text and
// HTML characters left unescaped. The file is replaced atomically.
func WriteManifest(path string, m Manifest) error {
	if m.Videos == nil {
		m.Videos = []ManifestEntry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}
