package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelsmith/internal/logging"
)

func mkdirAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if age > 0 {
		when := time.Now().Add(-age)
		if err := os.Chtimes(path, when, when); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
}

func TestIsJobDir(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"narration-en-3f2a", true},
		{"dub-th-0000", true},
		{"cover-ja-1", true},
		{"narration-", false},
		{"narration-en", false},
		{"assets", false},
		{"dubbing-en-1", false},
	}
	for _, tt := range tests {
		if got := IsJobDir(tt.name); got != tt.want {
			t.Errorf("IsJobDir(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOnlyOldJobDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	oldJob := filepath.Join(tmpDir, "narration-en-old")
	recentJob := filepath.Join(tmpDir, "dub-th-new")
	oldOther := filepath.Join(tmpDir, "my-assets")
	mkdirAged(t, oldJob, 2*time.Hour)
	mkdirAged(t, recentJob, 0)
	mkdirAged(t, oldOther, 2*time.Hour)

	result := CleanStale(context.Background(), tmpDir, time.Hour, nil)

	if len(result.Removed) != 1 || result.Removed[0] != oldJob {
		t.Fatalf("removed = %v, want [%s]", result.Removed, oldJob)
	}
	if _, err := os.Stat(oldJob); !os.IsNotExist(err) {
		t.Error("old job directory should have been removed")
	}
	for _, keep := range []string{recentJob, oldOther} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s should still exist", keep)
		}
	}
}

func TestListDirectoriesReportsSize(t *testing.T) {
	tmpDir := t.TempDir()
	job := filepath.Join(tmpDir, "cover-ja-1")
	mkdirAged(t, job, 0)
	if err := os.WriteFile(filepath.Join(job, "frame.jpg"), make([]byte, 100), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "loose.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dirs, err := ListDirectories(tmpDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Name != "cover-ja-1" || dirs[0].Size != 100 {
		t.Fatalf("unexpected dirs: %+v", dirs)
	}
}
