package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOutputBase(t *testing.T) {
	tests := []struct {
		title  string
		lang   string
		suffix int
		want   string
	}{
		{title: "My Trip!", lang: "en", suffix: 12345, want: "My_Trip_English_12345"},
		{title: "Video_Thai", lang: "th", suffix: 10000, want: "VideoThai_Thai_10000"},
		{title: "???", lang: "ja", suffix: 99999, want: "Video_Japanese_99999"},
		{title: "Phở ngon", lang: "vi", suffix: 20000, want: "Phở_ngon_Vietnamese_20000"},
	}
	for _, tt := range tests {
		if got := OutputBase(tt.title, tt.lang, tt.suffix); got != tt.want {
			t.Errorf("OutputBase(%q, %q) = %q, want %q", tt.title, tt.lang, got, tt.want)
		}
	}
}

func TestRandomSuffixRange(t *testing.T) {
	for range 1000 {
		if n := randomSuffix(); n < suffixMin || n > suffixMax {
			t.Fatalf("suffix %d out of range", n)
		}
	}
}

func TestReserveBaseSkipsTakenNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Trip_English_10001.mp4"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	seq := []int{10001, 10002}
	next := func() int {
		n := seq[0]
		seq = seq[1:]
		return n
	}
	base, err := reserveBase(dir, "Trip", "en", next)
	if err != nil || base != "Trip_English_10002" {
		t.Fatalf("reserveBase = %q, %v", base, err)
	}

	always := func() int { return 10001 }
	if _, err := reserveBase(dir, "Trip", "en", always); err == nil {
		t.Fatal("expected exhaustion error")
	}
}

func TestCoverName(t *testing.T) {
	if got := CoverName("ko", "Seoul: night walk"); got != "cover_Korean_Seoul-_nig.jpg" {
		t.Fatalf("CoverName = %q", got)
	}
	if got := CoverName("en", "Tea"); got != "cover_English_Tea.jpg" {
		t.Fatalf("CoverName = %q", got)
	}
}
