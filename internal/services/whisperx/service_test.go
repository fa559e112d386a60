package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"reelsmith/internal/services"
	"reelsmith/internal/subtitles"
)

const samplePayload = `{
  "segments": [
    {"text": " Hello there. ", "start": 0.0, "end": 1.2, "words": [
      {"word": "Hello", "start": 0.0, "end": 0.6},
      {"word": "there.", "start": 0.62, "end": 1.2}
    ]},
    {"text": "   ", "start": 1.3, "end": 1.4, "words": []},
    {"text": "General Kenobi", "start": 1.5, "end": 2.5, "words": [
      {"word": "General", "start": 1.5, "end": 2.0},
      {"word": "1999"},
      {"word": "Kenobi", "start": 2.0, "end": 2.5}
    ]}
  ]
}`

// fakeRunner writes payload where WhisperX would and records the arguments.
func fakeRunner(t *testing.T, payload string, calls *[][]string) CommandRunner {
	t.Helper()
	return func(_ context.Context, name string, args ...string) error {
		if name != UVXCommand {
			t.Fatalf("unexpected command %q", name)
		}
		*calls = append(*calls, args)
		source := args[slices.Index(args, "whisperx")+1]
		outDir := args[slices.Index(args, "--output_dir")+1]
		base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		return os.WriteFile(filepath.Join(outDir, base+".json"), []byte(payload), 0o644)
	}
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "narration.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribeSentences(t *testing.T) {
	var calls [][]string
	svc := NewService(Config{Model: "small"}, nil)
	svc.WithCommandRunner(fakeRunner(t, samplePayload, &calls))
	audio := writeAudio(t)

	got, err := svc.Transcribe(context.Background(), audio, subtitles.GranularitySentence, "thai")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	want := []subtitles.Segment{
		{Start: 0, End: 1.2, Text: "Hello there."},
		{Start: 1.5, End: 2.5, Text: "General Kenobi"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("segments = %+v, want %+v", got, want)
	}

	args := calls[0]
	if i := slices.Index(args, "--language"); i < 0 || args[i+1] != "th" {
		t.Fatalf("language hint not normalized: %v", args)
	}
	if i := slices.Index(args, "--model"); args[i+1] != "small" {
		t.Fatalf("model = %q", args[i+1])
	}

	entries, err := os.ReadDir(filepath.Dir(audio))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("output dir not cleaned up: %d entries", len(entries))
	}
}

func TestTranscribeWordsAppliesGapRule(t *testing.T) {
	var calls [][]string
	svc := NewService(Config{}, nil)
	svc.WithCommandRunner(fakeRunner(t, samplePayload, &calls))

	got, err := svc.Transcribe(context.Background(), writeAudio(t), subtitles.GranularityWord, "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	texts := make([]string, len(got))
	for i, seg := range got {
		texts[i] = seg.Text
	}
	if want := []string{"Hello", "there.", "General", "Kenobi"}; !slices.Equal(texts, want) {
		t.Fatalf("words = %v, want %v", texts, want)
	}
	// "Hello" ends 0.6, next starts 0.62: clamped to max(0.1, 0.57).
	if got[0].End < 0.569 || got[0].End > 0.571 {
		t.Fatalf("first word end = %.3f, want 0.57", got[0].End)
	}
	for i := 0; i < len(got)-1; i++ {
		if got[i].End > got[i+1].Start {
			t.Fatalf("word %d overlaps next: %+v %+v", i, got[i], got[i+1])
		}
	}
	if slices.Contains(calls[0], "--language") {
		t.Fatalf("empty hint should not pass --language: %v", calls[0])
	}
}

func TestTranscribeEmptyTranscriptIsNotAnError(t *testing.T) {
	var calls [][]string
	svc := NewService(Config{}, nil)
	svc.WithCommandRunner(fakeRunner(t, `{"segments": []}`, &calls))

	got, err := svc.Transcribe(context.Background(), writeAudio(t), subtitles.GranularitySentence, "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no segments, got %+v", got)
	}
}

func TestTranscribeErrors(t *testing.T) {
	svc := NewService(Config{}, nil)
	if _, err := svc.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), subtitles.GranularitySentence, ""); !errors.Is(err, services.ErrAssetUnreadable) {
		t.Fatalf("missing audio err = %v", err)
	}

	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})
	if _, err := svc.Transcribe(context.Background(), writeAudio(t), subtitles.GranularitySentence, ""); !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("runner failure err = %v", err)
	}

	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })
	if _, err := svc.Transcribe(context.Background(), writeAudio(t), subtitles.GranularitySentence, ""); !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("missing output err = %v", err)
	}
}

func TestBuildArgsDevices(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    []string
		without []string
	}{
		{
			name:    "cpu silero",
			cfg:     Config{},
			want:    []string{"--device", "cpu", "--compute_type", CPUComputeType, "--vad_method", VADMethodSilero},
			without: []string{"--hf_token", "--model_dir"},
		},
		{
			name: "cuda pyannote",
			cfg:  Config{CUDAEnabled: true, VADMethod: VADMethodPyannote, HFToken: "hf", CacheDir: "/cache"},
			want: []string{"--device", "cuda", "--hf_token", "hf", "--extra-index-url", "--model_dir", "/cache"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := NewService(tt.cfg, nil).buildArgs("in.wav", "/out", "")
			for _, w := range tt.want {
				if !slices.Contains(args, w) {
					t.Fatalf("args missing %q: %v", w, args)
				}
			}
			for _, w := range tt.without {
				if slices.Contains(args, w) {
					t.Fatalf("args unexpectedly contain %q: %v", w, args)
				}
			}
		})
	}
}
