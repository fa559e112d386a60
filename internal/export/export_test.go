package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"reelsmith/internal/compose"
	"reelsmith/internal/config"
	"reelsmith/internal/dub"
	"reelsmith/internal/jobstore"
	"reelsmith/internal/services"
	"reelsmith/internal/subtitles"
	"reelsmith/internal/testsupport"
	"reelsmith/internal/textlayout"
	"reelsmith/internal/timeline"
	"reelsmith/internal/transcode"
)

var narrationSegments = []subtitles.Segment{
	{Start: 0, End: 0.8, Text: "Hello"},
	{Start: 1, End: 1.9, Text: "world"},
}

type fixture struct {
	cfg         *config.Config
	fake        *testsupport.FakeTranscoder
	prober      *testsupport.FakeProber
	transcriber *testsupport.FakeTranscriber
	translator  *testsupport.FakeTranslator
	synthesizer *testsupport.FakeSynthesizer
	store       *jobstore.Store
	background  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Paths.FontFile = ""
	cfg.Export.ProjectName = "Travel"
	background := filepath.Join(testsupport.BaseDir(cfg), "in", "bg.mp4")
	testsupport.WriteFile(t, background, 64)
	return &fixture{
		cfg:  cfg,
		fake: &testsupport.FakeTranscoder{},
		prober: &testsupport.FakeProber{
			Durations: map[string]float64{"bg.mp4": 20, "speech.wav": 2, "slideshow.mp4": 2, "source.mp4": 10},
		},
		transcriber: &testsupport.FakeTranscriber{Default: narrationSegments},
		translator:  &testsupport.FakeTranslator{},
		synthesizer: &testsupport.FakeSynthesizer{Seconds: 2},
		store:       testsupport.MustOpenStore(t, cfg),
		background:  background,
	}
}

func (f *fixture) runner(t *testing.T) *Runner {
	t.Helper()
	var mu sync.Mutex
	next := 10000
	suffix := func() int {
		mu.Lock()
		defer mu.Unlock()
		next++
		return next
	}
	comp := compose.New(f.cfg, f.fake, f.prober, nil)
	return New(f.cfg, comp, f.transcriber, f.translator, f.synthesizer, nil,
		WithStore(f.store),
		WithSuffixSource(suffix),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
	)
}

func (f *fixture) jobs(t *testing.T, batchID string) map[string]*jobstore.Job {
	t.Helper()
	jobs, err := f.store.List(context.Background(), jobstore.Filter{BatchID: batchID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	byLang := make(map[string]*jobstore.Job, len(jobs))
	for _, job := range jobs {
		byLang[job.Language] = job
	}
	return byLang
}

func assertNoScratch(t *testing.T, cfg *config.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.Paths.WorkDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("scratch left behind: %v", names)
	}
}

func TestRunNarrationOverVideo(t *testing.T) {
	f := newFixture(t)
	logo := filepath.Join(testsupport.BaseDir(f.cfg), "in", "logo.png")
	testsupport.WriteFile(t, logo, 16)
	f.cfg.Export.LogoPath = logo
	f.prober.Sizes = map[string][2]int{"captioned.mp4": {1080, 1920}, "logo.png": {200, 100}}

	report, err := f.runner(t).RunNarration(context.Background(), NarrationBatch{
		Tasks: []Task{
			{Language: "en", Script: "Hello world", Title: "My Trip!"},
			{Language: "thai", Script: "สวัสดี", Title: ""},
			{Language: "ja", Script: "   ", Title: "ignored"},
		},
		Video:       f.background,
		Mode:        timeline.ModeFitAudio,
		Granularity: subtitles.GranularityWord,
	})
	if err != nil {
		t.Fatalf("RunNarration: %v", err)
	}
	if len(report.Outcomes) != 2 || report.Failed() != 0 {
		t.Fatalf("unexpected outcomes %+v", report.Outcomes)
	}

	wantOutputs := []string{"My_Trip_English_10001.mp4", "VideoThai_Thai_10002.mp4"}
	for i, want := range wantOutputs {
		got := report.Outcomes[i].Output
		if filepath.Base(got) != want {
			t.Fatalf("output %d = %s, want %s", i, filepath.Base(got), want)
		}
		if _, err := os.Stat(got); err != nil {
			t.Fatalf("output missing: %v", err)
		}
	}

	ops := f.fake.Operations()
	for _, want := range []string{"merge audio video (trim)", "burn captions", "overlay logo"} {
		if n := countOps(ops, want); n != 2 {
			t.Fatalf("op %q ran %d times, want 2 (ops %v)", want, n, ops)
		}
	}
	for _, call := range f.transcriber.Calls() {
		if call.Granularity != subtitles.GranularityWord || filepath.Base(call.Audio) != "speech.wav" {
			t.Fatalf("unexpected transcribe call %+v", call)
		}
	}
	if texts := f.synthesizer.Texts(); len(texts) != 2 {
		t.Fatalf("synthesized %d scripts, want 2", len(texts))
	}

	manifest, err := ReadManifest(report.Manifest)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if filepath.Base(report.Manifest) != DefaultManifestName {
		t.Fatalf("manifest name = %s", report.Manifest)
	}
	if manifest.ProjectName != "Travel" || manifest.CreatedAt != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected manifest header %+v", manifest)
	}
	if len(manifest.Videos) != 2 || manifest.Videos[0].Language != "English" || manifest.Videos[1].Title != "Video_Thai" {
		t.Fatalf("unexpected manifest videos %+v", manifest.Videos)
	}
	if len(manifest.Videos[0].ID) != 8 || manifest.Videos[0].FilePath != report.Outcomes[0].Output {
		t.Fatalf("unexpected manifest entry %+v", manifest.Videos[0])
	}

	jobs := f.jobs(t, report.BatchID)
	for _, lang := range []string{"en", "th"} {
		job := jobs[lang]
		if job == nil || job.Status != jobstore.StatusCompleted || job.Kind != jobstore.KindNarration {
			t.Fatalf("job %s = %+v", lang, job)
		}
		if job.Stage != "finalize" {
			t.Fatalf("job %s stage = %q, want finalize", lang, job.Stage)
		}
	}
	assertNoScratch(t, f.cfg)
}

func TestRunNarrationOverFolderBuildsSlideshow(t *testing.T) {
	f := newFixture(t)
	folder := filepath.Join(testsupport.BaseDir(f.cfg), "media")
	testsupport.WriteFile(t, filepath.Join(folder, "a.jpg"), 8)
	testsupport.WriteFile(t, filepath.Join(folder, "b.png"), 8)
	testsupport.WriteFile(t, filepath.Join(folder, "notes.txt"), 8)

	report, err := f.runner(t).RunNarration(context.Background(), NarrationBatch{
		Tasks:  []Task{{Language: "en", Script: "Hello", Title: "Album"}},
		Folder: folder,
		Mode:   timeline.ModeKeepVideoLength,
	})
	if err != nil {
		t.Fatalf("RunNarration: %v", err)
	}
	if report.Failed() != 0 {
		t.Fatalf("unexpected failure %v", report.Outcomes[0].Err)
	}
	ops := f.fake.Operations()
	if !slices.ContainsFunc(ops, func(op string) bool { return strings.HasPrefix(op, "normalize slot") }) {
		t.Fatalf("no slideshow slots rendered: %v", ops)
	}
	if !slices.ContainsFunc(ops, func(op string) bool { return strings.HasPrefix(op, "merge audio video") }) {
		t.Fatalf("narration not merged: %v", ops)
	}
	if countOps(ops, "merge audio video (no_trim)") != 0 {
		t.Fatalf("slideshow background should be fitted to narration: %v", ops)
	}
	assertNoScratch(t, f.cfg)
}

func TestRunNarrationIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	f.fake.Fail = func(req transcode.Request) (string, bool) {
		if strings.HasPrefix(req.Operation, "burn captions") && strings.Contains(req.Output, "narration-th-") {
			return "Error opening filters!", true
		}
		return "", false
	}

	report, err := f.runner(t).RunNarration(context.Background(), NarrationBatch{
		Tasks: []Task{
			{Language: "en", Script: "Hello", Title: "Trip"},
			{Language: "th", Script: "สวัสดี", Title: "Trip"},
		},
		Video: f.background,
	})
	if err != nil {
		t.Fatalf("RunNarration: %v", err)
	}
	if report.Failed() != 1 {
		t.Fatalf("failed = %d, want 1", report.Failed())
	}
	failed := report.Outcomes[1]
	if !errors.Is(failed.Err, services.ErrCompositionFailed) {
		t.Fatalf("th err = %v, want composition failure", failed.Err)
	}
	if _, err := os.Stat(failed.Output); !os.IsNotExist(err) {
		t.Fatalf("failed job left output behind: %v", err)
	}

	manifest, err := ReadManifest(report.Manifest)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(manifest.Videos) != 1 || manifest.Videos[0].Language != "English" {
		t.Fatalf("manifest should list only the successful job: %+v", manifest.Videos)
	}

	jobs := f.jobs(t, report.BatchID)
	if jobs["th"].Status != jobstore.StatusFailed || jobs["th"].ErrorKind != string(services.KindCompositionFailed) {
		t.Fatalf("th job = %+v", jobs["th"])
	}
	if jobs["en"].Status != jobstore.StatusCompleted {
		t.Fatalf("en job = %+v", jobs["en"])
	}
	assertNoScratch(t, f.cfg)
}

func TestRunNarrationCaptionPolicy(t *testing.T) {
	f := newFixture(t)
	f.cfg.Dub.SkipCaptionLanguages = []string{"th"}

	report, err := f.runner(t).RunNarration(context.Background(), NarrationBatch{
		Tasks: []Task{
			{Language: "en", Script: "Hello", Title: "Trip"},
			{Language: "th", Script: "สวัสดี", Title: "Trip"},
		},
		Video: f.background,
	})
	if err != nil || report.Failed() != 0 {
		t.Fatalf("RunNarration: %v %+v", err, report.Outcomes)
	}
	calls := f.transcriber.Calls()
	if len(calls) != 1 || calls[0].Hint != "en" {
		t.Fatalf("transcribe calls = %+v, want only en", calls)
	}
	if n := countOps(f.fake.Operations(), "burn captions"); n != 1 {
		t.Fatalf("burn captions ran %d times, want 1", n)
	}
}

func TestRunNarrationWithoutSpeechExportsUncaptioned(t *testing.T) {
	f := newFixture(t)
	f.transcriber.Default = nil

	report, err := f.runner(t).RunNarration(context.Background(), NarrationBatch{
		Tasks: []Task{{Language: "en", Script: "...", Title: "Quiet"}},
		Video: f.background,
	})
	if err != nil || report.Failed() != 0 {
		t.Fatalf("RunNarration: %v %+v", err, report.Outcomes)
	}
	if n := countOps(f.fake.Operations(), "burn captions"); n != 0 {
		t.Fatalf("burn captions ran %d times, want 0", n)
	}
}

func TestRunNarrationRejectsBadBatches(t *testing.T) {
	f := newFixture(t)
	folder := filepath.Join(testsupport.BaseDir(f.cfg), "empty")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	task := []Task{{Language: "en", Script: "Hello"}}
	tests := []struct {
		name   string
		batch  NarrationBatch
		marker error
	}{
		{name: "no scripts", batch: NarrationBatch{Tasks: []Task{{Language: "en"}}, Video: f.background}, marker: services.ErrValidation},
		{name: "unknown language", batch: NarrationBatch{Tasks: []Task{{Language: "qqqqqqqqqq", Script: "x"}}, Video: f.background}, marker: services.ErrValidation},
		{name: "no background", batch: NarrationBatch{Tasks: task}, marker: services.ErrValidation},
		{name: "both backgrounds", batch: NarrationBatch{Tasks: task, Video: f.background, Folder: folder}, marker: services.ErrValidation},
		{name: "missing video", batch: NarrationBatch{Tasks: task, Video: filepath.Join(folder, "nope.mp4")}, marker: services.ErrAssetUnreadable},
		{name: "empty folder", batch: NarrationBatch{Tasks: task, Folder: folder}, marker: services.ErrInvalidTimelineInput},
	}
	runner := f.runner(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.RunNarration(context.Background(), tt.batch)
			if !errors.Is(err, tt.marker) {
				t.Fatalf("err = %v, want %v", err, tt.marker)
			}
		})
	}
	if ops := f.fake.Operations(); len(ops) != 0 {
		t.Fatalf("rejected batches still ran %v", ops)
	}
}

func TestNarrationCover(t *testing.T) {
	f := newFixture(t)
	base := filepath.Join(testsupport.BaseDir(f.cfg), "in", "frame.png")
	testsupport.WritePNG(t, base, 320, 240)

	report, err := f.runner(t).RunNarration(context.Background(), NarrationBatch{
		Tasks: []Task{{Language: "ja", Script: "こんにちは", Title: "Beach"}},
		Video: f.background,
		Cover: &Cover{Topic: "Beach day", BaseImage: base},
	})
	if err != nil || report.Failed() != 0 {
		t.Fatalf("RunNarration: %v %+v", err, report.Outcomes)
	}
	cover := report.Outcomes[0].Cover
	if filepath.Base(cover) != "Beach_Japanese_10001.jpg" {
		t.Fatalf("cover = %q", cover)
	}
	if _, err := os.Stat(cover); err != nil {
		t.Fatalf("cover missing: %v", err)
	}
	if f.translator.Calls() != 1 {
		t.Fatalf("topic translated %d times, want 1", f.translator.Calls())
	}
	job := f.jobs(t, report.BatchID)["ja"]
	if job.CoverPath != cover {
		t.Fatalf("job cover = %q, want %q", job.CoverPath, cover)
	}
}

func TestNarrationCoverFailureKeepsVideo(t *testing.T) {
	f := newFixture(t)
	f.translator.Err = errors.New("quota")
	f.prober.DefaultDuration = 5

	report, err := f.runner(t).RunNarration(context.Background(), NarrationBatch{
		Tasks: []Task{{Language: "en", Script: "Hello", Title: "Beach"}},
		Video: f.background,
		// The fake transcoder writes a placeholder frame that cannot be decoded.
		Cover: &Cover{Topic: "Beach day"},
	})
	if err != nil || report.Failed() != 0 {
		t.Fatalf("RunNarration: %v %+v", err, report.Outcomes)
	}
	if report.Outcomes[0].Cover != "" {
		t.Fatalf("cover = %q, want none", report.Outcomes[0].Cover)
	}
	if countOps(f.fake.Operations(), "extract frame") != 1 {
		t.Fatalf("expected a frame extraction, ops %v", f.fake.Operations())
	}
}

func TestRunCovers(t *testing.T) {
	f := newFixture(t)
	base := filepath.Join(testsupport.BaseDir(f.cfg), "in", "frame.png")
	testsupport.WritePNG(t, base, 320, 240)

	report, err := f.runner(t).RunCovers(context.Background(), CoverBatch{
		Topic:     "Beach day out",
		Languages: []string{"en", "japanese", "en"},
		BaseImage: base,
	})
	if err != nil {
		t.Fatalf("RunCovers: %v", err)
	}
	if len(report.Outcomes) != 2 || report.Failed() != 0 {
		t.Fatalf("unexpected outcomes %+v", report.Outcomes)
	}
	want := []string{"cover_English_Beach_day_.jpg", "cover_Japanese_Beach_day_.jpg"}
	for i, o := range report.Outcomes {
		if filepath.Base(o.Output) != want[i] || o.Cover != o.Output {
			t.Fatalf("outcome %d = %+v", i, o)
		}
		if _, err := os.Stat(o.Output); err != nil {
			t.Fatalf("cover missing: %v", err)
		}
	}
	manifest, err := ReadManifest(report.Manifest)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(manifest.Videos) != 0 {
		t.Fatalf("covers should not be listed as videos: %+v", manifest.Videos)
	}
}

func TestCoverStyleFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.FontFile = "/fonts/title.ttf"
	cfg.Cover.FontSize = 90
	cfg.Cover.Color = "#FFCC00"
	cfg.Cover.StrokeWidth = 6
	cfg.Cover.Position = "540,400"
	cfg.Cover.Anchor = config.CoverAnchorMiddle

	style, err := CoverStyle(&cfg)
	if err != nil {
		t.Fatalf("CoverStyle: %v", err)
	}
	if style.FontPath != "/fonts/title.ttf" || style.FontSize != 90 || style.Color != "#FFCC00" || style.StrokeColor != "#000000" || style.StrokeWidth != 6 {
		t.Fatalf("unexpected style %+v", style)
	}
	if style.Position != textlayout.At(540, 400) || style.Anchor != textlayout.AnchorMiddle {
		t.Fatalf("unexpected placement %+v %v", style.Position, style.Anchor)
	}

	cfg.Cover.Position = "middle-ish"
	if _, err := CoverStyle(&cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("bad position err = %v", err)
	}
}

func TestRunCoversSkipsFailedTranslations(t *testing.T) {
	f := newFixture(t)
	base := filepath.Join(testsupport.BaseDir(f.cfg), "in", "frame.png")
	testsupport.WritePNG(t, base, 320, 240)
	f.translator.Err = errors.New("quota")

	report, err := f.runner(t).RunCovers(context.Background(), CoverBatch{Topic: "Beach", Languages: []string{"ko"}, BaseImage: base})
	if err != nil {
		t.Fatalf("RunCovers: %v", err)
	}
	if report.Failed() != 1 {
		t.Fatalf("failed = %d, want 1", report.Failed())
	}
	if job := f.jobs(t, report.BatchID)["ko"]; job.Status != jobstore.StatusFailed || job.Kind != jobstore.KindCover {
		t.Fatalf("job = %+v", job)
	}
}

func TestRunDub(t *testing.T) {
	f := newFixture(t)
	source := filepath.Join(testsupport.BaseDir(f.cfg), "in", "source.mp4")
	testsupport.WriteFile(t, source, 64)
	f.prober.Sizes = map[string][2]int{"source.mp4": {1080, 1920}}

	report, err := f.runner(t).RunDub(context.Background(), DubBatch{
		Source:    source,
		Title:     "Cooking",
		Mode:      dub.ModeSubtitleOnly,
		Languages: []string{"th", "ja"},
	})
	if err != nil {
		t.Fatalf("RunDub: %v", err)
	}
	if report.Failed() != 0 {
		t.Fatalf("unexpected failures %+v", report.Outcomes)
	}
	for i, want := range []string{"Cooking_Thai_10001.mp4", "Cooking_Japanese_10002.mp4"} {
		if filepath.Base(report.Outcomes[i].Output) != want {
			t.Fatalf("output %d = %s, want %s", i, report.Outcomes[i].Output, want)
		}
		if _, err := os.Stat(report.Outcomes[i].Output); err != nil {
			t.Fatalf("output missing: %v", err)
		}
	}
	if countOps(f.fake.Operations(), "burn captions") != 2 {
		t.Fatalf("ops = %v", f.fake.Operations())
	}
	jobs := f.jobs(t, report.BatchID)
	for _, lang := range []string{"th", "ja"} {
		if job := jobs[lang]; job.Kind != jobstore.KindDub || job.Stage != "finalize" || job.Status != jobstore.StatusCompleted {
			t.Fatalf("job %s = %+v", lang, job)
		}
	}
	assertNoScratch(t, f.cfg)
}

func TestRunDubRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	runner := f.runner(t)
	if _, err := runner.RunDub(context.Background(), DubBatch{Source: f.background}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("no languages err = %v", err)
	}
	missing := filepath.Join(testsupport.BaseDir(f.cfg), "missing.mp4")
	if _, err := runner.RunDub(context.Background(), DubBatch{Source: missing, Languages: []string{"th"}}); !errors.Is(err, services.ErrAssetUnreadable) {
		t.Fatalf("missing source err = %v", err)
	}
}

func TestBatchWaitsForExportLock(t *testing.T) {
	f := newFixture(t)
	held := flock.New(filepath.Join(f.cfg.Paths.ExportDir, LockFileName))
	if err := held.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := f.runner(t).RunNarration(ctx, NarrationBatch{
		Tasks: []Task{{Language: "en", Script: "Hello"}},
		Video: f.background,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if len(f.fake.Operations()) != 0 {
		t.Fatal("batch ran without the export lock")
	}
}

func TestCanceledBatchRecordsCanceledJobs(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	runner := f.runner(t)
	synth := &cancelingSynthesizer{cancel: cancel}
	runner.synthesizer = synth

	report, err := runner.RunNarration(ctx, NarrationBatch{
		Tasks: []Task{{Language: "en", Script: "Hello"}},
		Video: f.background,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want canceled", err)
	}
	if job := f.jobs(t, report.BatchID)["en"]; job.Status != jobstore.StatusCanceled {
		t.Fatalf("job = %+v", job)
	}
	assertNoScratch(t, f.cfg)
}

type cancelingSynthesizer struct {
	cancel context.CancelFunc
}

func (s *cancelingSynthesizer) Synthesize(ctx context.Context, _, _ string, _ float64, _ string) ([]byte, error) {
	s.cancel()
	return nil, ctx.Err()
}

func countOps(ops []string, name string) int {
	n := 0
	for _, op := range ops {
		if op == name {
			n++
		}
	}
	return n
}
