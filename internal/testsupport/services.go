package testsupport

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"reelsmith/internal/subtitles"
)

// TranscribeCall records one transcription request.
type TranscribeCall struct {
	Audio       string
	Granularity subtitles.Granularity
	Hint        string
}

// FakeTranscriber returns canned captions. Segments maps an audio base name
// to its captions; Default answers everything else.
type FakeTranscriber struct {
	mu       sync.Mutex
	calls    []TranscribeCall
	Segments map[string][]subtitles.Segment
	Default  []subtitles.Segment
	Err      error
}

// Transcribe implements the transcriber contract.
func (f *FakeTranscriber) Transcribe(_ context.Context, audio string, granularity subtitles.Granularity, hint string) ([]subtitles.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, TranscribeCall{Audio: audio, Granularity: granularity, Hint: hint})
	if f.Err != nil {
		return nil, f.Err
	}
	if segs, ok := f.Segments[filepath.Base(audio)]; ok {
		return append([]subtitles.Segment(nil), segs...), nil
	}
	return append([]subtitles.Segment(nil), f.Default...), nil
}

// Calls returns the recorded requests.
func (f *FakeTranscriber) Calls() []TranscribeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]TranscribeCall(nil), f.calls...)
}

// ErrFakeTranslation is returned for texts listed in FakeTranslator.Fail.
var ErrFakeTranslation = errors.New("fake translation failure")

// FakeTranslator prefixes text with the target language, e.g. "[th] hello".
type FakeTranslator struct {
	mu    sync.Mutex
	calls int
	Fail  map[string]bool
	Err   error
}

// Translate implements the translator contract.
func (f *FakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.Err != nil {
		return "", f.Err
	}
	if f.Fail[text] {
		return "", ErrFakeTranslation
	}
	return "[" + target + "] " + text, nil
}

// Calls returns how many translations were requested.
func (f *FakeTranslator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeSynthesizer returns silent 24 kHz mono PCM of the given length.
type FakeSynthesizer struct {
	mu      sync.Mutex
	texts   []string
	Seconds float64
	Err     error
}

// Synthesize implements the synthesizer contract.
func (f *FakeSynthesizer) Synthesize(_ context.Context, text, _ string, _ float64, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.Err != nil {
		return nil, f.Err
	}
	seconds := f.Seconds
	if seconds <= 0 {
		seconds = 1
	}
	return make([]byte, int(seconds*24000)*2), nil
}

// Texts returns every text synthesized so far.
func (f *FakeSynthesizer) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}
