package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"reelsmith/internal/transcode"
)

// FakeTranscoder records requests and writes a placeholder file for every
// successful output.
type FakeTranscoder struct {
	mu       sync.Mutex
	requests []transcode.Request
	// Fail returns diagnostics and true to make a request fail.
	Fail func(transcode.Request) (string, bool)
}

// Run implements transcode.Runner.
func (f *FakeTranscoder) Run(ctx context.Context, req transcode.Request) transcode.Result {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fail := f.Fail
	f.mu.Unlock()

	if _, err := req.Args(); err != nil {
		return transcode.Result{Diagnostics: err.Error()}
	}
	if fail != nil {
		if diag, failed := fail(req); failed {
			return transcode.Result{Diagnostics: diag}
		}
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return transcode.Result{Diagnostics: err.Error()}
	}
	if err := os.WriteFile(req.Output, []byte("fake "+req.Operation), 0o644); err != nil {
		return transcode.Result{Diagnostics: err.Error()}
	}
	return transcode.Result{OK: true}
}

// Requests returns a copy of everything run so far.
func (f *FakeTranscoder) Requests() []transcode.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transcode.Request(nil), f.requests...)
}

// Operations returns the operation names run so far, in order.
func (f *FakeTranscoder) Operations() []string {
	reqs := f.Requests()
	ops := make([]string, len(reqs))
	for i, r := range reqs {
		ops[i] = r.Operation
	}
	return ops
}

// FailOperation makes every request whose operation starts with prefix fail.
func FailOperation(prefix, diagnostics string) func(transcode.Request) (string, bool) {
	return func(req transcode.Request) (string, bool) {
		if strings.HasPrefix(req.Operation, prefix) {
			return diagnostics, true
		}
		return "", false
	}
}

// FakeProber answers probes from tables keyed by path or base name.
type FakeProber struct {
	Durations       map[string]float64
	Sizes           map[string][2]int
	DefaultDuration float64
	DefaultWidth    int
	DefaultHeight   int
}

// Duration implements the duration probe.
func (p *FakeProber) Duration(_ context.Context, path string) (float64, error) {
	if d, ok := lookup(p.Durations, path); ok {
		return d, nil
	}
	if p.DefaultDuration > 0 {
		return p.DefaultDuration, nil
	}
	return 0, fmt.Errorf("no duration for %s", path)
}

// Dimensions implements the dimension probe.
func (p *FakeProber) Dimensions(_ context.Context, path string) (int, int, error) {
	if size, ok := lookup(p.Sizes, path); ok {
		return size[0], size[1], nil
	}
	if p.DefaultWidth > 0 && p.DefaultHeight > 0 {
		return p.DefaultWidth, p.DefaultHeight, nil
	}
	return 0, 0, fmt.Errorf("no dimensions for %s", path)
}

func lookup[V any](table map[string]V, path string) (V, bool) {
	if v, ok := table[path]; ok {
		return v, true
	}
	v, ok := table[filepath.Base(path)]
	return v, ok
}
