package transcode

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExecutorRunSuccess(t *testing.T) {
	exec := NewExecutor("", nil)
	var gotName string
	var gotArgs []string
	exec.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return nil, nil
	})
	res := exec.Run(context.Background(), Request{Operation: "copy", Inputs: []Input{{Path: "in.mp4"}}, Output: "out.mp4"})
	if !res.OK {
		t.Fatalf("expected OK, got %+v", res)
	}
	if gotName != "ffmpeg" {
		t.Fatalf("binary = %q", gotName)
	}
	if gotArgs[0] != "-y" || gotArgs[len(gotArgs)-1] != "out.mp4" {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestExecutorRunFailureCarriesDiagnostics(t *testing.T) {
	exec := NewExecutor("/opt/ffmpeg", nil)
	exec.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("frame=1\nInvalid data found when processing input\n"), errors.New("exit status 1")
	})
	res := exec.Run(context.Background(), Request{Inputs: []Input{{Path: "in.mp4"}}, Output: "out.mp4"})
	if res.OK {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Diagnostics, "Invalid data found") || !strings.Contains(res.Diagnostics, "exit status 1") {
		t.Fatalf("diagnostics = %q", res.Diagnostics)
	}
}

func TestExecutorRunRejectsInvalidRequest(t *testing.T) {
	exec := NewExecutor("ffmpeg", nil)
	called := false
	exec.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		called = true
		return nil, nil
	})
	res := exec.Run(context.Background(), Request{Output: "out.mp4"})
	if res.OK || called {
		t.Fatalf("invalid request must not run: %+v called=%v", res, called)
	}
}

func TestExecutorRunCanceledContext(t *testing.T) {
	exec := NewExecutor("ffmpeg", nil)
	exec.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("runner must not be called")
		return nil, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := exec.Run(ctx, Request{Inputs: []Input{{Path: "in.mp4"}}, Output: "out.mp4"})
	if res.OK || !strings.Contains(res.Diagnostics, "canceled") {
		t.Fatalf("res = %+v", res)
	}
}
