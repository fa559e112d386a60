package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"reelsmith/internal/config"
	"reelsmith/internal/export"
	"reelsmith/internal/services"
)

type fakePutter struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string][]byte{}
		f.types = map[string]string{}
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPublishReport(t *testing.T) {
	dir := t.TempDir()
	video := writeFile(t, dir, "Trip_English_10001.mp4", "video")
	cover := writeFile(t, dir, "Trip_English_10001.jpg", "cover")
	manifest := writeFile(t, dir, "reelsmith_manifest.json", "{}")
	report := export.Report{
		BatchID:  "batch-1",
		Manifest: manifest,
		Outcomes: []export.Outcome{
			{Language: "en", Output: video, Cover: cover},
			{Language: "th", Output: filepath.Join(dir, "missing.mp4"), Err: errors.New("failed")},
		},
	}
	fake := &fakePutter{}
	pub := New(fake, "bucket", "/exports/", nil)

	uploads, err := pub.PublishReport(context.Background(), report)
	if err != nil {
		t.Fatalf("PublishReport: %v", err)
	}
	var keys []string
	for _, u := range uploads {
		keys = append(keys, u.Key)
	}
	want := []string{
		"exports/batch-1/Trip_English_10001.mp4",
		"exports/batch-1/Trip_English_10001.jpg",
		"exports/batch-1/reelsmith_manifest.json",
	}
	if !slices.Equal(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if string(fake.objects["bucket/exports/batch-1/Trip_English_10001.mp4"]) != "video" {
		t.Fatal("video body not uploaded")
	}
	if got := fake.types["bucket/exports/batch-1/reelsmith_manifest.json"]; got != "application/json" {
		t.Fatalf("manifest content type = %q", got)
	}
	if got := fake.types["bucket/exports/batch-1/Trip_English_10001.jpg"]; got != "image/jpeg" {
		t.Fatalf("cover content type = %q", got)
	}
}

func TestPublishClassifiesErrors(t *testing.T) {
	dir := t.TempDir()
	video := writeFile(t, dir, "a.mp4", "v")
	report := export.Report{BatchID: "b", Outcomes: []export.Outcome{{Output: video}}}

	tests := []struct {
		name   string
		err    error
		marker error
	}{
		{name: "missing bucket", err: &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "nope"}, marker: services.ErrConfiguration},
		{name: "throttled", err: &smithy.GenericAPIError{Code: "SlowDown"}, marker: services.ErrExternalService},
		{name: "network", err: errors.New("connection reset"), marker: services.ErrExternalService},
		{name: "canceled", err: context.Canceled, marker: context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := New(&fakePutter{err: tt.err}, "bucket", "", nil)
			uploads, err := pub.PublishReport(context.Background(), report)
			if !errors.Is(err, tt.marker) {
				t.Fatalf("err = %v, want %v", err, tt.marker)
			}
			if len(uploads) != 0 {
				t.Fatalf("uploads = %v", uploads)
			}
		})
	}
}

func TestPublishMissingFileIsUnreadable(t *testing.T) {
	report := export.Report{BatchID: "b", Outcomes: []export.Outcome{{Output: filepath.Join(t.TempDir(), "gone.mp4")}}}
	_, err := New(&fakePutter{}, "bucket", "", nil).PublishReport(context.Background(), report)
	if !errors.Is(err, services.ErrAssetUnreadable) {
		t.Fatalf("err = %v, want ErrAssetUnreadable", err)
	}
}

func TestNewFromConfigDisabled(t *testing.T) {
	pub, err := NewFromConfig(context.Background(), config.Publish{}, nil)
	if err != nil || pub != nil {
		t.Fatalf("NewFromConfig = %v, %v; want nil, nil", pub, err)
	}
}
