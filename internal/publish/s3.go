package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"reelsmith/internal/config"
	"reelsmith/internal/export"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

// ObjectPutter is the slice of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Upload is one object written to the bucket.
type Upload struct {
	Path string
	Key  string
}

// Publisher copies batch results to S3.
type Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// New wraps an existing client.
func New(client ObjectPutter, bucket, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logging.NewComponentLogger(logger, "publish"),
	}
}

// NewFromConfig loads AWS settings from the default chain, overriding the
// region when configured. It returns nil when publishing is disabled.
func NewFromConfig(ctx context.Context, cfg config.Publish, logger *slog.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "load aws config", "", err)
	}
	return New(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix, logger), nil
}

// Key returns the object key for a local file in batch.
func (p *Publisher) Key(batchID, localPath string) string {
	return path.Join(p.prefix, batchID, filepath.Base(localPath))
}

// PublishReport uploads every successful output, its cover, and the
// manifest. Upload stops at the first error.
func (p *Publisher) PublishReport(ctx context.Context, report export.Report) ([]Upload, error) {
	var files []string
	for _, o := range report.Outcomes {
		if !o.Succeeded() {
			continue
		}
		files = append(files, o.Output)
		if o.Cover != "" && o.Cover != o.Output {
			files = append(files, o.Cover)
		}
	}
	if report.Manifest != "" {
		files = append(files, report.Manifest)
	}

	uploads := make([]Upload, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return uploads, err
		}
		key := p.Key(report.BatchID, file)
		if err := p.put(ctx, file, key); err != nil {
			return uploads, err
		}
		uploads = append(uploads, Upload{Path: file, Key: key})
	}
	p.logger.Info("batch published",
		logging.String(logging.FieldEventType, "publish_complete"),
		logging.String("bucket", p.bucket),
		logging.String("batch_id", report.BatchID),
		logging.Int("objects", len(uploads)),
	)
	return uploads, nil
}

func (p *Publisher) put(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return services.Wrap(services.ErrAssetUnreadable, "publish", "open", file, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return services.Wrap(services.ErrAssetUnreadable, "publish", "stat", file, err)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(file)),
	})
	if err != nil {
		return classify(key, err)
	}
	p.logger.Debug("object uploaded", logging.String("key", key), logging.Int64("bytes", info.Size()))
	return nil
}

func classify(key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return services.Wrap(services.ErrConfiguration, "publish", "put object", fmt.Sprintf("%s (%s)", key, apiErr.ErrorCode()), err)
		}
	}
	return services.Wrap(services.ErrExternalService, "publish", "put object", key, err)
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".mp4":
		return "video/mp4"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".json":
		return "application/json"
	case ".srt":
		return "application/x-subrip"
	default:
		return "application/octet-stream"
	}
}
