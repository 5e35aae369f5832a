// Package iopublish implements export.Publisher for S3-compatible object
// storage (AWS S3 or MinIO).
package iopublish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/mcw-ctsi/i2b2export/pkg/config"
	"github.com/mcw-ctsi/i2b2export/pkg/export"
)

// ContentType of uploaded export files.
const ContentType = "application/vnd.sqlite3"

// ObjectPutter is the part of the S3 client used by the publisher.
type ObjectPutter interface {
	PutObject(
		ctx context.Context,
		in *s3.PutObjectInput,
		opts ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
}

// publisher implements export.Publisher.
type publisher struct {
	client ObjectPutter
	bucket string
	prefix string
}

// New creates a Publisher from the publish settings. Credentials come
// from the default AWS chain (environment, shared config, instance role).
func New(ctx context.Context, cfg config.PublishConfig) (export.Publisher, error) {
	if cfg.S3Bucket == "" {
		return nil, NoBucketError()
	}

	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, PublishError(cfg.S3Bucket, "", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3PathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})
	return NewWithClient(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

// NewWithClient creates a Publisher over an existing client.
func NewWithClient(client ObjectPutter, bucket, prefix string) export.Publisher {
	return &publisher{client: client, bucket: bucket, prefix: prefix}
}

// Publish uploads the file and returns its s3:// location.
func (p *publisher) Publish(ctx context.Context, filePath string) (string, error) {
	key := ObjectKey(p.prefix, filePath)

	f, err := os.Open(filePath)
	if err != nil {
		return "", PublishError(p.bucket, key, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", PublishError(p.bucket, key, err)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(ContentType),
	})
	if err != nil {
		return "", PublishError(p.bucket, key, err)
	}

	res := fmt.Sprintf("s3://%s/%s", p.bucket, key)
	slog.Info("Published export file",
		"location", res,
		"size", humanize.Bytes(uint64(info.Size())),
	)
	return res, nil
}

// ObjectKey joins the prefix and the base name of the file.
func ObjectKey(prefix, filePath string) string {
	key := path.Join(prefix, filepath.Base(filePath))
	return strings.TrimPrefix(key, "/")
}
