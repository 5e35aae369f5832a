package iopublish

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/mcw-ctsi/i2b2export/pkg/errcode"
)

// NoBucketError is returned when upload is requested without a bucket.
func NoBucketError() error {
	msg := `Upload requested but no bucket is configured

Set <em>publish.s3_bucket</em> in the config file or
I2B2EXPORT_PUBLISH_S3_BUCKET in the environment.`

	return &gn.Error{
		Code: errcode.PublishError,
		Msg:  msg,
		Err:  fmt.Errorf("s3 bucket is not set"),
	}
}

// PublishError is returned when the export file cannot be uploaded.
// The local file is complete regardless.
func PublishError(bucket, key string, err error) error {
	msg := `Cannot upload the export to bucket <em>%s</em>

The local export file is complete and can be uploaded manually.`

	return &gn.Error{
		Code: errcode.PublishError,
		Msg:  msg,
		Vars: []any{bucket},
		Err:  fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err),
	}
}
