package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/user/alttext-service/internal/domain"
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores each batch record as a JSON object.
type S3Uploader struct {
	client ObjectPutter
	bucket string
	now    func() time.Time
}

func NewS3Uploader(cfg aws.Config, bucket string) *S3Uploader {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return NewS3UploaderWithClient(client, bucket)
}

func NewS3UploaderWithClient(client ObjectPutter, bucket string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, now: time.Now}
}

func (u *S3Uploader) WriteRecord(ctx context.Context, record *domain.BatchRecord) error {
	_, err := u.Upload(ctx, record)
	return err
}

// Upload returns the s3:// location of the stored record.
func (u *S3Uploader) Upload(ctx context.Context, record *domain.BatchRecord) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}

	key := recordKey(record.SiteURL, u.now())
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("failed to upload record (%s): %w", apiErr.ErrorCode(), err)
		}
		return "", fmt.Errorf("failed to upload record: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}

// recordKey is <host>/<UTC timestamp>-<uuid>.json.
func recordKey(siteURL string, at time.Time) string {
	host := "unknown"
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return fmt.Sprintf("%s/%s-%s.json", host, at.UTC().Format("20060102T150405Z"), uuid.New().String())
}
