// Package storage implements the export archive on MinIO-compatible object
// storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/pkg/options"
)

// Archive stores position history exports and hands out temporary download
// links.
type Archive struct {
	client *minio.Client
	bucket string
}

var _ core.ArchiveStore = (*Archive)(nil)

// New connects to the object store and creates the bucket when missing.
func New(ctx context.Context, opts *options.S3Options) (*Archive, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	a := &Archive{client: client, bucket: opts.BucketName}

	exists, err := client.BucketExists(ctx, a.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", a.bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", a.bucket, err)
		}
	}
	return a, nil
}

// Put uploads an export object.
func (a *Archive) Put(ctx context.Context, objectKey, contentType string, body []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, objectKey,
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %q: %w", objectKey, err)
	}
	return nil
}

// PresignedURL generates a temporary download link for an uploaded object.
func (a *Archive) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %q: %w", objectKey, err)
	}
	return u.String(), nil
}
