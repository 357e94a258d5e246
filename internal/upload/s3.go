package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Storage stores uploads in an S3-compatible bucket.
type S3Storage struct {
	client *minio.Client
	bucket string
}

// S3Config holds object storage connection settings.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewS3Storage connects to the endpoint and makes sure the bucket exists.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client for %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.Bucket, err)
		}
		slog.Info("upload bucket created", "bucket", cfg.Bucket)
	}

	return &S3Storage{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads data under items/<key> and returns the object URL.
func (s *S3Storage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	object := "items/" + key
	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("uploading %s to bucket %s: %w", object, s.bucket, err)
	}
	return s.urlPrefix() + object, nil
}

// Remove deletes the object behind a URL returned by Put.
func (s *S3Storage) Remove(ctx context.Context, path string) error {
	object := strings.TrimPrefix(path, s.urlPrefix())
	if object == path {
		return fmt.Errorf("not an object url for bucket %s: %q", s.bucket, path)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing %s: %w", object, err)
	}
	return nil
}

func (s *S3Storage) urlPrefix() string {
	return fmt.Sprintf("%s/%s/", s.client.EndpointURL().String(), s.bucket)
}
