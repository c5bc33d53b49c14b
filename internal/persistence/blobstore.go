package persistence

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seva-foundation/darshan-service/internal/config"
)

// BlobStore abstracts object storage for uploaded media.
type BlobStore interface {
	Upload(ctx context.Context, body io.Reader, pathHint, fileName, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// S3BlobStore implements BlobStore on Amazon S3 or S3-compatible storage.
// Concurrent writes to the same key are last-write-wins.
type S3BlobStore struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucket     string
	presignTTL time.Duration
	logger     *zap.Logger
}

// NewS3BlobStore builds the store from configuration. The bucket must
// already exist; this does not create it.
func NewS3BlobStore(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (*S3BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3BlobStore{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		presignTTL: cfg.PresignTTL(),
		logger:     logger,
	}, nil
}

// Upload stores the body under a generated key beneath pathHint and returns the key.
func (s *S3BlobStore) Upload(ctx context.Context, body io.Reader, pathHint, fileName, contentType string) (string, error) {
	key := buildObjectKey(pathHint, fileName)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload blob %s: %w", key, err)
	}
	return key, nil
}

// Delete removes the object. Missing keys are not an error.
func (s *S3BlobStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// PresignedURL issues a time-bound read URL for the key.
func (s *S3BlobStore) PresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign blob %s: %w", key, err)
	}
	return req.URL, nil
}

func buildObjectKey(pathHint, fileName string) string {
	hint := strings.Trim(strings.TrimSpace(pathHint), "/")
	if hint == "" {
		hint = "uploads"
	}
	ext := path.Ext(fileName)
	return hint + "/" + uuid.NewString() + ext
}
