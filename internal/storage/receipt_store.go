package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vzlabs/expense_tracker_app/internal/apperrors"
	portssvc "github.com/vzlabs/expense_tracker_app/internal/core/ports/services"
	"github.com/vzlabs/expense_tracker_app/internal/platform/config"
)

// minioReceiptStore implements the ReceiptStore port on an S3-compatible
// backend (MinIO, AWS S3, etc.). It is safe for concurrent use.
type minioReceiptStore struct {
	client *minio.Client
	bucket string
}

// NewMinioReceiptStore creates a receipt store backed by MinIO. It validates
// connectivity and ensures the bucket exists (creates it if missing).
func NewMinioReceiptStore(cfg *config.Config) (portssvc.ReceiptStore, error) {
	if cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.MinioBucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &minioReceiptStore{client: cli, bucket: cfg.MinioBucket}, nil
}

// Save uploads the image under a freshly generated key. Keys are never
// reused, so retrying a failed submission uploads a new object instead of
// overwriting anything.
func (s *minioReceiptStore) Save(ctx context.Context, content []byte, originalName, contentType string) (string, error) {
	key := NewReceiptKey(originalName)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: put receipt %s: %v", apperrors.ErrStorage, key, err)
	}
	return key, nil
}

// Get returns a stream of the stored receipt image.
func (s *minioReceiptStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: get receipt %s: %v", apperrors.ErrStorage, key, err)
	}
	// GetObject is lazy; stat to surface a missing key now.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("%w: stat receipt %s: %v", apperrors.ErrStorage, key, err)
	}
	return obj, nil
}

// ResolveURL returns a presigned download URL for the receipt image.
func (s *minioReceiptStore) ResolveURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("%w: presign receipt %s: %v", apperrors.ErrStorage, key, err)
	}
	return u.String(), nil
}

// NewReceiptKey generates a collision-resistant object key for an uploaded
// receipt, keeping the original file extension for content-type hints.
func NewReceiptKey(originalName string) string {
	return "receipts/" + uuid.NewString() + filepath.Ext(originalName)
}
