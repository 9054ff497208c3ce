package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
)

// MinIOConfig holds object store connection settings
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string // optional; URLs default to s3://bucket/key
}

// objectClient is the subset of *minio.Client used by the store
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinIODocumentStore implements port.DocumentStore on an S3-compatible bucket
type MinIODocumentStore struct {
	client    objectClient
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// NewMinIODocumentStore connects to the object store and creates the bucket when missing
func NewMinIODocumentStore(ctx context.Context, cfg MinIOConfig, logger *zap.Logger) (*MinIODocumentStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return newMinIODocumentStore(ctx, client, cfg, logger)
}

func newMinIODocumentStore(ctx context.Context, client objectClient, cfg MinIOConfig, logger *zap.Logger) (*MinIODocumentStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("Bucket created", zap.String("bucket", cfg.Bucket))
	}

	return &MinIODocumentStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		logger:    logger,
	}, nil
}

// Put uploads r under key
func (s *MinIODocumentStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*port.StoredDocument, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("Failed to upload document",
			zap.String("bucket", s.bucket),
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	s.logger.Info("Document uploaded",
		zap.String("key", key),
		zap.Int64("size", info.Size))

	return &port.StoredDocument{
		Key:         key,
		URL:         s.url(key),
		Size:        info.Size,
		ContentType: contentType,
	}, nil
}

// Exists reports whether key is present in the bucket
func (s *MinIODocumentStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat document: %w", err)
	}
	return true, nil
}

// Delete removes key from the bucket
func (s *MinIODocumentStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Error("Failed to delete document", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *MinIODocumentStore) url(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + s.bucket + "/" + key
	}
	return "s3://" + s.bucket + "/" + key
}

var _ port.DocumentStore = (*MinIODocumentStore)(nil)
