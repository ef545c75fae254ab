// File: internal/services/blob/minio_provider.go
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements Store against any S3-compatible endpoint.
type MinioStore struct {
	config *Config
	client *minio.Client
}

func NewMinioStore(config *Config) (*MinioStore, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage configuration: %w", err)
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &MinioStore{config: config, client: client}, nil
}

// EnsureBucket creates the bucket when it does not exist yet. Called once at
// startup so uploads never race bucket creation.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.config.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.config.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put stores the object under folder/ownerID/<uuid><ext> so names never
// collide across users regardless of what the client called the file.
func (s *MinioStore) Put(ctx context.Context, r io.Reader, size int64, name, contentType, folder string, ownerID uint) (*PutResult, error) {
	ext := path.Ext(name)
	objectPath := fmt.Sprintf("%s/%d/%s%s", strings.Trim(folder, "/"), ownerID, uuid.NewString(), ext)

	_, err := s.client.PutObject(ctx, s.config.Bucket, objectPath, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store object: %w", err)
	}

	scheme := "http"
	if s.config.UseSSL {
		scheme = "https"
	}
	return &PutResult{
		URL:  fmt.Sprintf("%s://%s/%s/%s", scheme, s.config.Endpoint, s.config.Bucket, objectPath),
		Path: objectPath,
	}, nil
}

func (s *MinioStore) Delete(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("object path is required")
	}
	if err := s.client.RemoveObject(ctx, s.config.Bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *MinioStore) PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	if path == "" {
		return "", fmt.Errorf("object path is required")
	}
	u, err := s.client.PresignedGetObject(ctx, s.config.Bucket, path, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object URL: %w", err)
	}
	return u.String(), nil
}
