package blob

import (
	"context"
	"io"
	"time"
)

// PutResult is the stored object's public URL and its bucket-relative path.
type PutResult struct {
	URL  string
	Path string
}

// Store is the object storage boundary: attachment bytes never pass through
// the relational store, only through here.
type Store interface {
	Put(ctx context.Context, r io.Reader, size int64, name, contentType, folder string, ownerID uint) (*PutResult, error)
	Delete(ctx context.Context, path string) error
	// PresignedURL returns a time-limited download link for a stored object.
	PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}
