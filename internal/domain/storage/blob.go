package storage

import (
	"context"
	"io"
)

//go:generate mockgen -destination=../../mocks/mock_blob.go -package=mocks logipro/internal/domain/storage BlobStore

// BlobStore keeps uploaded files and returns the URL they are served from.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}
