package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"logipro/internal/logger"
)

var ErrInvalidKey = errors.New("invalid blob key")

// FileStore writes blobs below root on an afero filesystem: the OS disk in
// production, a MemMapFs in tests.
type FileStore struct {
	fs        afero.Fs
	publicURL string
}

func NewFileStore(base afero.Fs, root, publicURL string) (*FileStore, error) {
	if err := base.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FileStore{
		fs:        afero.NewBasePathFs(base, root),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *FileStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}

	if err := afero.WriteReader(s.fs, clean, r); err != nil {
		return "", fmt.Errorf("failed to store blob: %w", err)
	}

	logger.Debug("Blob stored",
		zap.String("key", clean),
		zap.String("content_type", contentType),
	)

	return s.publicURL + clean, nil
}

// FileSystem exposes the stored blobs for static serving.
func (s *FileStore) FileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs)
}
