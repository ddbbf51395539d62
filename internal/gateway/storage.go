package gateway

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// ObjectStore downloads binary assets from the backend's S3-compatible
// storage endpoint. Read-only: the client never uploads.
type ObjectStore struct {
	mc     *minio.Client
	bucket string
	log    zerolog.Logger
}

// NewObjectStore connects to the storage endpoint. A nil store is returned
// when endpoint is empty, which disables downloads.
func NewObjectStore(endpoint, accessKey, secretKey, bucket string, useSSL bool, log zerolog.Logger) (*ObjectStore, error) {
	if endpoint == "" {
		return nil, nil
	}
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway.NewObjectStore: %w", err)
	}
	return &ObjectStore{mc: mc, bucket: bucket, log: log}, nil
}

// Download streams the object at path from the configured bucket.
func (s *ObjectStore) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := s.mc.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("gateway.ObjectStore.Download %s: %w", path, err)
	}
	// GetObject is lazy; surface missing-object errors now.
	if _, err := obj.Stat(); err != nil {
		obj.Close() //nolint:errcheck
		return nil, fmt.Errorf("gateway.ObjectStore.Download %s: %w", path, err)
	}
	return obj, nil
}

// SaveTo downloads the object at path into dir under name, returning the
// written file path.
func (s *ObjectStore) SaveTo(ctx context.Context, path, dir, name string) (string, error) {
	obj, err := s.Download(ctx, path)
	if err != nil {
		return "", err
	}
	defer obj.Close() //nolint:errcheck

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("gateway.ObjectStore.SaveTo: %w", err)
	}
	dest := filepath.Join(dir, name)
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("gateway.ObjectStore.SaveTo: %w", err)
	}
	if _, err := io.Copy(f, obj); err != nil {
		f.Close() //nolint:errcheck
		return "", fmt.Errorf("gateway.ObjectStore.SaveTo: write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("gateway.ObjectStore.SaveTo: close %s: %w", dest, err)
	}
	s.log.Debug().Str("path", path).Str("dest", dest).Msg("asset downloaded")
	return dest, nil
}
