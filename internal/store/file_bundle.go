package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MKhiriev/go-journal-vault/internal/logger"
)

// DefaultMaxBundleSize bounds bundle files read by [BundleFileStorage].
const DefaultMaxBundleSize = 64 << 20

// bundleFileStorage is the local-filesystem implementation of
// [BundleFileStorage]. Relative paths are resolved against baseDir.
type bundleFileStorage struct {
	baseDir string
	maxSize int64
	logger  *logger.Logger
}

// NewBundleFileStorage constructs a [BundleFileStorage]. A non-positive
// maxSize selects [DefaultMaxBundleSize].
func NewBundleFileStorage(baseDir string, maxSize int64, logger *logger.Logger) BundleFileStorage {
	if maxSize <= 0 {
		maxSize = DefaultMaxBundleSize
	}
	return &bundleFileStorage{
		baseDir: baseDir,
		maxSize: maxSize,
		logger:  logger,
	}
}

// SaveBundle implements [BundleFileStorage]. The data is written to a
// temporary file in the target directory and renamed over path, so a crash
// never leaves a half-written backup behind.
func (s *bundleFileStorage) SaveBundle(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path = s.resolve(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create bundle dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".bundle-*")
	if err != nil {
		return fmt.Errorf("create temp bundle file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod bundle file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write bundle file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync bundle file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close bundle file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename bundle file: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("func", "bundleFileStorage.SaveBundle").
		Str("path", path).
		Int("size", len(data)).
		Msg("bundle written")
	return nil
}

// LoadBundle implements [BundleFileStorage].
func (s *bundleFileStorage) LoadBundle(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path = s.resolve(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read bundle file: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrBundleTooLarge
	}
	return data, nil
}

func (s *bundleFileStorage) resolve(path string) string {
	if filepath.IsAbs(path) || s.baseDir == "" {
		return path
	}
	return filepath.Join(s.baseDir, path)
}
