package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// localStore implements ReceiptStore on the local file system.
type localStore struct {
	dir    string
	logger zerolog.Logger
}

// NewLocalStore creates a disk-backed receipt store rooted at dir. The
// directory is created if it does not exist.
func NewLocalStore(dir string, logger zerolog.Logger) (ReceiptStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory %s: %w", dir, err)
	}

	logger = logger.With().Str("component", "local-receipt-store").Logger()
	logger.Info().Str("dir", dir).Msg("local receipt store initialised")

	return &localStore{
		dir:    dir,
		logger: logger,
	}, nil
}

// Save writes the receipt content under the given filename.
func (s *localStore) Save(ctx context.Context, filename, contentType string, content io.Reader) error {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to create receipt file")
		return fmt.Errorf("failed to create receipt file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write receipt file")
		return fmt.Errorf("failed to write receipt file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close receipt file: %w", err)
	}

	s.logger.Debug().Str("filename", name).Msg("receipt saved")
	return nil
}

// Open streams a stored receipt. The content type is derived from the file
// extension since the declared type is not retained on disk.
func (s *localStore) Open(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return nil, "", ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		s.logger.Error().Err(err).Str("filename", name).Msg("failed to open receipt file")
		return nil, "", fmt.Errorf("failed to open receipt file: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return f, contentType, nil
}

// Delete removes a stored receipt.
func (s *localStore) Delete(ctx context.Context, filename string) error {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		s.logger.Error().Err(err).Str("filename", name).Msg("failed to delete receipt file")
		return fmt.Errorf("failed to delete receipt file: %w", err)
	}

	s.logger.Debug().Str("filename", name).Msg("receipt deleted")
	return nil
}
