// Package storage persists uploaded payment-receipt images. Receipts are
// addressed by generated filename; the backing store is either the local
// file system or S3, with a fallback wrapper preferring S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no stored receipt matches the filename.
var ErrNotFound = errors.New("receipt not found")

// ReceiptStore defines the interface for receipt persistence.
type ReceiptStore interface {
	// Save writes the receipt content under the given filename.
	Save(ctx context.Context, filename, contentType string, content io.Reader) error

	// Open streams a stored receipt and reports its content type.
	// Returns ErrNotFound when the filename is absent.
	Open(ctx context.Context, filename string) (io.ReadCloser, string, error)

	// Delete removes a stored receipt. Deleting an absent filename is not
	// an error.
	Delete(ctx context.Context, filename string) error
}

// NewReceiptFilename generates a collision-resistant filename for an
// uploaded receipt, preserving the original file extension.
func NewReceiptFilename(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("receipt-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}

// SanitizeFilename rejects path components that could escape the store.
// Returns the bare filename or an error for traversal attempts.
func SanitizeFilename(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid receipt filename: %q", name)
	}
	return name, nil
}
