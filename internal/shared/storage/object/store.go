package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates no object is stored under the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving uploaded resume files.
type ObjectStore interface {
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// Delete removes an object. Deleting a missing key succeeds.
	Delete(ctx context.Context, storageKey string) error
}
