package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by a Medium after Close
var ErrClosed = errors.New("storage medium is closed")

// Medium is a raw byte-oriented key/value store. Implementations are durable
// and synchronous: a nil error from Set means the value is persisted.
type Medium interface {
	// Get returns the value under key, or nil with a nil error when the key
	// does not exist
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	Close() error
}
