package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when no document exists under a key
var ErrNotFound = errors.New("document not found")

// Store persists opaque documents by key
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, doc []byte) error
	Delete(ctx context.Context, key string) error
}
