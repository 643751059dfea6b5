package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
)

// KV is the durable key-value capability the engine persists through.
// Get returns ErrNotFound when the key has never been written.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Deleter is implemented by stores that can drop a key outright.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}
