// Package metadata stores named JSON blobs (auth state, cart) in the local
// database. It plays the role of browser localStorage.
package metadata

import (
	"context"
)

// Repository is a key/value store of opaque blobs.
// Get returns common.ErrorNotFound for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
