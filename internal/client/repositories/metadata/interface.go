// Package metadata stores the client session (user id, username and tokens)
// as key/value pairs in the local store.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	GetString(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value []byte) error
	SetStrings(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
