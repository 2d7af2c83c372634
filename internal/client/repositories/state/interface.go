// Package state persists small key-value records owned by the session store.
// Values are opaque bytes; callers parse them defensively on read.
package state

import "context"

// Repository is a string-keyed byte store. Get returns (nil, nil) for a
// missing key so absence and corruption can be handled the same way upstream.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
