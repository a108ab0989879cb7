// Package draft stores serialized checkout drafts under a string key.
//
// Implementations only move bytes; decoding and merge rules live in the
// checkout service so that a corrupt payload can be detected and discarded there.
package draft

import "context"

// Repository is the key-value persistence port for checkout drafts.
// Get returns domain.ErrNotFound when nothing is stored under key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}
