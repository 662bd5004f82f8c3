// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, AWS S3).
package storage

import (
	"context"
	"time"
)

// Storage is the interface for issuing direct-write grants and managing
// stored objects.
type Storage interface {
	// PresignPut issues a time-limited URL permitting a single direct PUT of
	// exactly key with exactly contentType. The store rejects a PUT whose
	// Content-Type header differs from the one signed here.
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
