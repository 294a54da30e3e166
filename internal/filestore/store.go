// Package filestore defines the unified interface for publishing generated
// sources to object storage backends.
//
// All providers (MinIO, S3-compatible servers, …) implement the Store
// interface. Callers depend only on this package — never on a specific
// provider package.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	err = store.PutObject(ctx, "models", "users_gen.go", bytes.NewReader(src), int64(len(src)), "text/x-go")
package filestore

import (
	"context"
	"io"
)

// Store is the single interface all publication providers must implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources (connections, goroutines, etc.).
	Close() error

	// EnsureBucket creates bucket if it does not already exist.
	EnsureBucket(ctx context.Context, bucket string) error

	// PutObject uploads size bytes from body to key inside bucket,
	// replacing any existing object at that key.
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
}
