package storage

import "context"

// ImageStore persists generated image bytes. Keys are opaque identifiers
// chosen by the caller (design IDs); stores must tolerate arbitrary
// binary payloads.
type ImageStore interface {
	// Put stores data under key with the given content type.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the stored bytes and content type for key.
	Get(ctx context.Context, key string) ([]byte, string, error)
	// Backend names the implementation for logs and metrics.
	Backend() string
}
