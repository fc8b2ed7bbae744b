package services

import (
	"context"
	"io"
	"time"
)

// ReceiptStore is durable blob storage for uploaded receipt images. Keys are
// generated per save and collision-resistant, so two concurrent uploads can
// never silently overwrite each other.
type ReceiptStore interface {
	// Save stores the image bytes under a freshly generated key that keeps
	// the original file extension, and returns that key.
	Save(ctx context.Context, content []byte, originalName, contentType string) (string, error)

	// Get returns a stream of the stored object.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// ResolveURL returns a time-limited URL from which the object can be
	// downloaded without credentials.
	ResolveURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
