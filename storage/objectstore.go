package storage

import "context"

// ObjectStore is the object-storage collaborator consumed by the image
// duplication flow.
type ObjectStore interface {
	// Fetch downloads the binary at url and returns the payload and its
	// content type.
	Fetch(ctx context.Context, url string) ([]byte, string, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PublicURL(key string) string
	// Remove deletes an object; used to clean up orphaned uploads.
	Remove(ctx context.Context, key string) error
}
