// internal/media/store.go
package media

import "context"

// ObjectStore is the external image host the gallery metadata points at.
// Put returns the public URL of the stored object.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
