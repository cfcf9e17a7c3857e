// Package photostore keeps dish photos and maps them to the opaque image
// references stored on dishes.
package photostore

import (
	"context"
	"io"
	"strings"
)

// URIPrefix marks image references that point into a PhotoStore. Any other
// reference, such as a device URI, is treated as external.
const URIPrefix = "photos/"

type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// URI returns the image reference for a stored photo.
func URI(storageKey string) string {
	return URIPrefix + storageKey
}

// KeyFromURI returns the storage key behind an image reference, or false when
// the reference does not point into a PhotoStore.
func KeyFromURI(uri string) (string, bool) {
	key, ok := strings.CutPrefix(uri, URIPrefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
