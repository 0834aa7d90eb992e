// Package blob stores binary artifacts (signatures, slot uploads, generated
// documents) under caller-chosen keys. Writing the same key twice overwrites
// the object, which is what makes upload retries safe.
package blob

import (
	"context"
	"strings"
)

type Store interface {
	// Put writes data under key and returns the object's public URL.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Locator points at a stored object.
type Locator struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Attempts int    `json:"-"`
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		out += "/" + p
	}
	return out
}
