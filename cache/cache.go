// Package cache keeps the results of named read operations and drops them by
// tag when a mutation makes them stale.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Tags shared by the blog queries.
const (
	TagPublished = "posts:published"
	TagAll       = "posts:all"
	TagTaxonomy  = "taxonomy"
)

// PostTag names the entries that depend on a single post.
func PostTag(id string) string {
	return "post:" + id
}

// Service stores opaque values under a key, grouped by tags for invalidation.
// Get returns nil, nil on a miss.
type Service interface {
	Set(ctx context.Context, key string, data []byte, tags []string, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Invalidate(ctx context.Context, tags ...string) error
}

// Key derives a stable cache key from an operation name and its parameters.
// Operations without parameters use their name as is.
func Key(name string, params ...string) string {
	if len(params) == 0 {
		return name
	}
	sum := sha256.Sum256([]byte(strings.Join(params, "\x00")))
	return name + ":" + hex.EncodeToString(sum[:])[:16]
}
