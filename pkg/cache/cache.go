// Package cache stores search results and rendered artifacts between runs.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the HTTP server, and [NullCache] when caching is disabled. Keys come
// from a [Keyer] so the same lookup logic works across backends and scopes.
package cache

import (
	"context"
	"time"
)

// Cache TTLs. Search results depend only on their inputs, so they can live
// long; artifacts are cheap to regenerate.
const (
	TTLSearch   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiration.
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// SearchKeyOpts holds the parameters that change a search result.
type SearchKeyOpts struct {
	Algorithm string  `json:"algorithm"`
	Weight    float64 `json:"weight"`
	Directed  bool    `json:"directed"`
	Start     string  `json:"start"`
	Goal      string  `json:"goal"`
}

// ArtifactKeyOpts holds the parameters that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Style  string `json:"style,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// GraphKey identifies a normalized graph document by content hash.
	GraphKey(docHash string) string
	// SearchKey identifies a search over a graph document.
	SearchKey(docHash string, opts SearchKeyOpts) string
	// ArtifactKey identifies a rendering of a search result.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey returns "graph:<docHash>".
func (DefaultKeyer) GraphKey(docHash string) string {
	return "graph:" + docHash
}

// SearchKey returns "search:<sha256>" over the document hash and options.
func (DefaultKeyer) SearchKey(docHash string, opts SearchKeyOpts) string {
	return hashKey("search", docHash, opts)
}

// ArtifactKey returns "artifact:<sha256>" over the result hash and options.
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts)
}
