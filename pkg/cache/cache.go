// Package cache provides keyed byte caches for pipeline results.
//
// Built graphs are expensive to recompute for large record stores, so the
// pipeline stores their serialized form under a key derived from the record
// store's content digest and the build options. Rendered layouts are cached
// the same way, keyed by the reduced graph's hash.
//
// Backends:
//
//   - [FileCache]: one zstd-compressed entry file per key under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so callers never build key strings by hand.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Default TTLs for cached entries.
const (
	GraphTTL  = 7 * 24 * time.Hour
	LayoutTTL = 24 * time.Hour
)

// Cache is a byte-oriented key/value cache.
//
// Get reports a miss with ok == false and a nil error. A zero ttl stores the
// entry without expiration.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GraphKeyOpts are the build options that affect a built graph.
type GraphKeyOpts struct {
	Policy string `json:"policy"`
}

// LayoutKeyOpts are the render options that affect a layout.
type LayoutKeyOpts struct {
	SizeBy  string `json:"size_by"`
	Labels  bool   `json:"labels"`
	Engine  string `json:"engine"`
	Sources string `json:"sources"` // identifies the record and tweet data used for styling
}

// Keyer derives cache keys.
type Keyer interface {
	// GraphKey is the key of the graph built from a record store with the
	// given content digest.
	GraphKey(storeDigest string, opts GraphKeyOpts) string

	// LayoutKey is the key of the layout rendered from a serialized graph
	// with the given hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(storeDigest string, opts GraphKeyOpts) string {
	return hashKey("graph", storeDigest, opts)
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "kind:" followed by the SHA-256 of the JSON encoding of parts.
func hashKey(kind string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		_ = enc.Encode(p)
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// NullCache never stores anything; every Get misses.
type NullCache struct{}

var _ Cache = NullCache{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)       { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
