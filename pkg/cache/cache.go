// Package cache stores pipeline artifacts (styled layers, hexagon statistics,
// composites) keyed by the content that produced them.
//
// Two backends are provided: [FileCache] for the CLI, storing entries under
// the user cache directory, and [NullCache], which disables caching. Keys
// are built by a [Keyer]; [DefaultKeyer] hashes every input that affects the
// artifact, and [ScopedKeyer] namespaces keys, e.g. per release so stale
// artifacts are never served after an upgrade.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte artifacts.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default artifact lifetimes.
const (
	StyledTTL    = 24 * time.Hour
	HexgridTTL   = 7 * 24 * time.Hour
	CompositeTTL = 7 * 24 * time.Hour
)

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache with caching disabled.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
