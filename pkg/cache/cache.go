// Package cache stores computed layouts and rendered artifacts under
// content-hash keys.
//
// Three backends share the [Cache] interface: [FileCache] for the CLI,
// [RedisCache] for a server fleet and [NullCache] when caching is off.
// Keys come from a [Keyer] so that every entry point derives the same key
// from the same route and options.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Default lifetimes. Layouts are deterministic for a given key, so they
// live long; artifacts are larger and cheap to re-render from a layout.
const (
	TTLLayout   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// LayoutKeyOpts are the inputs besides the route that determine a layout.
type LayoutKeyOpts struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	EdgePolicy string  `json:"edge_policy"`
	MaxTicks   int     `json:"max_ticks"`
	ForceHash  string  `json:"force_hash"`
}

// ArtifactKeyOpts are the inputs besides the layout that determine an
// artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Scale       float64 `json:"scale,omitempty"`
	Transparent bool    `json:"transparent,omitempty"`
	NoGlow      bool    `json:"no_glow,omitempty"`
	Detailed    bool    `json:"detailed,omitempty"`
	Caption     bool    `json:"caption,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(routeHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(routeHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, routeHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}

// KeyType returns the type segment of a key built by [DefaultKeyer],
// possibly behind a [ScopedKeyer] prefix, or "other".
func KeyType(key string) string {
	for _, t := range []string{KeyTypeLayout, KeyTypeArtifact} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return "other"
}
