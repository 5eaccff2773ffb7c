package cache

import "strings"

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "wordpath:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(routeHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(routeHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

// Unscope strips the prefix from a key, reporting whether it was present.
func (k *ScopedKeyer) Unscope(key string) (string, bool) {
	return strings.CutPrefix(key, k.prefix)
}
