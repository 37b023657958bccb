package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one cache backend without colliding.
//
// Example usage:
//
//	// Keys for the staging scheduler
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// GraphKey generates a prefixed key for lineage subgraph caching.
func (k *ScopedKeyer) GraphKey(project string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(project, opts)
}

// OptionKey generates a prefixed key for renderer configuration caching.
func (k *ScopedKeyer) OptionKey(graphHash string, opts OptionKeyOpts) string {
	return k.prefix + k.inner.OptionKey(graphHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}
