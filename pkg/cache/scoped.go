package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants can share one
// cache backend without key collisions. The render server uses this to keep
// per-client namespaces apart.
//
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "client:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every generated key.
// A nil inner keyer defaults to [NewDefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ModelKey generates a prefixed key for parsed model caching.
func (k *ScopedKeyer) ModelKey(sourceHash string) string {
	return k.prefix + k.inner.ModelKey(sourceHash)
}

// DiagramKey generates a prefixed key for rendered SVG caching.
func (k *ScopedKeyer) DiagramKey(modelHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(modelHash, opts)
}

// ArtifactKey generates a prefixed key for converted artifact caching.
func (k *ScopedKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(diagramHash, opts)
}
