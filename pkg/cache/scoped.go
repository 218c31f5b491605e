package cache

// ScopedKeyer wraps a Keyer with a prefix.
//
//	// Artifacts of one release never leak into another
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v"+buildinfo.Version+":")
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) StyledKey(layerHash string, opts StyledKeyOpts) string {
	return k.prefix + k.inner.StyledKey(layerHash, opts)
}

func (k *ScopedKeyer) HexgridKey(opts HexgridKeyOpts) string {
	return k.prefix + k.inner.HexgridKey(opts)
}

func (k *ScopedKeyer) CompositeKey(sceneHashes []string) string {
	return k.prefix + k.inner.CompositeKey(sceneHashes)
}
