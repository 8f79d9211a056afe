package cache

// ScopedKeyer wraps a Keyer with a prefix so that several family trees (or
// several deployments sharing one Redis) keep separate key spaces.
//
// Example usage:
//
//	// Keys for one spreadsheet
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tree:"+Hash([]byte(sheetURL))[:12]+":")
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

// SheetKey generates a prefixed key for downloaded CSV bytes.
func (k *ScopedKeyer) SheetKey(url string) string {
	return k.prefix + k.inner.SheetKey(url)
}

// DataKey generates a prefixed key for parsed family data.
func (k *ScopedKeyer) DataKey(sourceHash string) string {
	return k.prefix + k.inner.DataKey(sourceHash)
}

// FrameKey generates a prefixed key for laid-out frames.
func (k *ScopedKeyer) FrameKey(dataHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(dataHash, opts)
}

// ShareKey generates a prefixed key for shared view states.
func (k *ScopedKeyer) ShareKey(id string) string {
	return k.prefix + k.inner.ShareKey(id)
}
