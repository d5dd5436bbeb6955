package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "whiteboard:")
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

// DocumentKey implements Keyer.
func (k *ScopedKeyer) DocumentKey(filename string, data []byte) string {
	return k.prefix + k.inner.DocumentKey(filename, data)
}

// ChatKey implements Keyer.
func (k *ScopedKeyer) ChatKey(model, system, query string) string {
	return k.prefix + k.inner.ChatKey(model, system, query)
}
