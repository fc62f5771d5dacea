package cache

// ScopedKeyer prefixes every key of an inner Keyer, so datasets sharing
// one backend (e.g. a Redis instance) never collide.
type ScopedKeyer struct {
	Keyer
	Prefix string
}

// NewScopedKeyer scopes inner (DefaultKeyer when nil) under prefix.
func NewScopedKeyer(inner Keyer, prefix string) *ScopedKeyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{Keyer: inner, Prefix: prefix}
}

func (k *ScopedKeyer) GraphKey(storeDigest string, opts GraphKeyOpts) string {
	return k.Prefix + k.Keyer.GraphKey(storeDigest, opts)
}

func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.Prefix + k.Keyer.LayoutKey(graphHash, opts)
}
