package cache

import "fmt"

// Keyer builds cache keys for the values spm caches.
type Keyer interface {
	// ManifestKey returns the key of a release manifest.
	ManifestKey(owner, repo, version string) string
}

// DefaultKeyer produces plain, human-readable keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ManifestKey returns "manifest:<owner>/<repo>@<version>".
func (DefaultKeyer) ManifestKey(owner, repo, version string) string {
	return fmt.Sprintf("manifest:%s/%s@%s", owner, repo, version)
}

// ScopedKeyer wraps a Keyer with a prefix so several hosts or mirrors can
// share one backend without colliding.
//
// Example usage:
//
//	// Keys for a GitHub Enterprise mirror
//	k := NewScopedKeyer(NewDefaultKeyer(), "ghe.example.com:")
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

// ManifestKey generates a prefixed release manifest key.
func (k *ScopedKeyer) ManifestKey(owner, repo, version string) string {
	return k.prefix + k.inner.ManifestKey(owner, repo, version)
}
