package token

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/georgepadayatti/adesvalidator/identifier"
)

// DefaultRegistrySize is the number of certificates a registry keeps.
const DefaultRegistrySize = 4096

// Registry interns certificate tokens by identifier so that the same
// certificate met in different validation runs is represented once.
// It is safe for concurrent use.
type Registry struct {
	cache *lru.Cache
}

// NewRegistry creates a registry holding at most size certificates.
func NewRegistry(size int) (*Registry, error) {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Registry{cache: cache}, nil
}

// Intern returns the registered token with c's identifier, registering c if
// none is known.
func (r *Registry) Intern(c *CertificateToken) *CertificateToken {
	previous, ok, _ := r.cache.PeekOrAdd(c.ID, c)
	if ok {
		return previous.(*CertificateToken)
	}
	return c
}

// Lookup returns the registered token for id.
func (r *Registry) Lookup(id identifier.Identifier) (*CertificateToken, bool) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*CertificateToken), true
}

// Len returns the number of registered certificates.
func (r *Registry) Len() int {
	return r.cache.Len()
}
