// Package cryptosuite decides whether a cryptographic algorithm and key size
// are still acceptable at a given time.
//
// A Suite maps digest algorithms to an expiration date and encryption
// algorithms to key-size windows, each with its own expiration date. Lookups
// are fail-closed: an algorithm the suite does not list, or a key shorter than
// every listed window, is never acceptable.
package cryptosuite

import (
	"sort"
	"strings"
	"time"

	"github.com/georgepadayatti/adesvalidator/token"
)

// KeySizeWindow is the expiration of keys of at least MinKeySize bits.
// A nil Expiration never expires.
type KeySizeWindow struct {
	MinKeySize int
	Expiration *time.Time
}

// Suite is an algorithm expiration table. A Suite is read-only once built and
// may be shared between concurrent validation runs.
type Suite struct {
	Name       string
	digests    map[string]*time.Time
	encryption map[string][]KeySizeWindow
}

// New creates an empty suite.
func New(name string) *Suite {
	return &Suite{
		Name:       name,
		digests:    make(map[string]*time.Time),
		encryption: make(map[string][]KeySizeWindow),
	}
}

// AddDigest registers a digest algorithm. A nil expiration never expires.
func (s *Suite) AddDigest(name string, expiration *time.Time) *Suite {
	s.digests[canonical(name)] = expiration
	return s
}

// AddEncryption registers a key-size window for an encryption algorithm.
func (s *Suite) AddEncryption(name string, minKeySize int, expiration *time.Time) *Suite {
	key := canonical(name)
	windows := append(s.encryption[key], KeySizeWindow{MinKeySize: minKeySize, Expiration: expiration})
	sort.SliceStable(windows, func(i, j int) bool { return windows[i].MinKeySize < windows[j].MinKeySize })
	s.encryption[key] = windows
	return s
}

// DigestExpiration returns the expiration of a digest algorithm. The boolean
// is false when the suite does not know the algorithm.
func (s *Suite) DigestExpiration(name string) (*time.Time, bool) {
	exp, ok := s.digests[canonical(name)]
	return exp, ok
}

// EncryptionExpiration returns the expiration of the window with the largest
// minimum key size not exceeding keySize. The boolean is false for unknown
// algorithms and for keys below every window.
func (s *Suite) EncryptionExpiration(name string, keySize int) (*time.Time, bool) {
	windows := s.encryption[canonical(name)]
	var (
		found bool
		exp   *time.Time
	)
	for _, w := range windows {
		if w.MinKeySize > keySize {
			break
		}
		found, exp = true, w.Expiration
	}
	return exp, found
}

// ExpirationDate returns the earlier of the digest and encryption expirations
// of alg used with a key of keySize bits. A nil date never expires; false
// means the combination is unknown.
func (s *Suite) ExpirationDate(alg token.SignatureAlgorithm, keySize int) (*time.Time, bool) {
	digestExp, ok := s.DigestExpiration(alg.Digest)
	if !ok {
		return nil, false
	}
	encExp, ok := s.EncryptionExpiration(alg.Encryption, keySize)
	if !ok {
		return nil, false
	}
	return earliest(digestExp, encExp), true
}

// IsAcceptable reports whether alg with a key of keySize bits is acceptable
// at time at. Acceptance holds up to and including the expiration instant.
func (s *Suite) IsAcceptable(alg token.SignatureAlgorithm, keySize int, at time.Time) bool {
	exp, ok := s.ExpirationDate(alg, keySize)
	return ok && reliableAt(exp, at)
}

// DigestAcceptable reports whether a digest algorithm alone is acceptable at at.
func (s *Suite) DigestAcceptable(name string, at time.Time) bool {
	exp, ok := s.DigestExpiration(name)
	return ok && reliableAt(exp, at)
}

// Digests returns the registered digest names in sorted order.
func (s *Suite) Digests() []string {
	return sortedKeys(s.digests)
}

// Encryptions returns the registered encryption algorithm names in sorted order.
func (s *Suite) Encryptions() []string {
	return sortedKeys(s.encryption)
}

func reliableAt(exp *time.Time, at time.Time) bool {
	return exp == nil || !exp.Before(at)
}

func earliest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.Before(*a):
		return b
	default:
		return a
	}
}

// canonical folds spelling variants such as "SHA-256" and "sha256".
func canonical(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToUpper(name))
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
