// Package identifier provides content-derived identities for evidence tokens.
//
// An Identifier is a digest over a token's canonical binary encoding tagged
// with the kind of token it names, so two tokens built from the same bytes
// share an identity while a certificate and a timestamp never collide.
package identifier

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Common errors
var (
	ErrMalformed        = errors.New("malformed identifier")
	ErrUnknownKind      = errors.New("unknown token kind")
	ErrUnknownAlgorithm = errors.New("unknown identifier digest algorithm")
)

// Kind tags the type of token an identifier names.
type Kind byte

const (
	KindCertificate Kind = 'C'
	KindRevocation  Kind = 'R'
	KindTimestamp   Kind = 'T'
	KindSignature   Kind = 'S'
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCertificate:
		return "certificate"
	case KindRevocation:
		return "revocation"
	case KindTimestamp:
		return "timestamp"
	case KindSignature:
		return "signature"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

func (k Kind) valid() bool {
	switch k {
	case KindCertificate, KindRevocation, KindTimestamp, KindSignature:
		return true
	}
	return false
}

// Algorithm is the digest used to derive an identifier.
type Algorithm byte

const (
	// SHA256 is the default identity digest.
	SHA256 Algorithm = iota + 1
	// SHA3_256 is available for callers that need a SHA-3 based identity.
	SHA3_256
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "SHA256"
	case SHA3_256:
		return "SHA3-256"
	default:
		return "unknown"
	}
}

// Identifier is a comparable, content-derived token identity.
// The zero value names no token.
type Identifier struct {
	kind   Kind
	alg    Algorithm
	digest [32]byte
}

// Identify derives the identifier of data with SHA-256.
func Identify(data []byte, kind Kind) Identifier {
	return Identifier{kind: kind, alg: SHA256, digest: sha256.Sum256(data)}
}

// IdentifyWith derives the identifier of data with the given digest algorithm.
func IdentifyWith(alg Algorithm, data []byte, kind Kind) (Identifier, error) {
	switch alg {
	case SHA256:
		return Identify(data, kind), nil
	case SHA3_256:
		return Identifier{kind: kind, alg: SHA3_256, digest: sha3.Sum256(data)}, nil
	default:
		return Identifier{}, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, alg)
	}
}

// Kind returns the token kind the identifier names.
func (id Identifier) Kind() Kind { return id.kind }

// Algorithm returns the digest algorithm.
func (id Identifier) Algorithm() Algorithm { return id.alg }

// Digest returns a copy of the digest bytes.
func (id Identifier) Digest() []byte {
	d := id.digest
	return d[:]
}

// IsZero reports whether the identifier names no token.
func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

// String renders the identifier as "<kind>-<HEX>", with a "3" marker after the
// kind for SHA3-256 identities.
func (id Identifier) String() string {
	if id.IsZero() {
		return ""
	}
	prefix := string(rune(id.kind))
	if id.alg == SHA3_256 {
		prefix += "3"
	}
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(id.digest[:]))
}

// Parse parses the output of String.
func Parse(s string) (Identifier, error) {
	head, digest, ok := strings.Cut(s, "-")
	if !ok || len(head) == 0 || len(head) > 2 {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	id := Identifier{kind: Kind(head[0]), alg: SHA256}
	if !id.kind.valid() {
		return Identifier{}, fmt.Errorf("%w: %q", ErrUnknownKind, head[:1])
	}
	if len(head) == 2 {
		if head[1] != '3' {
			return Identifier{}, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		id.alg = SHA3_256
	}
	raw, err := hex.DecodeString(digest)
	if err != nil || len(raw) != len(id.digest) {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	copy(id.digest[:], raw)
	return id, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*id = Identifier{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Less orders identifiers by their string form.
func Less(a, b Identifier) bool {
	return a.String() < b.String()
}
