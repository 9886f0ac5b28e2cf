package token

import (
	"fmt"
	"maps"

	"github.com/georgepadayatti/adesvalidator/identifier"
)

// Graph is the diagnostic evidence graph of one validation input.
//
// Tokens are indexed by identifier. Adding a token whose identifier is already
// present keeps the first instance, so structurally identical evidence found
// along different paths collapses into one node. Every listing is sorted by
// identifier for deterministic iteration.
type Graph struct {
	certificates map[identifier.Identifier]*CertificateToken
	revocations  map[identifier.Identifier]*RevocationToken
	timestamps   map[identifier.Identifier]*TimestampToken
	signatures   map[identifier.Identifier]*SignatureToken

	byTarget  map[identifier.Identifier][]identifier.Identifier
	coveredBy map[identifier.Identifier][]identifier.Identifier
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		certificates: make(map[identifier.Identifier]*CertificateToken),
		revocations:  make(map[identifier.Identifier]*RevocationToken),
		timestamps:   make(map[identifier.Identifier]*TimestampToken),
		signatures:   make(map[identifier.Identifier]*SignatureToken),
		byTarget:     make(map[identifier.Identifier][]identifier.Identifier),
		coveredBy:    make(map[identifier.Identifier][]identifier.Identifier),
	}
}

// AddCertificate adds c and reports whether it was new.
func (g *Graph) AddCertificate(c *CertificateToken) bool {
	if _, ok := g.certificates[c.ID]; ok {
		return false
	}
	g.certificates[c.ID] = c
	return true
}

// AddRevocation adds r and reports whether it was new.
func (g *Graph) AddRevocation(r *RevocationToken) bool {
	if _, ok := g.revocations[r.ID]; ok {
		return false
	}
	g.revocations[r.ID] = r
	g.byTarget[r.TargetID] = append(g.byTarget[r.TargetID], r.ID)
	return true
}

// AddTimestamp adds t and reports whether it was new.
func (g *Graph) AddTimestamp(t *TimestampToken) bool {
	if _, ok := g.timestamps[t.ID]; ok {
		return false
	}
	g.timestamps[t.ID] = t
	seen := identifier.NewSet()
	for _, covered := range t.Covered {
		if seen.Contains(covered) {
			continue
		}
		seen.Add(covered)
		g.coveredBy[covered] = append(g.coveredBy[covered], t.ID)
	}
	return true
}

// AddSignature adds s and reports whether it was new.
func (g *Graph) AddSignature(s *SignatureToken) bool {
	if _, ok := g.signatures[s.ID]; ok {
		return false
	}
	g.signatures[s.ID] = s
	return true
}

// Certificate looks up a certificate token.
func (g *Graph) Certificate(id identifier.Identifier) (*CertificateToken, bool) {
	c, ok := g.certificates[id]
	return c, ok
}

// Revocation looks up a revocation token.
func (g *Graph) Revocation(id identifier.Identifier) (*RevocationToken, bool) {
	r, ok := g.revocations[id]
	return r, ok
}

// Timestamp looks up a timestamp token.
func (g *Graph) Timestamp(id identifier.Identifier) (*TimestampToken, bool) {
	t, ok := g.timestamps[id]
	return t, ok
}

// Signature looks up a signature token.
func (g *Graph) Signature(id identifier.Identifier) (*SignatureToken, bool) {
	s, ok := g.signatures[id]
	return s, ok
}

// Certificates returns all certificate tokens.
func (g *Graph) Certificates() []*CertificateToken {
	return sortedValues(g.certificates)
}

// Revocations returns all revocation tokens.
func (g *Graph) Revocations() []*RevocationToken {
	return sortedValues(g.revocations)
}

// Timestamps returns all timestamp tokens.
func (g *Graph) Timestamps() []*TimestampToken {
	return sortedValues(g.timestamps)
}

// Signatures returns all signature tokens.
func (g *Graph) Signatures() []*SignatureToken {
	return sortedValues(g.signatures)
}

// RevocationsFor returns the revocation statements about a certificate.
func (g *Graph) RevocationsFor(certID identifier.Identifier) []*RevocationToken {
	return lookupSorted(g.revocations, g.byTarget[certID])
}

// CoveringTimestamps returns the timestamps whose coverage includes id.
func (g *Graph) CoveringTimestamps(id identifier.Identifier) []*TimestampToken {
	return lookupSorted(g.timestamps, g.coveredBy[id])
}

// Contains reports whether any token carries id.
func (g *Graph) Contains(id identifier.Identifier) bool {
	switch id.Kind() {
	case identifier.KindCertificate:
		_, ok := g.certificates[id]
		return ok
	case identifier.KindRevocation:
		_, ok := g.revocations[id]
		return ok
	case identifier.KindTimestamp:
		_, ok := g.timestamps[id]
		return ok
	case identifier.KindSignature:
		_, ok := g.signatures[id]
		return ok
	}
	return false
}

// Chain returns the certification path of a certificate, leaf first. The path
// ends at the first trusted or self-signed certificate. A missing issuer or an
// issuer loop is an integrity error.
func (g *Graph) Chain(certID identifier.Identifier) ([]*CertificateToken, error) {
	cert, ok := g.certificates[certID]
	if !ok {
		return nil, fmt.Errorf("%w: certificate %s", ErrNotFound, certID)
	}

	chain := []*CertificateToken{cert}
	seen := identifier.NewSet(cert.ID)
	for cur := cert; !cur.Trusted && !cur.IsSelfSigned(); {
		issuer, ok := g.certificates[cur.IssuerID]
		if !ok {
			return nil, NewIntegrityError(cur.ID, "issuer %s is not in the graph", cur.IssuerID)
		}
		if seen.Contains(issuer.ID) {
			return nil, NewIntegrityError(issuer.ID, "issuer chain loops back")
		}
		seen.Add(issuer.ID)
		chain = append(chain, issuer)
		cur = issuer
	}
	return chain, nil
}

// Validate checks the references the graph contract requires to resolve.
func (g *Graph) Validate() error {
	for _, c := range g.Certificates() {
		if c.Trusted || c.IsSelfSigned() {
			continue
		}
		if _, ok := g.certificates[c.IssuerID]; !ok {
			return NewIntegrityError(c.ID, "issuer %s is not in the graph", c.IssuerID)
		}
	}
	for _, r := range g.Revocations() {
		if r.TargetID.IsZero() {
			return NewIntegrityError(r.ID, "revocation names no target certificate")
		}
	}
	return nil
}

// WithTrustAnchors returns a copy of the graph in which each anchor is
// present and marked trusted. The receiver is left untouched.
func (g *Graph) WithTrustAnchors(anchors ...*CertificateToken) *Graph {
	out := &Graph{
		certificates: maps.Clone(g.certificates),
		revocations:  g.revocations,
		timestamps:   g.timestamps,
		signatures:   g.signatures,
		byTarget:     g.byTarget,
		coveredBy:    g.coveredBy,
	}
	for _, a := range anchors {
		trusted := *a
		trusted.Trusted = true
		out.certificates[trusted.ID] = &trusted
	}
	return out
}

func sortedValues[T any](m map[identifier.Identifier]*T) []*T {
	ids := make([]identifier.Identifier, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return lookupSorted(m, ids)
}

func lookupSorted[T any](m map[identifier.Identifier]*T, ids []identifier.Identifier) []*T {
	sorted := append([]identifier.Identifier(nil), ids...)
	identifier.Sort(sorted)
	out := make([]*T, 0, len(sorted))
	for _, id := range sorted {
		if v, ok := m[id]; ok {
			out = append(out, v)
		}
	}
	return out
}
