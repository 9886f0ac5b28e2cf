package token

import (
	"crypto/x509"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgepadayatti/adesvalidator/identifier"
)

func certID(name string) identifier.Identifier {
	return identifier.Identify([]byte(name), identifier.KindCertificate)
}

func newCert(name, issuer string) *CertificateToken {
	c := &CertificateToken{
		ID:        certID(name),
		Subject:   "CN=" + name,
		NotBefore: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if issuer != "" {
		c.IssuerID = certID(issuer)
	}
	return c
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestChainLeafFirstEndsAtTrustedRoot(t *testing.T) {
	g := NewGraph()
	root := newCert("root", "")
	root.Trusted = true
	g.AddCertificate(root)
	g.AddCertificate(newCert("ca", "root"))
	g.AddCertificate(newCert("leaf", "ca"))

	chain, err := g.Chain(certID("leaf"))
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, certID("leaf"), chain[0].ID)
	assert.Equal(t, certID("ca"), chain[1].ID)
	assert.Equal(t, certID("root"), chain[2].ID)
}

func TestChainStopsAtTrustedIntermediate(t *testing.T) {
	g := NewGraph()
	ca := newCert("ca", "missing-root")
	ca.Trusted = true
	g.AddCertificate(ca)
	g.AddCertificate(newCert("leaf", "ca"))

	chain, err := g.Chain(certID("leaf"))
	require.NoError(t, err)
	assert.Len(t, chain, 2)
}

func TestChainDanglingIssuerIsIntegrityError(t *testing.T) {
	g := NewGraph()
	g.AddCertificate(newCert("leaf", "ghost"))

	_, err := g.Chain(certID("leaf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGraphIntegrity))

	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, certID("leaf"), integrity.Token)

	assert.ErrorIs(t, g.Validate(), ErrGraphIntegrity)
}

func TestChainIssuerLoopIsIntegrityError(t *testing.T) {
	g := NewGraph()
	g.AddCertificate(newCert("a", "b"))
	g.AddCertificate(newCert("b", "a"))

	_, err := g.Chain(certID("a"))
	assert.ErrorIs(t, err, ErrGraphIntegrity)
}

func TestChainUnknownCertificate(t *testing.T) {
	_, err := NewGraph().Chain(certID("nope"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrGraphIntegrity))
}

func TestAddDeduplicatesByIdentifier(t *testing.T) {
	g := NewGraph()
	first := newCert("leaf", "")
	second := newCert("leaf", "")
	second.Subject = "CN=other"

	assert.True(t, g.AddCertificate(first))
	assert.False(t, g.AddCertificate(second))

	got, ok := g.Certificate(certID("leaf"))
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestRevocationsForAndCoverageIndexes(t *testing.T) {
	g := NewGraph()
	target := certID("leaf")
	for _, name := range []string{"r2", "r1", "r3"} {
		g.AddRevocation(&RevocationToken{
			ID:       identifier.Identify([]byte(name), identifier.KindRevocation),
			TargetID: target,
		})
	}
	revs := g.RevocationsFor(target)
	require.Len(t, revs, 3)
	for i := 1; i < len(revs); i++ {
		assert.True(t, identifier.Less(revs[i-1].ID, revs[i].ID))
	}
	assert.Empty(t, g.RevocationsFor(certID("other")))

	sig := identifier.Identify([]byte("sig"), identifier.KindSignature)
	ts := &TimestampToken{
		ID:      identifier.Identify([]byte("ts"), identifier.KindTimestamp),
		Covered: []identifier.Identifier{sig, sig},
	}
	g.AddTimestamp(ts)
	covering := g.CoveringTimestamps(sig)
	require.Len(t, covering, 1)
	assert.True(t, covering[0].Covers(sig))
}

func TestWithTrustAnchorsLeavesReceiverUntouched(t *testing.T) {
	g := NewGraph()
	root := newCert("root", "")
	g.AddCertificate(root)

	anchored := g.WithTrustAnchors(root)
	got, _ := anchored.Certificate(root.ID)
	assert.True(t, got.Trusted)

	orig, _ := g.Certificate(root.ID)
	assert.False(t, orig.Trusted)
	assert.False(t, root.Trusted)
}

func TestRevocationTimeHelpers(t *testing.T) {
	next := date(2019, 5, 8)
	revoked := date(2021, 1, 1)

	good := &RevocationToken{ThisUpdate: date(2019, 5, 1), NextUpdate: &next}
	assert.Equal(t, next, good.FreshnessEnd(24*time.Hour))
	assert.False(t, good.RevokedAt(date(2030, 1, 1)))

	crl := &RevocationToken{
		ThisUpdate:     date(2022, 1, 1),
		Status:         StatusRevoked,
		RevocationDate: &revoked,
		Reason:         ReasonKeyCompromise,
	}
	assert.Equal(t, date(2022, 1, 2), crl.FreshnessEnd(24*time.Hour))
	assert.False(t, crl.RevokedAt(date(2020, 12, 31)))
	assert.True(t, crl.RevokedAt(revoked))
	assert.False(t, crl.OnHoldAt(revoked))

	hold := &RevocationToken{
		ThisUpdate:     date(2022, 1, 1),
		Status:         StatusRevoked,
		RevocationDate: &revoked,
		Reason:         ReasonCertificateHold,
	}
	assert.False(t, hold.RevokedAt(date(2022, 1, 1)))
	assert.True(t, hold.OnHoldAt(date(2022, 1, 1)))

	undated := &RevocationToken{ThisUpdate: date(2022, 3, 1), Status: StatusRevoked}
	since, ok := undated.RevokedSince()
	require.True(t, ok)
	assert.Equal(t, date(2022, 3, 1), since)
}

func TestParseRevocationReason(t *testing.T) {
	r, err := ParseRevocationReason("keyCompromise")
	require.NoError(t, err)
	assert.Equal(t, ReasonKeyCompromise, r)

	_, err = ParseRevocationReason("bored")
	assert.Error(t, err)
}

func TestCertificateHelpers(t *testing.T) {
	c := newCert("leaf", "ca")
	c.KeyUsage = x509.KeyUsageDigitalSignature
	c.Policies = []string{"0.4.0.194112.1.2"}

	assert.False(t, c.IsSelfSigned())
	assert.True(t, newCert("root", "").IsSelfSigned())
	assert.True(t, c.ValidAt(c.NotAfter))
	assert.False(t, c.ValidAt(c.NotAfter.Add(time.Second)))
	assert.True(t, c.HasKeyUsage(x509.KeyUsageCertSign, x509.KeyUsageDigitalSignature))
	assert.False(t, c.HasKeyUsage(x509.KeyUsageCertSign))
	assert.True(t, c.HasPolicy("0.4.0.194112.1.2"))
}

func TestRegistryInternsConcurrently(t *testing.T) {
	reg, err := NewRegistry(16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*CertificateToken, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = reg.Intern(newCert("shared", ""))
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, 1, reg.Len())

	got, ok := reg.Lookup(certID("shared"))
	require.True(t, ok)
	assert.Same(t, results[0], got)
}
