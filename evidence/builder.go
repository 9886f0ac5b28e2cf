// Package evidence converts parsed X.509 certificates, OCSP responses and
// CRLs into the tokens of a diagnostic graph.
//
// The adapters perform the bit-level signature checks once and record the
// outcome on the token, so that the validation core never touches DER.
package evidence

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/inconshreveable/log15"

	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/logging"
	"github.com/georgepadayatti/adesvalidator/token"
)

// Errors returned by the adapters.
var (
	ErrNoIssuer       = errors.New("issuer not found")
	ErrSerialMismatch = errors.New("revocation statement is about another certificate")
	ErrNoCertFound    = errors.New("no certificate found in data")
)

// Builder creates tokens. Certificates are interned in a registry shared
// between builders, so the same certificate yields the same token.
type Builder struct {
	registry *token.Registry
	log      log15.Logger
}

// NewBuilder creates a builder over registry. A nil registry gets a private
// one of the default size.
func NewBuilder(registry *token.Registry, logger log15.Logger) *Builder {
	if registry == nil {
		registry, _ = token.NewRegistry(token.DefaultRegistrySize)
	}
	return &Builder{registry: registry, log: logging.OrNew(logger, "evidence")}
}

// CertificateID returns the identifier of a certificate.
func CertificateID(cert *x509.Certificate) identifier.Identifier {
	return identifier.Identify(cert.Raw, identifier.KindCertificate)
}

// Certificate converts cert. issuer is the certificate that signed it; nil
// means cert is treated as self-issued.
func (b *Builder) Certificate(cert, issuer *x509.Certificate) *token.CertificateToken {
	id := CertificateID(cert)
	selfIssued := issuer == nil || bytes.Equal(issuer.Raw, cert.Raw)
	var issuerID identifier.Identifier
	if !selfIssued {
		issuerID = CertificateID(issuer)
	}
	cached, known := b.registry.Lookup(id)
	if known && cached.IssuerID == issuerID {
		return cached
	}

	t := &token.CertificateToken{
		ID:                 id,
		IssuerID:           issuerID,
		Subject:            cert.Subject.String(),
		SerialNumber:       cert.SerialNumber.String(),
		NotBefore:          cert.NotBefore.UTC(),
		NotAfter:           cert.NotAfter.UTC(),
		PublicKey:          token.PublicKeyInfo{Algorithm: cert.PublicKeyAlgorithm.String(), Size: PublicKeySize(cert.PublicKey)},
		SignatureAlgorithm: SignatureAlgorithm(cert.SignatureAlgorithm),
		KeyUsage:           cert.KeyUsage,
		ExtKeyUsage:        extKeyUsages(cert),
		CA:                 cert.BasicConstraintsValid && cert.IsCA,
		Policies:           policies(cert),
		QCStatements:       qcStatements(cert),
		OCSPNoCheck:        hasOCSPNoCheck(cert),
	}

	if selfIssued {
		t.SignatureKeySize = t.PublicKey.Size
		t.SignatureValid = cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
	} else {
		t.SignatureKeySize = PublicKeySize(issuer.PublicKey)
		t.SignatureValid = cert.CheckSignatureFrom(issuer) == nil
	}
	if !t.SignatureValid {
		b.log.Debug("certificate signature does not verify", "cert", id, "subject", t.Subject)
	}

	// A registered token resolved against another issuer stays registered.
	if known {
		return t
	}
	return b.registry.Intern(t)
}

// Chain converts certs and anchors, resolving each certificate's issuer among
// both sets by subject and signature. Anchor tokens are marked trusted.
// Certificates whose issuer is missing are returned with ErrNoIssuer joined
// into the error; their tokens are still produced as self-issued.
func (b *Builder) Chain(certs, anchors []*x509.Certificate) ([]*token.CertificateToken, error) {
	pool := append(append([]*x509.Certificate(nil), certs...), anchors...)

	var errs []error
	out := make([]*token.CertificateToken, 0, len(pool))
	for _, cert := range certs {
		issuer := findIssuer(cert, pool)
		if issuer == nil && !isSelfIssued(cert) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoIssuer, cert.Subject))
		}
		out = append(out, b.Certificate(cert, issuer))
	}
	for _, anchor := range anchors {
		trusted := *b.Certificate(anchor, findIssuer(anchor, pool))
		trusted.Trusted = true
		out = append(out, &trusted)
	}
	return out, errors.Join(errs...)
}

func isSelfIssued(cert *x509.Certificate) bool {
	return bytes.Equal(cert.RawSubject, cert.RawIssuer)
}

// findIssuer returns the certificate of pool that signed cert. A
// self-issued certificate is its own issuer and gives nil.
func findIssuer(cert *x509.Certificate, pool []*x509.Certificate) *x509.Certificate {
	if isSelfIssued(cert) {
		return nil
	}
	for _, candidate := range pool {
		if candidate == cert || !bytes.Equal(candidate.RawSubject, cert.RawIssuer) {
			continue
		}
		if cert.CheckSignatureFrom(candidate) == nil {
			return candidate
		}
	}
	return nil
}
