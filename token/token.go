// Package token models the evidence a signature validation reasons about:
// certificates, revocation statements, timestamps and the signature itself,
// linked into a diagnostic graph by content-derived identifiers.
//
// Tokens are plain values. Once added to a Graph they must not be modified.
package token

import (
	"crypto/x509"
	"slices"
	"time"

	"github.com/georgepadayatti/adesvalidator/identifier"
)

// SignatureAlgorithm names the digest and encryption algorithms of a signature.
type SignatureAlgorithm struct {
	Digest     string `yaml:"digest" json:"digest"`
	Encryption string `yaml:"encryption" json:"encryption"`
}

// IsZero reports whether no algorithm is recorded.
func (a SignatureAlgorithm) IsZero() bool {
	return a.Digest == "" && a.Encryption == ""
}

func (a SignatureAlgorithm) String() string {
	if a.IsZero() {
		return "unknown"
	}
	return a.Digest + "with" + a.Encryption
}

// PublicKeyInfo describes a certificate's subject public key.
type PublicKeyInfo struct {
	Algorithm string
	Size      int
}

// CertificateToken is a certificate as seen by the validation core.
type CertificateToken struct {
	ID identifier.Identifier
	// IssuerID is zero only for self-signed certificates.
	IssuerID     identifier.Identifier
	Subject      string
	SerialNumber string
	NotBefore    time.Time
	NotAfter     time.Time
	PublicKey    PublicKeyInfo

	// SignatureAlgorithm and SignatureKeySize describe the issuer's signature
	// over this certificate.
	SignatureAlgorithm SignatureAlgorithm
	SignatureKeySize   int

	KeyUsage     x509.KeyUsage
	ExtKeyUsage  []string
	CA           bool
	Trusted      bool
	Policies     []string
	QCStatements []string
	OCSPNoCheck  bool

	// SignatureValid is the outcome of verifying the issuer's signature.
	SignatureValid bool
}

// IsSelfSigned reports whether the certificate names itself as issuer.
func (c *CertificateToken) IsSelfSigned() bool {
	return c.IssuerID.IsZero() || c.IssuerID == c.ID
}

// ValidAt reports whether t lies inside the validity period, bounds included.
func (c *CertificateToken) ValidAt(t time.Time) bool {
	return !t.Before(c.NotBefore) && !t.After(c.NotAfter)
}

// HasKeyUsage reports whether any of the given key usage bits is asserted.
func (c *CertificateToken) HasKeyUsage(usages ...x509.KeyUsage) bool {
	for _, u := range usages {
		if c.KeyUsage&u != 0 {
			return true
		}
	}
	return false
}

// HasPolicy reports whether the certificate asserts the policy OID.
func (c *CertificateToken) HasPolicy(oid string) bool {
	return slices.Contains(c.Policies, oid)
}

// HasQCStatement reports whether the certificate carries the QC statement OID.
func (c *CertificateToken) HasQCStatement(oid string) bool {
	return slices.Contains(c.QCStatements, oid)
}

// HasExtKeyUsage reports whether the extended key usage name is present.
func (c *CertificateToken) HasExtKeyUsage(name string) bool {
	return slices.Contains(c.ExtKeyUsage, name)
}

// TimestampToken is a time-stamp token covering other tokens.
type TimestampToken struct {
	ID                   identifier.Identifier
	ProductionTime       time.Time
	SigningCertificateID identifier.Identifier
	Covered              []identifier.Identifier
	SignatureAlgorithm   SignatureAlgorithm
	SignatureKeySize     int

	// SignatureValid is true when both the message imprint and the
	// timestamp signature verified.
	SignatureValid bool
}

// Covers reports whether id is among the covered tokens.
func (t *TimestampToken) Covers(id identifier.Identifier) bool {
	return slices.Contains(t.Covered, id)
}

// SignatureToken is the signature under validation.
type SignatureToken struct {
	ID                   identifier.Identifier
	SigningCertificateID identifier.Identifier
	SignatureAlgorithm   SignatureAlgorithm
	SignatureKeySize     int
	SignatureValid       bool
	ClaimedSigningTime   *time.Time
}
