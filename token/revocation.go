package token

import (
	"fmt"
	"time"

	"github.com/georgepadayatti/adesvalidator/identifier"
)

// RevocationKind distinguishes OCSP responses from CRL entries.
type RevocationKind int

const (
	RevocationOCSP RevocationKind = iota
	RevocationCRL
)

// String returns the string representation of the kind.
func (k RevocationKind) String() string {
	switch k {
	case RevocationOCSP:
		return "OCSP"
	case RevocationCRL:
		return "CRL"
	default:
		return fmt.Sprintf("RevocationKind(%d)", int(k))
	}
}

// RevocationStatus represents the certificate status a statement asserts.
type RevocationStatus int

const (
	StatusGood RevocationStatus = iota
	StatusRevoked
	StatusUnknown
)

// String returns the string representation of a revocation status.
func (s RevocationStatus) String() string {
	switch s {
	case StatusGood:
		return "good"
	case StatusRevoked:
		return "revoked"
	case StatusUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("RevocationStatus(%d)", int(s))
	}
}

// RevocationReason represents the reason for certificate revocation.
type RevocationReason int

const (
	ReasonUnspecified          RevocationReason = 0
	ReasonKeyCompromise        RevocationReason = 1
	ReasonCACompromise         RevocationReason = 2
	ReasonAffiliationChanged   RevocationReason = 3
	ReasonSuperseded           RevocationReason = 4
	ReasonCessationOfOperation RevocationReason = 5
	ReasonCertificateHold      RevocationReason = 6
	ReasonRemoveFromCRL        RevocationReason = 8
	ReasonPrivilegeWithdrawn   RevocationReason = 9
	ReasonAACompromise         RevocationReason = 10
)

// String returns the string representation of a revocation reason.
func (r RevocationReason) String() string {
	switch r {
	case ReasonUnspecified:
		return "unspecified"
	case ReasonKeyCompromise:
		return "keyCompromise"
	case ReasonCACompromise:
		return "cACompromise"
	case ReasonAffiliationChanged:
		return "affiliationChanged"
	case ReasonSuperseded:
		return "superseded"
	case ReasonCessationOfOperation:
		return "cessationOfOperation"
	case ReasonCertificateHold:
		return "certificateHold"
	case ReasonRemoveFromCRL:
		return "removeFromCRL"
	case ReasonPrivilegeWithdrawn:
		return "privilegeWithdrawn"
	case ReasonAACompromise:
		return "aACompromise"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// ParseRevocationReason parses the output of RevocationReason.String.
func ParseRevocationReason(s string) (RevocationReason, error) {
	for _, r := range []RevocationReason{
		ReasonUnspecified, ReasonKeyCompromise, ReasonCACompromise,
		ReasonAffiliationChanged, ReasonSuperseded, ReasonCessationOfOperation,
		ReasonCertificateHold, ReasonRemoveFromCRL, ReasonPrivilegeWithdrawn,
		ReasonAACompromise,
	} {
		if r.String() == s {
			return r, nil
		}
	}
	return ReasonUnspecified, fmt.Errorf("unknown revocation reason %q", s)
}

// RevocationToken is one revocation statement about one certificate.
type RevocationToken struct {
	ID   identifier.Identifier
	Kind RevocationKind

	// TargetID is the certificate the statement is about and IssuerID the
	// issuer of that certificate.
	TargetID identifier.Identifier
	IssuerID identifier.Identifier

	ProductionTime time.Time
	ThisUpdate     time.Time
	NextUpdate     *time.Time

	Status         RevocationStatus
	RevocationDate *time.Time
	Reason         RevocationReason

	SigningCertificateID identifier.Identifier
	SignatureAlgorithm   SignatureAlgorithm
	SignatureKeySize     int
	SignatureValid       bool

	// NonceMatch is nil when no nonce was requested.
	NonceMatch *bool
	// ResponderMatch reports whether the OCSP responder ID names the
	// signing certificate.
	ResponderMatch bool

	// ExpiredCertsOnCRL is the CRL extension stating since when expired
	// certificates are retained on the list.
	ExpiredCertsOnCRL *time.Time
}

// FreshnessEnd returns the end of the period the statement speaks for:
// nextUpdate when present, thisUpdate plus maxAge otherwise.
func (r *RevocationToken) FreshnessEnd(maxAge time.Duration) time.Time {
	if r.NextUpdate != nil {
		return *r.NextUpdate
	}
	return r.ThisUpdate.Add(maxAge)
}

// RevokedSince returns the revocation date for revoked statements. A revoked
// statement without a date is taken as revoked since thisUpdate.
func (r *RevocationToken) RevokedSince() (time.Time, bool) {
	if r.Status != StatusRevoked {
		return time.Time{}, false
	}
	if r.RevocationDate != nil {
		return *r.RevocationDate, true
	}
	return r.ThisUpdate, true
}

// OnHold reports whether the statement suspends rather than revokes.
func (r *RevocationToken) OnHold() bool {
	return r.Status == StatusRevoked && r.Reason == ReasonCertificateHold
}

// RevokedAt reports whether the statement says the target is permanently
// revoked at t.
func (r *RevocationToken) RevokedAt(t time.Time) bool {
	if r.OnHold() {
		return false
	}
	since, ok := r.RevokedSince()
	return ok && !since.After(t)
}

// OnHoldAt reports whether the statement says the target is suspended at t.
func (r *RevocationToken) OnHoldAt(t time.Time) bool {
	if !r.OnHold() {
		return false
	}
	since, _ := r.RevokedSince()
	return !since.After(t)
}
