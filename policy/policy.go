// Package policy declares how strictly each validation check is applied.
//
// A Policy maps check names to severity levels, holds revocation freshness
// parameters and per-role constraints, and references the cryptographic
// suite used by every crypto check.
package policy

import (
	"crypto/x509"
	"fmt"
	"sort"
	"time"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/condition"
	"github.com/georgepadayatti/adesvalidator/cryptosuite"
)

// Check names.
const (
	SignatureIntact         = "sav.signature-intact"
	SigningCertificateFound = "sav.signing-certificate-found"
	SignatureCryptoCheck    = "sav.crypto-constraints"
	TrustAnchorReached      = "xcv.trust-anchor"
	CertificateIntact       = "xcv.signature-intact"
	ValidityRange           = "xcv.validity-range"
	KeyUsage                = "xcv.key-usage"
	CertificatePolicy       = "xcv.certificate-policy"
	RevocationPresent       = "xcv.revocation-present"
	RevocationAcceptable    = "xcv.revocation-acceptable"
	NotRevoked              = "xcv.not-revoked"
	NotOnHold               = "xcv.not-on-hold"
	CertificateCryptoCheck  = "xcv.crypto-constraints"
	RevocationTarget        = "rac.target-match"
	RevocationIntact        = "rac.signature-intact"
	RevocationIssuer        = "rac.issuer-match"
	RevocationResponderID   = "rac.responder-id-match"
	RevocationNonce         = "rac.nonce-match"
	RevocationStatusKnown   = "rac.status-known"
	RevocationConsistent    = "rac.consistent"
	RevocationFresh         = "rac.freshness"
	RevocationCryptoCheck   = "rac.crypto-constraints"
	TimestampIntact         = "tst.signature-intact"
	TimestampSignerFound    = "tst.signing-certificate-found"
	TimestampChainValid     = "tst.chain-valid"
	TimestampCryptoCheck    = "tst.crypto-constraints"
	ControlTimeValid        = "psv.control-time-valid"
	ValidityWindowOpen      = "psv.window-open"
	SignaturePOEInWindow    = "psv.signature-poe-in-window"
	ControlTimeFound        = "psv.control-time-found"
	POENotBeforeIssuance    = "psv.poe-not-before-issuance"
)

// defaultLevels lists every known check with its built-in level.
var defaultLevels = map[string]checks.Level{
	SignatureIntact:         checks.LevelFail,
	SigningCertificateFound: checks.LevelFail,
	SignatureCryptoCheck:    checks.LevelFail,
	TrustAnchorReached:      checks.LevelFail,
	CertificateIntact:       checks.LevelFail,
	ValidityRange:           checks.LevelFail,
	KeyUsage:                checks.LevelFail,
	CertificatePolicy:       checks.LevelFail,
	RevocationPresent:       checks.LevelFail,
	RevocationAcceptable:    checks.LevelFail,
	NotRevoked:              checks.LevelFail,
	NotOnHold:               checks.LevelFail,
	CertificateCryptoCheck:  checks.LevelFail,
	RevocationTarget:        checks.LevelFail,
	RevocationIntact:        checks.LevelFail,
	RevocationIssuer:        checks.LevelFail,
	RevocationResponderID:   checks.LevelFail,
	RevocationNonce:         checks.LevelWarn,
	RevocationStatusKnown:   checks.LevelFail,
	RevocationConsistent:    checks.LevelFail,
	RevocationFresh:         checks.LevelFail,
	RevocationCryptoCheck:   checks.LevelFail,
	TimestampIntact:         checks.LevelFail,
	TimestampSignerFound:    checks.LevelFail,
	TimestampChainValid:     checks.LevelFail,
	TimestampCryptoCheck:    checks.LevelFail,
	ControlTimeValid:        checks.LevelFail,
	ValidityWindowOpen:      checks.LevelFail,
	SignaturePOEInWindow:    checks.LevelFail,
	ControlTimeFound:        checks.LevelFail,
	POENotBeforeIssuance:    checks.LevelFail,
}

// CheckNames returns every known check name in sorted order.
func CheckNames() []string {
	names := make([]string, 0, len(defaultLevels))
	for name := range defaultLevels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsCheck reports whether name is a known check.
func IsCheck(name string) bool {
	_, ok := defaultLevels[name]
	return ok
}

// DefaultMaxFreshness is the freshness granted to revocation data without
// a nextUpdate.
var DefaultMaxFreshness = 30 * time.Minute

// DefaultTolerance is the clock skew allowed in time comparisons.
var DefaultTolerance = time.Second

// Role is the purpose a certificate is validated for.
type Role string

const (
	RoleSigning   Role = "signing"
	RoleCA        Role = "ca"
	RoleTimestamp Role = "timestamp"
	RoleResponder Role = "responder"
)

// Roles lists the roles in declaration order.
var Roles = []Role{RoleSigning, RoleCA, RoleTimestamp, RoleResponder}

// IsCA reports whether certificates in this role issue other certificates.
func (r Role) IsCA() bool {
	return r == RoleCA
}

// RevocationRule determines whether revocation data is consulted.
type RevocationRule int

const (
	// RevocationRequired requires acceptable revocation data.
	RevocationRequired RevocationRule = iota
	// RevocationIfAvailable checks revocation data only when some is present.
	RevocationIfAvailable
	// RevocationNoCheck never consults revocation data.
	RevocationNoCheck
)

var revocationRuleNames = map[RevocationRule]string{
	RevocationRequired:    "require",
	RevocationIfAvailable: "if-available",
	RevocationNoCheck:     "none",
}

func (r RevocationRule) String() string {
	if name, ok := revocationRuleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// ParseRevocationRule parses "require", "if-available" or "none".
func ParseRevocationRule(s string) (RevocationRule, error) {
	for r, name := range revocationRuleNames {
		if name == s {
			return r, nil
		}
	}
	return RevocationRequired, fmt.Errorf("'%s' is not a valid revocation mode", s)
}

// RoleConstraints are the requirements for certificates in one role.
type RoleConstraints struct {
	// KeyUsage is satisfied when any of its bits is asserted. Zero accepts
	// every certificate.
	KeyUsage x509.KeyUsage

	// KeyUsageNames are the canonical flag names behind KeyUsage.
	KeyUsageNames []string

	Revocation RevocationRule

	// Condition is an optional extra criterion, checked as
	// xcv.certificate-policy.
	Condition condition.Condition
}

// Policy is an immutable validation policy. It is safe for concurrent use.
type Policy struct {
	Name string

	levels       map[string]checks.Level
	maxFreshness time.Duration
	tolerance    time.Duration
	suite        *cryptosuite.Suite
	roles        map[Role]RoleConstraints
}

// Default returns the built-in policy: every check at its default level,
// the default cryptographic suite and revocation required for every role.
func Default() *Policy {
	return &Policy{
		Name:         "default",
		levels:       map[string]checks.Level{},
		maxFreshness: DefaultMaxFreshness,
		tolerance:    DefaultTolerance,
		suite:        cryptosuite.Default(),
		roles:        defaultRoles(),
	}
}

func defaultRoles() map[Role]RoleConstraints {
	return map[Role]RoleConstraints{
		RoleSigning: {
			KeyUsage:      x509.KeyUsageDigitalSignature | x509.KeyUsageContentCommitment,
			KeyUsageNames: []string{"digital-signature", "content-commitment"},
		},
		RoleCA: {
			KeyUsage:      x509.KeyUsageCertSign,
			KeyUsageNames: []string{"key-cert-sign"},
		},
		RoleTimestamp: {
			KeyUsage:      x509.KeyUsageDigitalSignature,
			KeyUsageNames: []string{"digital-signature"},
		},
		RoleResponder: {
			KeyUsage:      x509.KeyUsageDigitalSignature,
			KeyUsageNames: []string{"digital-signature"},
		},
	}
}

// Level returns the configured level of a check, or its default.
// Unknown names are treated as FAIL.
func (p *Policy) Level(name string) checks.Level {
	if l, ok := p.levels[name]; ok {
		return l
	}
	if l, ok := defaultLevels[name]; ok {
		return l
	}
	return checks.LevelFail
}

// MaxFreshness is the freshness of revocation data without nextUpdate.
func (p *Policy) MaxFreshness() time.Duration { return p.maxFreshness }

// Tolerance is the clock skew allowed in time comparisons.
func (p *Policy) Tolerance() time.Duration { return p.tolerance }

// Suite returns the cryptographic suite of the policy.
func (p *Policy) Suite() *cryptosuite.Suite { return p.suite }

// Role returns the constraints for a role.
func (p *Policy) Role(r Role) RoleConstraints {
	return p.roles[r]
}

// With returns a copy of the policy with the given levels overridden.
func (p *Policy) With(levels map[string]checks.Level) (*Policy, error) {
	cp := *p
	cp.levels = make(map[string]checks.Level, len(p.levels)+len(levels))
	for k, v := range p.levels {
		cp.levels[k] = v
	}
	for k, v := range levels {
		if !IsCheck(k) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCheck, k)
		}
		cp.levels[k] = v
	}
	return &cp, nil
}

// WithSuite returns a copy of the policy using another cryptographic suite.
func (p *Policy) WithSuite(s *cryptosuite.Suite) *Policy {
	cp := *p
	cp.suite = s
	return &cp
}
