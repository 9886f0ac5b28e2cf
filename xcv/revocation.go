package xcv

import (
	"crypto/x509"
	"sort"
	"time"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/i18n"
	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/policy"
	"github.com/georgepadayatti/adesvalidator/token"
)

// RevocationResult is the acceptance outcome of one revocation statement.
type RevocationResult struct {
	Revocation identifier.Identifier
	Conclusion *checks.Conclusion
}

// Selection is the outcome of choosing a revocation statement.
type Selection struct {
	// Selected is nil when no candidate passed acceptance.
	Selected *token.RevocationToken
	Tried    []RevocationResult
}

// SelectRevocation returns the most recent statement about cert that passes
// acceptance at time at. Candidates issued later than at, tolerance
// included, are not considered. Equal thisUpdate values are ordered by
// identifier.
func (v *Validator) SelectRevocation(cert *token.CertificateToken, at time.Time) *Selection {
	limit := at.Add(v.policy.Tolerance())
	var candidates []*token.RevocationToken
	for _, r := range v.graph.RevocationsFor(cert.ID) {
		if !r.ThisUpdate.After(limit) {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.ThisUpdate.Equal(b.ThisUpdate) {
			return a.ThisUpdate.After(b.ThisUpdate)
		}
		return identifier.Less(a.ID, b.ID)
	})

	sel := &Selection{}
	for _, r := range candidates {
		c := v.AcceptRevocation(cert, r, at)
		sel.Tried = append(sel.Tried, RevocationResult{Revocation: r.ID, Conclusion: c})
		if c.IsPassed() {
			sel.Selected = r
			break
		}
	}
	if sel.Selected == nil {
		v.log.Debug("no acceptable revocation data", "cert", cert.ID, "at", at, "candidates", len(candidates))
	}
	return sel
}

// AcceptRevocation runs the acceptance checks of rev as a statement about
// cert at time at.
func (v *Validator) AcceptRevocation(cert *token.CertificateToken, rev *token.RevocationToken, at time.Time) *checks.Conclusion {
	id := rev.ID.String()
	when := i18n.Time(at)
	tolerance := v.policy.Tolerance()
	rejected := checks.NoAcceptableRevocationFound

	chain := checks.NewChain(v.printer).Add(
		v.check(policy.RevocationTarget, i18n.RevocationTarget,
			func() bool { return rev.TargetID == cert.ID },
			checks.Indeterminate, rejected, id),
		v.check(policy.RevocationIntact, i18n.RevocationIntact,
			func() bool { return rev.SignatureValid },
			checks.Indeterminate, rejected, id),
		v.check(policy.RevocationIssuer, i18n.RevocationIssuer,
			func() bool { return v.authorizedSigner(cert, rev, at) },
			checks.Indeterminate, rejected, id),
	)
	if rev.Kind == token.RevocationOCSP {
		chain.Add(v.check(policy.RevocationResponderID, i18n.RevocationResponderID,
			func() bool { return rev.ResponderMatch },
			checks.Indeterminate, rejected, id))
		if rev.NonceMatch != nil {
			chain.Add(v.check(policy.RevocationNonce, i18n.RevocationNonce,
				func() bool { return *rev.NonceMatch },
				checks.Indeterminate, rejected, id))
		}
	}
	chain.Add(
		v.check(policy.RevocationStatusKnown, i18n.RevocationStatusKnown,
			func() bool { return rev.Status != token.StatusUnknown },
			checks.Indeterminate, rejected, id),
		v.check(policy.RevocationConsistent, i18n.RevocationConsistent,
			func() bool { return consistent(cert, rev) },
			checks.Indeterminate, rejected, id),
		v.check(policy.RevocationFresh, i18n.RevocationFresh,
			func() bool {
				end := rev.FreshnessEnd(v.policy.MaxFreshness())
				return !at.Before(rev.ThisUpdate.Add(-tolerance)) && !at.After(end.Add(tolerance))
			},
			checks.Indeterminate, rejected, id, when),
		v.check(policy.RevocationCryptoCheck, i18n.RevocationCryptoCheck,
			func() bool { return v.suite.IsAcceptable(rev.SignatureAlgorithm, rev.SignatureKeySize, at) },
			checks.Indeterminate, checks.CryptoConstraintsFailureNoPOE, id, when),
	)
	return chain.Execute()
}

// consistent reports whether rev was issued while cert was valid, or after
// expiry by a CRL that keeps expired certificates listed.
func consistent(cert *token.CertificateToken, rev *token.RevocationToken) bool {
	if rev.ThisUpdate.Before(cert.NotBefore) {
		return false
	}
	if !rev.ThisUpdate.After(cert.NotAfter) {
		return true
	}
	return rev.ExpiredCertsOnCRL != nil && !cert.NotAfter.Before(*rev.ExpiredCertsOnCRL)
}

// authorizedSigner reports whether rev is signed by cert's issuer, or by a
// delegated responder the issuer certified and whose own chain validates at
// time at.
func (v *Validator) authorizedSigner(cert *token.CertificateToken, rev *token.RevocationToken, at time.Time) bool {
	issuerID := cert.IssuerID
	if cert.IsSelfSigned() {
		issuerID = cert.ID
	}
	if rev.IssuerID != issuerID {
		return false
	}
	if rev.SigningCertificateID == issuerID {
		return true
	}

	signer, ok := v.graph.Certificate(rev.SigningCertificateID)
	if !ok || signer.IssuerID != issuerID {
		return false
	}
	switch rev.Kind {
	case token.RevocationOCSP:
		if !signer.HasExtKeyUsage("ocsp-signing") {
			return false
		}
	case token.RevocationCRL:
		if !signer.HasKeyUsage(x509.KeyUsageCRLSign) {
			return false
		}
	}

	// A responder may not take part in the validation of its own chain.
	if v.active.Contains(signer.ID) {
		v.log.Debug("responder chain is already being validated", "responder", signer.ID)
		return false
	}
	v.active.Add(signer.ID)
	defer delete(v.active, signer.ID)

	res, err := v.ValidateChain(signer.ID, policy.RoleResponder, at)
	if err != nil {
		v.log.Warn("responder chain could not be built", "responder", signer.ID, "err", err)
		return false
	}
	return res.Conclusion.IsPassed()
}

// KnownRevocationDate returns the earliest revocation date stated by an
// intact statement about cert. Suspensions do not count.
func (v *Validator) KnownRevocationDate(cert *token.CertificateToken) (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	for _, r := range v.graph.RevocationsFor(cert.ID) {
		if !r.SignatureValid || r.OnHold() {
			continue
		}
		since, ok := r.RevokedSince()
		if !ok {
			continue
		}
		if !found || since.Before(earliest) {
			earliest, found = since, true
		}
	}
	return earliest, found
}
