package xcv

import (
	"time"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/condition"
	"github.com/georgepadayatti/adesvalidator/i18n"
	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/policy"
	"github.com/georgepadayatti/adesvalidator/token"
)

// CertificateResult is the outcome of validating one certificate.
type CertificateResult struct {
	Certificate identifier.Identifier
	Role        policy.Role
	Conclusion  *checks.Conclusion

	// Revocation is the statement that passed acceptance, nil when none did
	// or none was consulted.
	Revocation *token.RevocationToken
	// Tried lists the acceptance outcome of every candidate statement, in
	// the order they were tried.
	Tried []RevocationResult
}

// ValidateCertificate checks cert for role at time at.
func (v *Validator) ValidateCertificate(cert *token.CertificateToken, role policy.Role, at time.Time) *CertificateResult {
	res := &CertificateResult{Certificate: cert.ID, Role: role}
	constraints := v.policy.Role(role)
	id := cert.ID.String()
	when := i18n.Time(at)

	chain := checks.NewChain(v.printer).Add(
		v.check(policy.CertificateIntact, i18n.CertificateIntact,
			func() bool { return cert.SignatureValid },
			checks.Indeterminate, checks.CertificateChainGeneralFailure, id),
		v.check(policy.ValidityRange, i18n.ValidityRange,
			func() bool { return cert.ValidAt(at) },
			checks.Indeterminate, checks.OutOfBoundsNoPOE, id, when),
		v.check(policy.KeyUsage, i18n.KeyUsage,
			func() bool { return constraints.KeyUsage == 0 || cert.HasKeyUsage(constraints.KeyUsage) },
			checks.Indeterminate, checks.ChainConstraintsFailure, id, string(role)),
	)
	if constraints.Condition != nil {
		chain.Add(v.check(policy.CertificatePolicy, i18n.CertificatePolicy,
			func() bool { return condition.Evaluate(constraints.Condition, cert) },
			checks.Indeterminate, checks.ChainConstraintsFailure, id, constraints.Condition.String()))
	}

	revocations := v.graph.RevocationsFor(cert.ID)
	if v.revocationRequired(cert, constraints.Revocation, len(revocations)) {
		// Selection runs at most once, and only if a check needs it.
		var selected *Selection
		selection := func() *Selection {
			if selected == nil {
				selected = v.SelectRevocation(cert, at)
				res.Revocation = selected.Selected
				res.Tried = selected.Tried
			}
			return selected
		}
		revokedSub := checks.RevokedNoPOE
		if role.IsCA() {
			revokedSub = checks.RevokedCANoPOE
		}

		chain.Add(
			v.check(policy.RevocationPresent, i18n.RevocationPresent,
				func() bool { return len(revocations) > 0 },
				checks.Indeterminate, checks.TryLater, id),
			v.check(policy.RevocationAcceptable, i18n.RevocationAcceptable,
				func() bool { return selection().Selected != nil },
				checks.Indeterminate, checks.NoAcceptableRevocationFound, id, when),
			v.check(policy.NotRevoked, i18n.NotRevoked,
				func() bool {
					r := selection().Selected
					return r == nil || !r.RevokedAt(at)
				},
				checks.Indeterminate, revokedSub, id, when),
			v.check(policy.NotOnHold, i18n.NotOnHold,
				func() bool {
					r := selection().Selected
					return r == nil || !r.OnHoldAt(at)
				},
				checks.Indeterminate, checks.TryLater, id, when),
		)
	}

	chain.Add(v.check(policy.CertificateCryptoCheck, i18n.CertificateCryptoCheck,
		func() bool { return v.suite.IsAcceptable(cert.SignatureAlgorithm, cert.SignatureKeySize, at) },
		checks.Indeterminate, checks.CryptoConstraintsFailureNoPOE, id, when))

	res.Conclusion = chain.Execute()
	return res
}

// revocationRequired reports whether revocation data is consulted for cert.
func (v *Validator) revocationRequired(cert *token.CertificateToken, rule policy.RevocationRule, available int) bool {
	if cert.OCSPNoCheck {
		return false
	}
	switch rule {
	case policy.RevocationNoCheck:
		return false
	case policy.RevocationIfAvailable:
		return available > 0
	default:
		return true
	}
}
