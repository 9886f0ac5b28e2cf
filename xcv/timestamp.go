package xcv

import (
	"time"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/i18n"
	"github.com/georgepadayatti/adesvalidator/policy"
	"github.com/georgepadayatti/adesvalidator/token"
)

// AcceptTimestamp decides whether ts may serve as a proof of existence. The
// TSA chain is validated at the production time; the timestamp's own
// algorithm is judged at proven, the time ts itself is proven to exist.
func (v *Validator) AcceptTimestamp(ts *token.TimestampToken, proven time.Time) *checks.Conclusion {
	id := ts.ID.String()
	var tsa *ChainResult

	conclusion := checks.NewChain(v.printer).Add(
		v.check(policy.TimestampIntact, i18n.TimestampIntact,
			func() bool { return ts.SignatureValid },
			checks.Failed, checks.SigCryptoFailure, id),
		v.check(policy.TimestampSignerFound, i18n.TimestampSignerFound,
			func() bool {
				_, ok := v.graph.Certificate(ts.SigningCertificateID)
				return !ts.SigningCertificateID.IsZero() && ok
			},
			checks.Indeterminate, checks.NoSigningCertificateFound, id),
		v.check(policy.TimestampChainValid, i18n.TimestampChainValid,
			func() bool {
				res, err := v.ValidateChain(ts.SigningCertificateID, policy.RoleTimestamp, ts.ProductionTime)
				if err != nil {
					v.log.Debug("timestamp chain unavailable", "timestamp", ts.ID, "err", err)
					return false
				}
				tsa = res
				return res.Conclusion.IsPassed()
			},
			checks.Indeterminate, checks.CertificateChainGeneralFailure, id, i18n.Time(ts.ProductionTime)),
		v.check(policy.TimestampCryptoCheck, i18n.TimestampCryptoCheck,
			func() bool { return v.suite.IsAcceptable(ts.SignatureAlgorithm, ts.SignatureKeySize, proven) },
			checks.Indeterminate, checks.CryptoConstraintsFailureNoPOE, id, i18n.Time(proven)),
	).Execute()

	if tsa == nil {
		return conclusion
	}
	msgs := append(append([]checks.Message(nil), tsa.Conclusion.Messages...), conclusion.Messages...)
	return checks.NewConclusion(conclusion.Indication, conclusion.SubIndication, msgs...)
}
