// Package ltv implements past signature validation: the search for a
// control time at which a signature's certificate chain can be proven valid
// even though it no longer validates at the reference time.
//
// Candidate control times are the thisUpdate instants of the revocation
// statements about chain certificates and the proof-of-existence bounds of
// the run. They are tried latest first. A candidate is accepted when the
// chain validates at it and both the candidate and the signature's proof of
// existence fall inside the chain's validity window.
package ltv

import (
	"sort"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/i18n"
	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/logging"
	"github.com/georgepadayatti/adesvalidator/poe"
	"github.com/georgepadayatti/adesvalidator/policy"
	"github.com/georgepadayatti/adesvalidator/token"
	"github.com/georgepadayatti/adesvalidator/xcv"
)

// Options configure a PastValidation.
type Options struct {
	Validator *xcv.Validator
	Policy    *policy.Policy
	POE       *poe.Set
	Printer   *i18n.Printer
	Logger    log15.Logger
}

// PastValidation runs the control-time search for one validation run.
type PastValidation struct {
	xcv     *xcv.Validator
	policy  *policy.Policy
	poe     *poe.Set
	printer *i18n.Printer
	log     log15.Logger
}

// New creates a past validation over a run's certificate validator and
// proof-of-existence set.
func New(opts Options) *PastValidation {
	pol := opts.Policy
	if pol == nil {
		pol = policy.Default()
	}
	return &PastValidation{
		xcv:     opts.Validator,
		policy:  pol,
		poe:     opts.POE,
		printer: opts.Printer,
		log:     logging.OrNew(opts.Logger, "ltv"),
	}
}

// Candidate is one explored control time.
type Candidate struct {
	Time       time.Time
	Conclusion *checks.Conclusion
}

// Result is the outcome of past validation.
type Result struct {
	Conclusion *checks.Conclusion
	// ControlTime is nil when no candidate was accepted.
	ControlTime *time.Time
	// WindowEnd is the latest instant the chain can be proven valid at. It is
	// nil when nothing bounds the chain.
	WindowEnd *time.Time
	// Candidates are the explored control times, latest first.
	Candidates []Candidate
	// Chain is the validation of the chain at the control time.
	Chain *xcv.ChainResult
	// Revocations are the statements used at the control time.
	Revocations []identifier.Identifier
}

// Validate searches a control time for sig, whose validation at the
// reference time concluded present. Errors are reserved for integrity
// violations of the graph.
func (p *PastValidation) Validate(sig *token.SignatureToken, present *checks.Conclusion) (*Result, error) {
	g := p.xcv.Graph()
	path, err := g.Chain(sig.SigningCertificateID)
	if err != nil {
		return nil, err
	}
	leaf := path[0]
	reference := p.poe.CurrentTime()
	sigPOE := p.poe.Time(sig.ID)

	res := &Result{}
	end, bounded := p.windowEnd(sig, path)
	if bounded {
		res.WindowEnd = &end
	}

	for _, ct := range p.candidates(path, reference) {
		chainRes, err := p.xcv.ValidateChain(leaf.ID, policy.RoleSigning, ct)
		if err != nil {
			return nil, err
		}
		conclusion := p.candidateChain(ct, end, bounded, sigPOE, chainRes, present).Execute()
		res.Candidates = append(res.Candidates, Candidate{Time: ct, Conclusion: conclusion})
		if conclusion.IsPassed() {
			found := ct
			res.ControlTime = &found
			res.Chain = chainRes
			res.Revocations = chainRes.Revocations()
			break
		}
	}

	res.Conclusion = checks.NewChain(p.printer).Add(
		p.check(policy.ControlTimeFound, i18n.ControlTimeFound,
			func() bool { return res.ControlTime != nil },
			checks.Indeterminate, present.SubIndication, i18n.Time(reference)),
		p.check(policy.POENotBeforeIssuance, i18n.POENotBeforeIssuance,
			func() bool { return !sigPOE.Before(leaf.NotBefore) },
			checks.Failed, checks.NotYetValid, i18n.Time(sigPOE)),
	).Execute()

	p.log.Debug("past validation finished", "signature", sig.ID, "candidates", len(res.Candidates), "control", res.ControlTime, "conclusion", res.Conclusion)
	return res, nil
}

func (p *PastValidation) candidateChain(ct, end time.Time, bounded bool, sigPOE time.Time, chainRes *xcv.ChainResult, present *checks.Conclusion) *checks.Chain {
	within := func(t time.Time) bool { return !bounded || !t.After(end) }
	endText := "never"
	if bounded {
		endText = i18n.Time(end)
	}
	return checks.NewChain(p.printer).Add(
		p.check(policy.ControlTimeValid, i18n.ControlTimeValid,
			func() bool { return chainRes.Conclusion.IsPassed() },
			present.Indication, present.SubIndication, i18n.Time(ct)),
		p.check(policy.ValidityWindowOpen, i18n.ValidityWindowOpen,
			func() bool { return within(ct) },
			present.Indication, present.SubIndication, i18n.Time(ct), endText),
		p.check(policy.SignaturePOEInWindow, i18n.SignaturePOEInWindow,
			func() bool { return within(sigPOE) },
			present.Indication, present.SubIndication, i18n.Time(sigPOE), endText),
	)
}

func (p *PastValidation) check(name string, tags i18n.Pair, pred func() bool, ind checks.Indication, sub checks.SubIndication, args ...any) checks.Check {
	return checks.Check{
		Name:          name,
		Level:         p.policy.Level(name),
		Predicate:     pred,
		Success:       tags.OK,
		Failure:       tags.KO,
		Args:          args,
		Indication:    ind,
		SubIndication: sub,
	}
}

// candidates returns the distinct thisUpdate instants of statements about
// path certificates and the proof-of-existence bounds, earlier than
// reference, latest first.
func (p *PastValidation) candidates(path []*token.CertificateToken, reference time.Time) []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	add := func(t time.Time) {
		t = t.UTC()
		if !t.Before(reference) || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	for _, c := range path {
		for _, r := range p.xcv.Graph().RevocationsFor(c.ID) {
			add(r.ThisUpdate)
		}
	}
	for _, t := range p.poe.Bounds() {
		add(t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

// windowEnd returns the latest instant every non-anchor certificate of path
// and the signature algorithm are still reliable: the earliest of the
// certificates' expiry, their algorithms' expiry and their known revocation
// dates, and the signature algorithm's expiry.
func (p *PastValidation) windowEnd(sig *token.SignatureToken, path []*token.CertificateToken) (time.Time, bool) {
	var (
		end     time.Time
		bounded bool
	)
	lower := func(t time.Time) {
		if !bounded || t.Before(end) {
			end, bounded = t, true
		}
	}

	suite := p.xcv.Suite()
	for _, c := range path {
		if c.Trusted {
			continue
		}
		lower(c.NotAfter)
		if exp, ok := suite.ExpirationDate(c.SignatureAlgorithm, c.SignatureKeySize); ok && exp != nil {
			lower(*exp)
		}
		if revoked, ok := p.xcv.KnownRevocationDate(c); ok {
			lower(revoked)
		}
	}
	if exp, ok := suite.ExpirationDate(sig.SignatureAlgorithm, sig.SignatureKeySize); ok && exp != nil {
		lower(*exp)
	}
	return end, bounded
}
