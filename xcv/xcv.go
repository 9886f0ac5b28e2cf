// Package xcv validates certificate chains and the revocation statements
// about their certificates at a reference time.
//
// Every certificate of a chain is put through its own chain of checks
// (validity range, key usage, revocation status, cryptographic strength).
// Revocation statements are accepted through a nested chain (RAC) before they
// may speak for a certificate.
package xcv

import (
	"time"

	"github.com/inconshreveable/log15"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/cryptosuite"
	"github.com/georgepadayatti/adesvalidator/i18n"
	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/logging"
	"github.com/georgepadayatti/adesvalidator/policy"
	"github.com/georgepadayatti/adesvalidator/token"
)

// Options configure a Validator.
type Options struct {
	Graph  *token.Graph
	Policy *policy.Policy
	// Suite overrides the policy's cryptographic suite when set.
	Suite   *cryptosuite.Suite
	Printer *i18n.Printer
	Logger  log15.Logger
	// Anchors are added to the graph as trusted certificates.
	Anchors []*token.CertificateToken
}

// Validator serves a single validation run. It is not safe for concurrent
// use.
type Validator struct {
	graph   *token.Graph
	policy  *policy.Policy
	suite   *cryptosuite.Suite
	printer *i18n.Printer
	log     log15.Logger

	// active holds the responders whose chain is being validated.
	active identifier.Set
}

// New creates a validator. A nil policy means policy.Default.
func New(opts Options) *Validator {
	pol := opts.Policy
	if pol == nil {
		pol = policy.Default()
	}
	suite := opts.Suite
	if suite == nil {
		suite = pol.Suite()
	}
	g := opts.Graph
	if g == nil {
		g = token.NewGraph()
	}
	if len(opts.Anchors) > 0 {
		g = g.WithTrustAnchors(opts.Anchors...)
	}
	return &Validator{
		graph:   g,
		policy:  pol,
		suite:   suite,
		printer: opts.Printer,
		log:     logging.OrNew(opts.Logger, "xcv"),
		active:  identifier.NewSet(),
	}
}

// Graph returns the graph the validator works on, anchors included.
func (v *Validator) Graph() *token.Graph {
	return v.graph
}

// Suite returns the cryptographic suite in use.
func (v *Validator) Suite() *cryptosuite.Suite {
	return v.suite
}

// check builds a check whose level comes from the policy.
func (v *Validator) check(name string, tags i18n.Pair, pred func() bool, ind checks.Indication, sub checks.SubIndication, args ...any) checks.Check {
	return checks.Check{
		Name:          name,
		Level:         v.policy.Level(name),
		Predicate:     pred,
		Success:       tags.OK,
		Failure:       tags.KO,
		Args:          args,
		Indication:    ind,
		SubIndication: sub,
	}
}

// ChainResult is the outcome of validating a certification path.
type ChainResult struct {
	// Chain lists the path, leaf first.
	Chain []identifier.Identifier
	// Certificates holds the per-certificate results from the anchor down,
	// up to the first one that did not pass.
	Certificates []*CertificateResult
	Conclusion   *checks.Conclusion
}

// Revocations returns the revocation statements selected along the chain.
func (r *ChainResult) Revocations() []identifier.Identifier {
	var out []identifier.Identifier
	for _, c := range r.Certificates {
		if c.Revocation != nil {
			out = append(out, c.Revocation.ID)
		}
	}
	return out
}

// ValidateChain validates the path of leafID at time at. The leaf is checked
// for role, every other certificate below the anchor as a CA. Errors are
// reserved for integrity violations and unknown certificates.
func (v *Validator) ValidateChain(leafID identifier.Identifier, role policy.Role, at time.Time) (*ChainResult, error) {
	path, err := v.graph.Chain(leafID)
	if err != nil {
		return nil, err
	}

	res := &ChainResult{Chain: make([]identifier.Identifier, len(path))}
	for i, c := range path {
		res.Chain[i] = c.ID
	}

	top := path[len(path)-1]
	anchored := checks.NewChain(v.printer).Add(
		v.check(policy.TrustAnchorReached, i18n.TrustAnchorReached,
			func() bool { return top.Trusted },
			checks.Indeterminate, checks.NoCertificateChainFound, leafID.String()),
	).Execute()
	messages := anchored.Messages
	if !anchored.IsPassed() {
		res.Conclusion = anchored
		v.log.Debug("chain does not reach a trust anchor", "leaf", leafID)
		return res, nil
	}

	for i := len(path) - 1; i >= 0; i-- {
		cert := path[i]
		if cert.Trusted {
			continue
		}
		certRole := policy.RoleCA
		if i == 0 {
			certRole = role
		}
		cr := v.ValidateCertificate(cert, certRole, at)
		res.Certificates = append(res.Certificates, cr)
		messages = append(messages, cr.Conclusion.Messages...)
		if !cr.Conclusion.IsPassed() {
			res.Conclusion = checks.NewConclusion(cr.Conclusion.Indication, cr.Conclusion.SubIndication, messages...)
			v.log.Debug("chain validation failed", "leaf", leafID, "cert", cert.ID, "at", at, "conclusion", res.Conclusion)
			return res, nil
		}
	}

	res.Conclusion = checks.NewConclusion(checks.Passed, checks.NoSubIndication, messages...)
	return res, nil
}
