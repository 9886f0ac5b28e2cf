// Package validation validates signatures against an evidence graph. It runs
// signature acceptance and certificate validation at the reference time and,
// when the outcome may be repaired by older evidence, past validation.
package validation

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/inconshreveable/log15"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"golang.org/x/text/language"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/config"
	"github.com/georgepadayatti/adesvalidator/cryptosuite"
	"github.com/georgepadayatti/adesvalidator/evidence"
	"github.com/georgepadayatti/adesvalidator/i18n"
	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/logging"
	"github.com/georgepadayatti/adesvalidator/ltv"
	"github.com/georgepadayatti/adesvalidator/poe"
	"github.com/georgepadayatti/adesvalidator/policy"
	"github.com/georgepadayatti/adesvalidator/token"
	"github.com/georgepadayatti/adesvalidator/xcv"
)

// Config configures a Validator.
type Config struct {
	// Policy defaults to policy.Default().
	Policy *policy.Policy
	// Clock supplies the reference time of ValidateSignature.
	Clock  clockwork.Clock
	Logger log15.Logger
	// Language selects the message language. Messages defaults to the
	// built-in English catalogue.
	Language language.Tag
	Messages *i18n.Provider
	// Anchors are trusted in every validated graph.
	Anchors []*token.CertificateToken
	// Workers bounds the parallelism of ValidateBatch. Zero means one worker
	// per CPU.
	Workers int
}

// Validator validates signatures. Its configuration is shared read-only by
// concurrent runs.
type Validator struct {
	policy   *policy.Policy
	clock    clockwork.Clock
	log      log15.Logger
	language language.Tag
	messages *i18n.Provider
	anchors  []*token.CertificateToken
	workers  int
	closer   io.Closer
}

// New creates a validator.
func New(cfg Config) *Validator {
	v := &Validator{
		policy:   cfg.Policy,
		clock:    cfg.Clock,
		log:      logging.OrNew(cfg.Logger, "validation"),
		language: cfg.Language,
		messages: cfg.Messages,
		anchors:  cfg.Anchors,
		workers:  cfg.Workers,
	}
	if v.policy == nil {
		v.policy = policy.Default()
	}
	if v.clock == nil {
		v.clock = clockwork.NewRealClock()
	}
	if v.language == language.Und {
		v.language = language.English
	}
	if v.messages == nil {
		v.messages = i18n.NewProvider()
	}
	return v
}

// NewFromConfig creates a validator from the application configuration. It
// installs the configured log handler; Close releases the log file.
func NewFromConfig(cfg *config.AppConfig) (*Validator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	closer, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, errors.Wrap(err, "set up logging")
	}
	v, err := fromConfig(cfg.Validation)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	v.closer = closer
	return v, nil
}

func fromConfig(vc *config.ValidationConfig) (*Validator, error) {
	if vc == nil {
		vc = &config.ValidationConfig{}
		vc.SetDefaults()
	}
	log := logging.New("validation")

	pol := policy.Default()
	if vc.PolicyFile != "" {
		loaded, err := policy.Load(vc.PolicyFile)
		if err != nil {
			return nil, err
		}
		pol = loaded
	}
	if vc.CryptoSuiteFile != "" {
		suite, err := cryptosuite.Load(vc.CryptoSuiteFile)
		if err != nil {
			return nil, err
		}
		pol = pol.WithSuite(suite)
	}

	var anchors []*token.CertificateToken
	if len(vc.TrustAnchors) > 0 {
		registry, err := token.NewRegistry(vc.RegistrySize)
		if err != nil {
			return nil, errors.Wrap(err, "create certificate registry")
		}
		certs, err := evidence.LoadCertificates(vc.TrustAnchors...)
		if err != nil {
			return nil, errors.Wrap(err, "load trust anchors")
		}
		anchors, err = evidence.NewBuilder(registry, log).Chain(nil, certs)
		if err != nil {
			return nil, errors.Wrap(err, "build trust anchors")
		}
		log.Info("trust anchors loaded", "count", len(anchors))
	}

	return New(Config{
		Policy:   pol,
		Logger:   log,
		Language: vc.LanguageTag(),
		Anchors:  anchors,
		Workers:  vc.Workers,
	}), nil
}

// Close releases resources acquired by NewFromConfig.
func (v *Validator) Close() error {
	if v.closer == nil {
		return nil
	}
	return v.closer.Close()
}

// Policy returns the validation policy.
func (v *Validator) Policy() *policy.Policy {
	return v.policy
}

// Result is the outcome of validating one signature.
type Result struct {
	Signature     identifier.Identifier
	ReferenceTime time.Time
	Conclusion    *checks.Conclusion
	// Acceptance is the outcome of the signature acceptance checks.
	Acceptance *checks.Conclusion
	// ControlTime is set when past validation found one.
	ControlTime *time.Time
	// Chain is the certification path, leaf first.
	Chain []identifier.Identifier
	// Revocations are the statements the conclusion relies on.
	Revocations  []identifier.Identifier
	Certificates []*xcv.CertificateResult
	Past         *ltv.Result
	// Timestamps holds the acceptance outcome of every timestamp of the
	// graph. Only passing timestamps prove existence.
	Timestamps map[identifier.Identifier]*checks.Conclusion
}

// ValidateSignature validates the signature sigID of g at the clock's
// current time.
func (v *Validator) ValidateSignature(g *token.Graph, sigID identifier.Identifier) (*Result, error) {
	return v.ValidateSignatureAt(g, sigID, v.clock.Now())
}

// ValidateSignatureAt validates the signature sigID of g at reference time
// at. An evidence graph that violates its contract yields a FAILED result
// together with an error wrapping token.ErrGraphIntegrity.
func (v *Validator) ValidateSignatureAt(g *token.Graph, sigID identifier.Identifier, at time.Time) (*Result, error) {
	at = at.UTC()
	r := &run{
		Validator: v,
		log:       v.log.New("run", uuid.New().String(), "signature", sigID),
		printer:   v.messages.Printer(v.language),
	}
	return r.validate(g, sigID, at)
}

// run holds the state of one validation.
type run struct {
	*Validator
	log     log15.Logger
	printer *i18n.Printer
}

func (r *run) validate(g *token.Graph, sigID identifier.Identifier, at time.Time) (*Result, error) {
	sig, ok := g.Signature(sigID)
	if !ok {
		return nil, errors.Wrapf(token.ErrNotFound, "signature %s", sigID)
	}
	res := &Result{Signature: sigID, ReferenceTime: at}

	cv := xcv.New(xcv.Options{
		Graph:   g,
		Policy:  r.policy,
		Printer: r.printer,
		Logger:  r.log,
		Anchors: r.anchors,
	})
	// Configured anchors may complete chains the evidence leaves open.
	if err := cv.Graph().Validate(); err != nil {
		return r.integrityFailure(res, err)
	}
	proofs, err := poe.Extract(cv.Graph(), at, cv.AcceptTimestamp)
	if err != nil {
		return r.integrityFailure(res, err)
	}
	res.Timestamps = r.timestamps(cv.Graph(), proofs)
	r.log.Debug("proofs of existence extracted", "proven", proofs.Len())

	res.Acceptance = r.accept(cv, sig, at)
	if finished(res.Acceptance) {
		res.Conclusion = finalize(res.Acceptance)
		return r.done(res), nil
	}
	if _, ok := cv.Graph().Certificate(sig.SigningCertificateID); !ok {
		// Reached only when the policy downgrades sav.signing-certificate-found.
		missing := checks.NewConclusion(checks.Indeterminate, checks.NoSigningCertificateFound)
		res.Conclusion = finalize(merge(missing, res.Acceptance))
		return r.done(res), nil
	}

	chainRes, err := cv.ValidateChain(sig.SigningCertificateID, policy.RoleSigning, at)
	if err != nil {
		return r.integrityFailure(res, err)
	}
	res.record(chainRes)

	// A chain failure takes precedence over a time-sensitive acceptance one.
	present := chainRes.Conclusion
	if present.IsPassed() {
		present = res.Acceptance
	}
	present = merge(present, res.Acceptance, chainRes.Conclusion)
	if present.IsPassed() || !present.SubIndication.TimeSensitive() {
		res.Conclusion = finalize(present)
		return r.done(res), nil
	}

	r.log.Debug("reference time outcome is time sensitive", "conclusion", present)
	past, err := ltv.New(ltv.Options{
		Validator: cv,
		Policy:    r.policy,
		POE:       proofs,
		Printer:   r.printer,
		Logger:    r.log,
	}).Validate(sig, present)
	if err != nil {
		return r.integrityFailure(res, err)
	}
	res.Past = past
	res.Conclusion = past.Conclusion
	if past.ControlTime != nil {
		res.ControlTime = past.ControlTime
		res.record(past.Chain)
	}
	return r.done(res), nil
}

// accept runs the signature acceptance checks.
func (r *run) accept(cv *xcv.Validator, sig *token.SignatureToken, at time.Time) *checks.Conclusion {
	check := func(name string, tags i18n.Pair, pred func() bool, ind checks.Indication, sub checks.SubIndication, args ...any) checks.Check {
		return checks.Check{
			Name:          name,
			Level:         r.policy.Level(name),
			Predicate:     pred,
			Success:       tags.OK,
			Failure:       tags.KO,
			Args:          args,
			Indication:    ind,
			SubIndication: sub,
		}
	}
	id := sig.ID.String()
	return checks.NewChain(r.printer).Add(
		check(policy.SignatureIntact, i18n.SignatureIntact,
			func() bool { return sig.SignatureValid },
			checks.Failed, checks.SigCryptoFailure, id),
		check(policy.SigningCertificateFound, i18n.SigningCertificateFound,
			func() bool {
				if sig.SigningCertificateID.IsZero() {
					return false
				}
				_, ok := cv.Graph().Certificate(sig.SigningCertificateID)
				return ok
			},
			checks.Indeterminate, checks.NoSigningCertificateFound, id),
		check(policy.SignatureCryptoCheck, i18n.SignatureCryptoConstraint,
			func() bool { return cv.Suite().IsAcceptable(sig.SignatureAlgorithm, sig.SignatureKeySize, at) },
			checks.Indeterminate, checks.CryptoConstraintsFailureNoPOE,
			sig.SignatureAlgorithm.String(), sig.SignatureKeySize, i18n.Time(at)),
	).Execute()
}

// timestamps collects the acceptance outcomes recorded during extraction.
func (r *run) timestamps(g *token.Graph, proofs *poe.Set) map[identifier.Identifier]*checks.Conclusion {
	out := make(map[identifier.Identifier]*checks.Conclusion)
	for _, ts := range g.Timestamps() {
		if verdict, ok := proofs.Verdict(ts.ID); ok {
			out[ts.ID] = verdict
		}
	}
	for _, id := range proofs.Rejected() {
		r.log.Warn("timestamp refused as proof of existence", "timestamp", id, "conclusion", out[id])
	}
	return out
}

// finished reports whether an acceptance outcome ends the run before
// certificate validation.
func finished(c *checks.Conclusion) bool {
	return !c.IsPassed() && !c.SubIndication.TimeSensitive()
}

// merge returns the outcome of present with the messages of every part.
func merge(present *checks.Conclusion, parts ...*checks.Conclusion) *checks.Conclusion {
	var msgs []checks.Message
	for _, p := range parts {
		msgs = append(msgs, p.Messages...)
	}
	return checks.NewConclusion(present.Indication, present.SubIndication, msgs...)
}

// finalize turns missing evidence into a failure; other outcomes stand.
func finalize(c *checks.Conclusion) *checks.Conclusion {
	if c.SubIndication.Structural() {
		return checks.NewConclusion(checks.Failed, c.SubIndication, c.Messages...)
	}
	return c
}

func (res *Result) record(c *xcv.ChainResult) {
	res.Chain = c.Chain
	res.Certificates = c.Certificates
	res.Revocations = c.Revocations()
}

func (r *run) integrityFailure(res *Result, err error) (*Result, error) {
	r.log.Error("evidence graph is inconsistent", "err", err)
	res.Conclusion = checks.NewConclusion(checks.Failed, checks.EvidenceGraphFailure, checks.Message{
		Check: "graph.integrity",
		Level: checks.LevelFail,
		Text:  err.Error(),
	})
	return res, errors.Wrap(err, "validate signature")
}

func (r *run) done(res *Result) *Result {
	if res.ControlTime != nil {
		r.log.Info("signature validated", "conclusion", res.Conclusion, "control", *res.ControlTime)
	} else {
		r.log.Info("signature validated", "conclusion", res.Conclusion)
	}
	return res
}
