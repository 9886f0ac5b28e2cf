package xcv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/cryptosuite"
	"github.com/georgepadayatti/adesvalidator/diagnostic"
	"github.com/georgepadayatti/adesvalidator/i18n"
	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/policy"
	"github.com/georgepadayatti/adesvalidator/token"
)

var now = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

const certificates = `
defaults:
  signature-algorithm: {digest: SHA256, encryption: ECDSA}
  key-size: 256
certificates:
  - {ref: root, ca: true, trusted: true, not-before: 2015-01-01T00:00:00Z, not-after: 2035-01-01T00:00:00Z, key-usage: [keyCertSign, cRLSign]}
  - {ref: ca, issuer: root, ca: true, not-before: 2020-01-01T00:00:00Z, not-after: 2030-01-01T00:00:00Z, key-usage: [keyCertSign, cRLSign]}
  - {ref: leaf, issuer: ca, not-before: 2023-01-01T00:00:00Z, not-after: 2025-01-01T00:00:00Z, key-usage: [nonRepudiation]}
  - {ref: forged, issuer: ca, signature-valid: false, not-before: 2023-01-01T00:00:00Z, not-after: 2025-01-01T00:00:00Z, key-usage: [digitalSignature]}
  - {ref: responder, issuer: ca, not-before: 2023-01-01T00:00:00Z, not-after: 2026-01-01T00:00:00Z, key-usage: [digitalSignature], ext-key-usage: [OCSPSigning], ocsp-no-check: true}
`

const (
	caCRL     = "  - {ref: ca-crl, kind: CRL, target: ca, this-update: 2024-06-01T00:00:00Z, next-update: 2024-06-08T00:00:00Z}\n"
	leafOCSP  = "  - {ref: leaf-ocsp, target: leaf, signer: responder, this-update: 2024-06-01T11:00:00Z, next-update: 2024-06-02T11:00:00Z}\n"
	leafStale = "  - {ref: leaf-stale, target: leaf, this-update: 2024-05-01T00:00:00Z, next-update: 2024-05-02T00:00:00Z}\n"
)

func load(t *testing.T, revocations ...string) *diagnostic.Document {
	t.Helper()
	src := certificates + "revocations:\n"
	for _, r := range revocations {
		src += r
	}
	doc, err := diagnostic.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func newValidator(doc *diagnostic.Document, pol *policy.Policy) *Validator {
	return New(Options{
		Graph:   doc.Graph,
		Policy:  pol,
		Printer: i18n.NewProvider().Printer(language.English),
	})
}

func certificate(t *testing.T, v *Validator, doc *diagnostic.Document, ref string) *token.CertificateToken {
	t.Helper()
	c, ok := v.Graph().Certificate(doc.MustID(ref))
	require.True(t, ok)
	return c
}

func TestValidateChainPassed(t *testing.T) {
	doc := load(t, caCRL, leafOCSP)
	v := newValidator(doc, nil)

	res, err := v.ValidateChain(doc.MustID("leaf"), policy.RoleSigning, now)
	require.NoError(t, err)
	assert.Equal(t, checks.Passed, res.Conclusion.Indication, res.Conclusion.String())
	assert.Equal(t, []identifier.Identifier{doc.MustID("leaf"), doc.MustID("ca"), doc.MustID("root")}, res.Chain)

	require.Len(t, res.Certificates, 2)
	assert.Equal(t, doc.MustID("ca"), res.Certificates[0].Certificate)
	assert.Equal(t, policy.RoleCA, res.Certificates[0].Role)
	assert.Equal(t, policy.RoleSigning, res.Certificates[1].Role)
	assert.Equal(t, []identifier.Identifier{doc.MustID("ca-crl"), doc.MustID("leaf-ocsp")}, res.Revocations())

	// Every executed check leaves a tagged message.
	for _, m := range res.Conclusion.Messages {
		assert.True(t, m.Passed, m.Check)
		assert.NotEmpty(t, m.Tag)
		assert.NotEmpty(t, m.Text)
	}
	assert.Empty(t, res.Conclusion.Warnings())
}

func TestValidateChainUnknownCertificate(t *testing.T) {
	doc := load(t)
	v := newValidator(doc, nil)
	_, err := v.ValidateChain(identifier.Identify([]byte("nobody"), identifier.KindCertificate), policy.RoleSigning, now)
	assert.ErrorIs(t, err, token.ErrNotFound)
}

func TestValidateChainNoTrustAnchor(t *testing.T) {
	doc, err := diagnostic.Parse([]byte(`
certificates:
  - {ref: root, ca: true, not-before: 2015-01-01T00:00:00Z, not-after: 2035-01-01T00:00:00Z}
  - {ref: leaf, issuer: root, not-before: 2023-01-01T00:00:00Z, not-after: 2025-01-01T00:00:00Z}
`))
	require.NoError(t, err)

	v := newValidator(doc, nil)
	res, err := v.ValidateChain(doc.MustID("leaf"), policy.RoleSigning, now)
	require.NoError(t, err)
	assert.Equal(t, "INDETERMINATE/NO_CERTIFICATE_CHAIN_FOUND", res.Conclusion.String())
	assert.Empty(t, res.Certificates)

	root, ok := doc.Graph.Certificate(doc.MustID("root"))
	require.True(t, ok)
	anchored := New(Options{Graph: doc.Graph, Anchors: []*token.CertificateToken{root}})
	res, err = anchored.ValidateChain(doc.MustID("leaf"), policy.RoleSigning, now)
	require.NoError(t, err)
	assert.NotEqual(t, checks.NoCertificateChainFound, res.Conclusion.SubIndication)
	assert.False(t, root.Trusted, "the caller's graph is left untouched")
}

func TestValidateCertificateFailures(t *testing.T) {
	doc := load(t, caCRL, leafOCSP)
	v := newValidator(doc, nil)

	tests := []struct {
		name string
		ref  string
		role policy.Role
		at   time.Time
		want string
	}{
		{"signature not intact", "forged", policy.RoleSigning, now, "INDETERMINATE/CERTIFICATE_CHAIN_GENERAL_FAILURE"},
		{"expired", "leaf", policy.RoleSigning, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), "INDETERMINATE/OUT_OF_BOUNDS_NO_POE"},
		{"not yet valid", "leaf", policy.RoleSigning, time.Date(2022, time.June, 1, 0, 0, 0, 0, time.UTC), "INDETERMINATE/OUT_OF_BOUNDS_NO_POE"},
		{"key usage", "leaf", policy.RoleCA, now, "INDETERMINATE/CHAIN_CONSTRAINTS_FAILURE"},
		{"stale revocation data", "leaf", policy.RoleSigning, time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC), "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.ValidateCertificate(certificate(t, v, doc, tt.ref), tt.role, tt.at)
			assert.Equal(t, tt.want, res.Conclusion.String())
			require.NotEmpty(t, res.Conclusion.Errors())
		})
	}
}

func TestValidateCertificateMissingRevocation(t *testing.T) {
	doc := load(t, caCRL)
	v := newValidator(doc, nil)

	res := v.ValidateCertificate(certificate(t, v, doc, "leaf"), policy.RoleSigning, now)
	assert.Equal(t, "INDETERMINATE/TRY_LATER", res.Conclusion.String())
	assert.Equal(t, policy.RevocationPresent, res.Conclusion.Errors()[0].Check)
	assert.Nil(t, res.Revocation)
	assert.Empty(t, res.Tried, "selection never ran")
}

func TestValidateCertificateRevoked(t *testing.T) {
	doc := load(t,
		"  - {ref: ca-crl, kind: CRL, target: ca, this-update: 2024-06-01T00:00:00Z, next-update: 2024-06-08T00:00:00Z, status: revoked, revocation-date: 2024-03-01T00:00:00Z, reason: cACompromise}\n",
		"  - {ref: leaf-ocsp, target: leaf, signer: responder, this-update: 2024-06-01T11:00:00Z, next-update: 2024-06-02T11:00:00Z, status: revoked, revocation-date: 2024-05-01T00:00:00Z, reason: keyCompromise}\n",
	)
	v := newValidator(doc, nil)

	res := v.ValidateCertificate(certificate(t, v, doc, "ca"), policy.RoleCA, now)
	assert.Equal(t, "INDETERMINATE/REVOKED_CA_NO_POE", res.Conclusion.String())
	require.NotNil(t, res.Revocation)
	assert.Equal(t, doc.MustID("ca-crl"), res.Revocation.ID)

	res = v.ValidateCertificate(certificate(t, v, doc, "leaf"), policy.RoleSigning, now)
	// The responder's chain runs through the revoked CA.
	assert.Equal(t, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND", res.Conclusion.String())

	// The only statement about the CA was issued later.
	res = v.ValidateCertificate(certificate(t, v, doc, "ca"), policy.RoleCA, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND", res.Conclusion.String())
}

func TestValidateCertificateRevokedLeaf(t *testing.T) {
	doc := load(t, caCRL,
		"  - {ref: leaf-ocsp, target: leaf, signer: responder, this-update: 2024-06-01T11:00:00Z, next-update: 2024-06-02T11:00:00Z, status: revoked, revocation-date: 2024-05-01T00:00:00Z}\n",
	)
	v := newValidator(doc, nil)

	res := v.ValidateCertificate(certificate(t, v, doc, "leaf"), policy.RoleSigning, now)
	assert.Equal(t, "INDETERMINATE/REVOKED_NO_POE", res.Conclusion.String())

	date, ok := v.KnownRevocationDate(certificate(t, v, doc, "leaf"))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), date)
	_, ok = v.KnownRevocationDate(certificate(t, v, doc, "ca"))
	assert.False(t, ok)
}

func TestValidateCertificateOnHold(t *testing.T) {
	doc := load(t, caCRL,
		"  - {ref: leaf-ocsp, target: leaf, signer: responder, this-update: 2024-06-01T11:00:00Z, next-update: 2024-06-02T11:00:00Z, status: revoked, revocation-date: 2024-05-01T00:00:00Z, reason: certificateHold}\n",
	)
	v := newValidator(doc, nil)

	leaf := certificate(t, v, doc, "leaf")
	res := v.ValidateCertificate(leaf, policy.RoleSigning, now)
	assert.Equal(t, "INDETERMINATE/TRY_LATER", res.Conclusion.String())
	assert.Equal(t, policy.NotOnHold, res.Conclusion.Errors()[0].Check)

	_, ok := v.KnownRevocationDate(leaf)
	assert.False(t, ok, "a suspension is not a revocation")
}

func TestValidateCertificateCrypto(t *testing.T) {
	doc := load(t, caCRL, leafOCSP)
	suite := cryptosuite.New("weak").AddDigest("SHA256", nil)
	expiry := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	suite.AddEncryption("ECDSA", 256, &expiry)

	v := New(Options{Graph: doc.Graph, Suite: suite})
	assert.Same(t, suite, v.Suite())

	res := v.ValidateCertificate(certificate(t, v, doc, "responder"), policy.RoleResponder, now)
	assert.Equal(t, "INDETERMINATE/CRYPTO_CONSTRAINTS_FAILURE_NO_POE", res.Conclusion.String())

	res = v.ValidateCertificate(certificate(t, v, doc, "responder"), policy.RoleResponder, expiry)
	assert.True(t, res.Conclusion.IsPassed(), res.Conclusion.String())
}

func TestValidateCertificateCondition(t *testing.T) {
	doc := load(t, caCRL, leafOCSP)
	pol, err := policy.Parse([]byte(`
roles:
  signing:
    condition: qc-statement(qc-compliance)
`))
	require.NoError(t, err)
	v := newValidator(doc, pol)

	res := v.ValidateCertificate(certificate(t, v, doc, "leaf"), policy.RoleSigning, now)
	assert.Equal(t, "INDETERMINATE/CHAIN_CONSTRAINTS_FAILURE", res.Conclusion.String())
	assert.Equal(t, policy.CertificatePolicy, res.Conclusion.Errors()[0].Check)

	lenient, err := pol.With(map[string]checks.Level{policy.CertificatePolicy: checks.LevelWarn})
	require.NoError(t, err)
	v = newValidator(doc, lenient)
	res = v.ValidateCertificate(certificate(t, v, doc, "leaf"), policy.RoleSigning, now)
	assert.True(t, res.Conclusion.IsPassed())
	require.Len(t, res.Conclusion.Warnings(), 1)
	assert.Equal(t, policy.CertificatePolicy, res.Conclusion.Warnings()[0].Check)
}

func TestValidateCertificateRevocationRules(t *testing.T) {
	doc := load(t, caCRL)
	pol, err := policy.Parse([]byte(`
roles:
  signing:
    revocation: none
  timestamp:
    revocation: if-available
    key-usage: [nonRepudiation, keyCertSign]
`))
	require.NoError(t, err)
	v := newValidator(doc, pol)
	leaf := certificate(t, v, doc, "leaf")

	res := v.ValidateCertificate(leaf, policy.RoleSigning, now)
	assert.True(t, res.Conclusion.IsPassed(), res.Conclusion.String())
	for _, m := range res.Conclusion.Messages {
		assert.NotEqual(t, policy.RevocationPresent, m.Check)
	}

	// Nothing is available for the leaf, so nothing is checked.
	res = v.ValidateCertificate(leaf, policy.RoleTimestamp, now)
	assert.Equal(t, checks.Passed, res.Conclusion.Indication)

	// Data is available for the CA, so it is checked.
	stale := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	res = v.ValidateCertificate(certificate(t, v, doc, "ca"), policy.RoleTimestamp, stale)
	assert.Equal(t, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND", res.Conclusion.String())
}

func TestValidateCertificateIgnoredCheck(t *testing.T) {
	doc := load(t, caCRL)
	pol, err := policy.Default().With(map[string]checks.Level{
		policy.RevocationPresent:    checks.LevelIgnore,
		policy.RevocationAcceptable: checks.LevelInform,
	})
	require.NoError(t, err)
	v := newValidator(doc, pol)

	res := v.ValidateCertificate(certificate(t, v, doc, "leaf"), policy.RoleSigning, now)
	assert.True(t, res.Conclusion.IsPassed(), res.Conclusion.String())
	require.Len(t, res.Conclusion.Infos(), 1)
	assert.Equal(t, policy.RevocationAcceptable, res.Conclusion.Infos()[0].Check)
}

func TestSelectRevocation(t *testing.T) {
	doc := load(t, caCRL, leafOCSP, leafStale,
		// Newest, but its signature does not verify.
		"  - {ref: leaf-forged, target: leaf, this-update: 2024-06-01T11:30:00Z, next-update: 2024-06-02T11:30:00Z, signature-valid: false}\n",
		// Issued after the validation time.
		"  - {ref: leaf-future, target: leaf, this-update: 2024-06-01T13:00:00Z, next-update: 2024-06-02T13:00:00Z}\n",
	)
	v := newValidator(doc, nil)

	sel := v.SelectRevocation(certificate(t, v, doc, "leaf"), now)
	require.NotNil(t, sel.Selected)
	assert.Equal(t, doc.MustID("leaf-ocsp"), sel.Selected.ID)
	require.Len(t, sel.Tried, 2)
	assert.Equal(t, doc.MustID("leaf-forged"), sel.Tried[0].Revocation)
	assert.Equal(t, policy.RevocationIntact, sel.Tried[0].Conclusion.Errors()[0].Check)
	assert.True(t, sel.Tried[1].Conclusion.IsPassed())
}

func TestSelectRevocationTieBreak(t *testing.T) {
	doc := load(t, caCRL,
		"  - {ref: first, target: leaf, this-update: 2024-06-01T11:00:00Z, next-update: 2024-06-02T11:00:00Z}\n",
		"  - {ref: second, target: leaf, this-update: 2024-06-01T11:00:00Z, next-update: 2024-06-02T11:00:00Z}\n",
	)
	v := newValidator(doc, nil)

	want := doc.MustID("first")
	if identifier.Less(doc.MustID("second"), want) {
		want = doc.MustID("second")
	}
	for i := 0; i < 3; i++ {
		sel := v.SelectRevocation(certificate(t, v, doc, "leaf"), now)
		require.NotNil(t, sel.Selected)
		assert.Equal(t, want, sel.Selected.ID)
	}
}

func TestSelectRevocationNone(t *testing.T) {
	doc := load(t, caCRL, leafStale)
	v := newValidator(doc, nil)

	sel := v.SelectRevocation(certificate(t, v, doc, "leaf"), now)
	assert.Nil(t, sel.Selected)
	require.Len(t, sel.Tried, 1)
	assert.Equal(t, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND", sel.Tried[0].Conclusion.String())
	assert.Equal(t, policy.RevocationFresh, sel.Tried[0].Conclusion.Errors()[0].Check)
}

func TestAcceptRevocation(t *testing.T) {
	doc := load(t, caCRL, leafOCSP,
		"  - {ref: wrong-issuer, target: leaf, issuer: root, this-update: 2024-06-01T11:00:00Z}\n",
		"  - {ref: no-eku, target: leaf, signer: forged, this-update: 2024-06-01T11:00:00Z}\n",
		"  - {ref: responder-id, target: leaf, responder-match: false, this-update: 2024-06-01T11:00:00Z}\n",
		"  - {ref: unknown, target: leaf, status: unknown, this-update: 2024-06-01T11:00:00Z}\n",
		"  - {ref: nonce, target: leaf, nonce-match: false, this-update: 2024-06-01T11:00:00Z, next-update: 2024-06-02T11:00:00Z}\n",
		"  - {ref: before-issuance, target: leaf, this-update: 2022-06-01T11:00:00Z}\n",
		"  - {ref: weak, target: leaf, this-update: 2024-06-01T11:00:00Z, next-update: 2024-06-02T11:00:00Z, signature-algorithm: {digest: SHA1, encryption: ECDSA}}\n",
		"  - {ref: no-next-update, target: leaf, this-update: 2024-06-01T11:00:00Z}\n",
	)
	v := newValidator(doc, nil)
	leaf := certificate(t, v, doc, "leaf")
	ca := certificate(t, v, doc, "ca")

	rev := func(ref string) *token.RevocationToken {
		r, ok := v.Graph().Revocation(doc.MustID(ref))
		require.True(t, ok)
		return r
	}

	tests := []struct {
		ref       string
		cert      *token.CertificateToken
		at        time.Time
		failing   string
		indicated string
	}{
		{"leaf-ocsp", ca, now, policy.RevocationTarget, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND"},
		{"wrong-issuer", leaf, now, policy.RevocationIssuer, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND"},
		{"no-eku", leaf, now, policy.RevocationIssuer, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND"},
		{"responder-id", leaf, now, policy.RevocationResponderID, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND"},
		{"unknown", leaf, now, policy.RevocationStatusKnown, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND"},
		{"before-issuance", leaf, now, policy.RevocationConsistent, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND"},
		{"weak", leaf, now, policy.RevocationCryptoCheck, "INDETERMINATE/CRYPTO_CONSTRAINTS_FAILURE_NO_POE"},
		// Without nextUpdate the statement is fresh for the policy's default.
		{"no-next-update", leaf, now, policy.RevocationFresh, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			c := v.AcceptRevocation(tt.cert, rev(tt.ref), tt.at)
			assert.Equal(t, tt.indicated, c.String())
			require.Len(t, c.Errors(), 1)
			assert.Equal(t, tt.failing, c.Errors()[0].Check)
		})
	}

	c := v.AcceptRevocation(leaf, rev("no-next-update"), time.Date(2024, time.June, 1, 11, 20, 0, 0, time.UTC))
	assert.True(t, c.IsPassed(), c.String())

	// A nonce mismatch only warns by default.
	c = v.AcceptRevocation(leaf, rev("nonce"), now)
	assert.True(t, c.IsPassed())
	require.Len(t, c.Warnings(), 1)
	assert.Equal(t, policy.RevocationNonce, c.Warnings()[0].Check)
}

func TestAcceptRevocationTolerance(t *testing.T) {
	doc := load(t, caCRL, leafOCSP)
	v := newValidator(doc, nil)
	leaf := certificate(t, v, doc, "leaf")
	r, ok := v.Graph().Revocation(doc.MustID("leaf-ocsp"))
	require.True(t, ok)

	early := r.ThisUpdate.Add(-policy.DefaultTolerance)
	assert.True(t, v.AcceptRevocation(leaf, r, early).IsPassed())
	assert.False(t, v.AcceptRevocation(leaf, r, early.Add(-time.Nanosecond)).IsPassed())

	late := r.NextUpdate.Add(policy.DefaultTolerance)
	assert.True(t, v.AcceptRevocation(leaf, r, late).IsPassed())
	assert.False(t, v.AcceptRevocation(leaf, r, late.Add(time.Nanosecond)).IsPassed())
}

func TestAcceptRevocationExpiredCertsOnCRL(t *testing.T) {
	doc := load(t, caCRL,
		"  - {ref: kept, kind: CRL, target: leaf, signer: ca, this-update: 2025-06-01T00:00:00Z, next-update: 2025-06-08T00:00:00Z, expired-certs-on-crl: 2024-01-01T00:00:00Z}\n",
		"  - {ref: dropped, kind: CRL, target: leaf, signer: ca, this-update: 2025-06-01T00:00:00Z, next-update: 2025-06-08T00:00:00Z}\n",
	)
	v := newValidator(doc, nil)
	leaf := certificate(t, v, doc, "leaf")
	at := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	kept, _ := v.Graph().Revocation(doc.MustID("kept"))
	dropped, _ := v.Graph().Revocation(doc.MustID("dropped"))
	assert.True(t, v.AcceptRevocation(leaf, kept, at).IsPassed())
	c := v.AcceptRevocation(leaf, dropped, at)
	require.False(t, c.IsPassed())
	assert.Equal(t, policy.RevocationConsistent, c.Errors()[0].Check)
}

func TestResponderRecursion(t *testing.T) {
	doc, err := diagnostic.Parse([]byte(`
defaults:
  signature-algorithm: {digest: SHA256, encryption: ECDSA}
  key-size: 256
certificates:
  - {ref: root, ca: true, trusted: true, not-before: 2015-01-01T00:00:00Z, not-after: 2035-01-01T00:00:00Z, key-usage: [keyCertSign, cRLSign]}
  - {ref: leaf, issuer: root, not-before: 2023-01-01T00:00:00Z, not-after: 2025-01-01T00:00:00Z, key-usage: [digitalSignature]}
  - {ref: responder, issuer: root, not-before: 2023-01-01T00:00:00Z, not-after: 2026-01-01T00:00:00Z, key-usage: [digitalSignature], ext-key-usage: [OCSPSigning]}
revocations:
  - {ref: leaf-ocsp, target: leaf, signer: responder, this-update: 2024-06-01T11:00:00Z, next-update: 2024-06-02T11:00:00Z}
  - {ref: responder-ocsp, target: responder, signer: responder, this-update: 2024-06-01T11:00:00Z, next-update: 2024-06-02T11:00:00Z}
`))
	require.NoError(t, err)
	v := newValidator(doc, nil)

	res, err := v.ValidateChain(doc.MustID("leaf"), policy.RoleSigning, now)
	require.NoError(t, err)
	assert.Equal(t, "INDETERMINATE/NO_ACCEPTABLE_REVOCATION_FOUND", res.Conclusion.String())
	assert.Empty(t, v.active)
}
