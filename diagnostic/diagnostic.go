// Package diagnostic reads evidence graphs from YAML documents.
//
// A document lists certificates, revocation statements, timestamps and
// signatures. Each entry has a local ref that other entries use to point at
// it; identifiers are computed from the entry's DER when given, otherwise
// from the ref.
package diagnostic

import (
	"bytes"
	"encoding/base64"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/georgepadayatti/adesvalidator/config"
	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/token"
)

var (
	// ErrUnknownRef is returned when an entry points at a ref nobody defines.
	ErrUnknownRef = errors.New("unknown ref")
	// ErrInvalidDocument is returned for malformed entries.
	ErrInvalidDocument = errors.New("invalid diagnostic document")
)

// Document is a parsed diagnostic document.
type Document struct {
	Graph *token.Graph

	refs map[string]identifier.Identifier
	byID map[identifier.Identifier]string
}

// ID returns the identifier of the entry named ref.
func (d *Document) ID(ref string) (identifier.Identifier, bool) {
	id, ok := d.refs[ref]
	return id, ok
}

// MustID is like ID but panics for unknown refs.
func (d *Document) MustID(ref string) identifier.Identifier {
	id, ok := d.refs[ref]
	if !ok {
		panic("diagnostic: unknown ref " + ref)
	}
	return id
}

// Ref returns the ref of the entry with identifier id.
func (d *Document) Ref(id identifier.Identifier) (string, bool) {
	ref, ok := d.byID[id]
	return ref, ok
}

// Load reads a diagnostic document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read diagnostic document")
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "diagnostic document %s", path)
	}
	return doc, nil
}

// Parse builds a document from YAML.
func Parse(data []byte) (*Document, error) {
	var src document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&src); err != nil {
		return nil, errors.Wrap(err, "parse yaml")
	}

	b := &builder{
		doc:      &Document{Graph: token.NewGraph(), refs: map[string]identifier.Identifier{}, byID: map[identifier.Identifier]string{}},
		defaults: src.Defaults,
		certs:    map[string]*token.CertificateToken{},
	}
	if err := b.build(&src); err != nil {
		return nil, err
	}
	return b.doc, nil
}

type document struct {
	Defaults     defaults           `yaml:"defaults"`
	Certificates []certificateEntry `yaml:"certificates"`
	Revocations  []revocationEntry  `yaml:"revocations"`
	Timestamps   []timestampEntry   `yaml:"timestamps"`
	Signatures   []signatureEntry   `yaml:"signatures"`
}

type defaults struct {
	SignatureAlgorithm token.SignatureAlgorithm `yaml:"signature-algorithm"`
	KeySize            int                      `yaml:"key-size"`
}

// signed holds the fields every signed entry shares.
type signed struct {
	Ref                string                   `yaml:"ref"`
	DER                string                   `yaml:"der"`
	SignatureAlgorithm token.SignatureAlgorithm `yaml:"signature-algorithm"`
	SignatureKeySize   int                      `yaml:"signature-key-size"`
	SignatureValid     *bool                    `yaml:"signature-valid"`
}

type certificateEntry struct {
	signed    `yaml:",inline"`
	Subject   string    `yaml:"subject"`
	Serial    string    `yaml:"serial"`
	Issuer    string    `yaml:"issuer"`
	NotBefore time.Time `yaml:"not-before"`
	NotAfter  time.Time `yaml:"not-after"`
	PublicKey struct {
		Algorithm string `yaml:"algorithm"`
		Size      int    `yaml:"size"`
	} `yaml:"public-key"`
	KeyUsage     []string `yaml:"key-usage"`
	ExtKeyUsage  []string `yaml:"ext-key-usage"`
	CA           bool     `yaml:"ca"`
	Trusted      bool     `yaml:"trusted"`
	Policies     []string `yaml:"policies"`
	QCStatements []string `yaml:"qc-statements"`
	OCSPNoCheck  bool     `yaml:"ocsp-no-check"`
}

type revocationEntry struct {
	signed            `yaml:",inline"`
	Kind              string     `yaml:"kind"`
	Target            string     `yaml:"target"`
	Issuer            string     `yaml:"issuer"`
	Signer            string     `yaml:"signer"`
	ProductionTime    *time.Time `yaml:"production-time"`
	ThisUpdate        time.Time  `yaml:"this-update"`
	NextUpdate        *time.Time `yaml:"next-update"`
	Status            string     `yaml:"status"`
	RevocationDate    *time.Time `yaml:"revocation-date"`
	Reason            string     `yaml:"reason"`
	NonceMatch        *bool      `yaml:"nonce-match"`
	ResponderMatch    *bool      `yaml:"responder-match"`
	ExpiredCertsOnCRL *time.Time `yaml:"expired-certs-on-crl"`
}

type timestampEntry struct {
	signed         `yaml:",inline"`
	ProductionTime time.Time `yaml:"production-time"`
	Signer         string    `yaml:"signer"`
	Covers         []string  `yaml:"covers"`
}

type signatureEntry struct {
	signed             `yaml:",inline"`
	Signer             string     `yaml:"signer"`
	ClaimedSigningTime *time.Time `yaml:"claimed-signing-time"`
}

type builder struct {
	doc      *Document
	defaults defaults
	certs    map[string]*token.CertificateToken
}

func (b *builder) build(src *document) error {
	// Identifiers first, so that entries may point forward.
	for _, e := range src.Certificates {
		if err := b.define(e.signed, identifier.KindCertificate); err != nil {
			return err
		}
	}
	for _, e := range src.Revocations {
		if err := b.define(e.signed, identifier.KindRevocation); err != nil {
			return err
		}
	}
	for _, e := range src.Timestamps {
		if err := b.define(e.signed, identifier.KindTimestamp); err != nil {
			return err
		}
	}
	for _, e := range src.Signatures {
		if err := b.define(e.signed, identifier.KindSignature); err != nil {
			return err
		}
	}

	for i := range src.Certificates {
		if err := b.certificate(&src.Certificates[i]); err != nil {
			return errors.Wrapf(err, "certificate %s", src.Certificates[i].Ref)
		}
	}
	// Issuers may be listed after the certificates they sign.
	for _, e := range src.Certificates {
		c := b.certs[e.Ref]
		issuer := c
		if !c.IsSelfSigned() {
			issuer = b.certByID(c.IssuerID)
		}
		c.SignatureKeySize = b.keySize(e.signed, issuer)
	}
	for i := range src.Revocations {
		if err := b.revocation(&src.Revocations[i]); err != nil {
			return errors.Wrapf(err, "revocation %s", src.Revocations[i].Ref)
		}
	}
	for i := range src.Timestamps {
		if err := b.timestamp(&src.Timestamps[i]); err != nil {
			return errors.Wrapf(err, "timestamp %s", src.Timestamps[i].Ref)
		}
	}
	for i := range src.Signatures {
		if err := b.signature(&src.Signatures[i]); err != nil {
			return errors.Wrapf(err, "signature %s", src.Signatures[i].Ref)
		}
	}
	return nil
}

func (b *builder) define(s signed, kind identifier.Kind) error {
	if s.Ref == "" {
		return errors.Wrapf(ErrInvalidDocument, "%s entry without ref", kind)
	}
	if _, dup := b.doc.refs[s.Ref]; dup {
		return errors.Wrapf(ErrInvalidDocument, "duplicate ref %q", s.Ref)
	}
	data := []byte(s.Ref)
	if s.DER != "" {
		der, err := base64.StdEncoding.DecodeString(s.DER)
		if err != nil {
			return errors.Wrapf(ErrInvalidDocument, "ref %q: der is not base64: %v", s.Ref, err)
		}
		data = der
	}
	id := identifier.Identify(data, kind)
	if _, dup := b.doc.byID[id]; dup {
		return errors.Wrapf(ErrInvalidDocument, "ref %q repeats the content of another entry", s.Ref)
	}
	b.doc.refs[s.Ref] = id
	b.doc.byID[id] = s.Ref
	return nil
}

// resolve returns the identifier of ref, which must be of kind.
func (b *builder) resolve(ref string, kind identifier.Kind) (identifier.Identifier, error) {
	id, ok := b.doc.refs[ref]
	if !ok {
		return identifier.Identifier{}, errors.Wrapf(ErrUnknownRef, "%q", ref)
	}
	if id.Kind() != kind {
		return identifier.Identifier{}, errors.Wrapf(ErrInvalidDocument, "%q is a %s, want a %s", ref, id.Kind(), kind)
	}
	return id, nil
}

func (b *builder) algorithm(s signed) token.SignatureAlgorithm {
	if s.SignatureAlgorithm.IsZero() {
		return b.defaults.SignatureAlgorithm
	}
	return s.SignatureAlgorithm
}

// keySize returns the declared key size, else the signer's public key size,
// else the document default.
func (b *builder) keySize(s signed, signer *token.CertificateToken) int {
	switch {
	case s.SignatureKeySize > 0:
		return s.SignatureKeySize
	case signer != nil && signer.PublicKey.Size > 0:
		return signer.PublicKey.Size
	default:
		return b.defaults.KeySize
	}
}

func valid(v *bool) bool {
	return v == nil || *v
}

func (b *builder) certificate(e *certificateEntry) error {
	c := &token.CertificateToken{
		ID:           b.doc.refs[e.Ref],
		Subject:      e.Subject,
		SerialNumber: e.Serial,
		NotBefore:    e.NotBefore.UTC(),
		NotAfter:     e.NotAfter.UTC(),
		PublicKey:    token.PublicKeyInfo{Algorithm: e.PublicKey.Algorithm, Size: e.PublicKey.Size},
		CA:           e.CA,
		Trusted:      e.Trusted,
		OCSPNoCheck:  e.OCSPNoCheck,
	}
	if c.Subject == "" {
		c.Subject = "CN=" + e.Ref
	}
	if c.PublicKey.Size == 0 {
		c.PublicKey.Size = b.defaults.KeySize
	}
	if c.NotAfter.Before(c.NotBefore) {
		return errors.Wrap(ErrInvalidDocument, "not-after before not-before")
	}

	for _, name := range e.KeyUsage {
		bit, ok := config.KeyUsageBit(name)
		if !ok {
			return errors.Wrapf(ErrInvalidDocument, "unknown key usage %q", name)
		}
		c.KeyUsage |= bit
	}
	if len(e.ExtKeyUsage) > 0 {
		names, err := config.ProcessExtKeyUsageFlags(e.ExtKeyUsage, "ext-key-usage")
		if err != nil {
			return errors.Wrap(ErrInvalidDocument, err.Error())
		}
		for _, name := range names {
			c.ExtKeyUsage = append(c.ExtKeyUsage, config.NormalizeExtKeyUsageFlag(name))
		}
	}
	var err error
	if c.Policies, err = oids(e.Policies); err != nil {
		return err
	}
	if c.QCStatements, err = oids(e.QCStatements); err != nil {
		return err
	}

	if e.Issuer != "" && e.Issuer != e.Ref {
		id, err := b.resolve(e.Issuer, identifier.KindCertificate)
		if err != nil {
			return err
		}
		c.IssuerID = id
	}
	c.SignatureAlgorithm = b.algorithm(e.signed)
	c.SignatureValid = valid(e.SignatureValid)

	b.certs[e.Ref] = c
	b.doc.Graph.AddCertificate(c)
	return nil
}

func (b *builder) revocation(e *revocationEntry) error {
	r := &token.RevocationToken{
		ID:                b.doc.refs[e.Ref],
		ThisUpdate:        e.ThisUpdate.UTC(),
		NextUpdate:        utc(e.NextUpdate),
		RevocationDate:    utc(e.RevocationDate),
		NonceMatch:        e.NonceMatch,
		ResponderMatch:    valid(e.ResponderMatch),
		ExpiredCertsOnCRL: utc(e.ExpiredCertsOnCRL),
		SignatureValid:    valid(e.SignatureValid),
	}

	switch e.Kind {
	case "OCSP", "ocsp", "":
		r.Kind = token.RevocationOCSP
	case "CRL", "crl":
		r.Kind = token.RevocationCRL
	default:
		return errors.Wrapf(ErrInvalidDocument, "unknown kind %q", e.Kind)
	}

	switch e.Status {
	case "good", "":
		r.Status = token.StatusGood
	case "revoked":
		r.Status = token.StatusRevoked
	case "unknown":
		r.Status = token.StatusUnknown
	default:
		return errors.Wrapf(ErrInvalidDocument, "unknown status %q", e.Status)
	}
	if e.Reason != "" {
		reason, err := token.ParseRevocationReason(e.Reason)
		if err != nil {
			return errors.Wrap(ErrInvalidDocument, err.Error())
		}
		r.Reason = reason
	}

	var err error
	if r.TargetID, err = b.resolve(e.Target, identifier.KindCertificate); err != nil {
		return err
	}
	target := b.certs[e.Target]
	switch {
	case e.Issuer != "":
		if r.IssuerID, err = b.resolve(e.Issuer, identifier.KindCertificate); err != nil {
			return err
		}
	case target.IsSelfSigned():
		r.IssuerID = target.ID
	default:
		r.IssuerID = target.IssuerID
	}
	r.SigningCertificateID = r.IssuerID
	if e.Signer != "" {
		if r.SigningCertificateID, err = b.resolve(e.Signer, identifier.KindCertificate); err != nil {
			return err
		}
	}

	r.ProductionTime = r.ThisUpdate
	if e.ProductionTime != nil {
		r.ProductionTime = e.ProductionTime.UTC()
	}
	r.SignatureAlgorithm = b.algorithm(e.signed)
	r.SignatureKeySize = b.keySize(e.signed, b.certByID(r.SigningCertificateID))

	b.doc.Graph.AddRevocation(r)
	return nil
}

func (b *builder) timestamp(e *timestampEntry) error {
	t := &token.TimestampToken{
		ID:             b.doc.refs[e.Ref],
		ProductionTime: e.ProductionTime.UTC(),
		SignatureValid: valid(e.SignatureValid),
	}
	if e.Signer != "" {
		id, err := b.resolve(e.Signer, identifier.KindCertificate)
		if err != nil {
			return err
		}
		t.SigningCertificateID = id
	}
	for _, ref := range e.Covers {
		id, ok := b.doc.refs[ref]
		if !ok {
			return errors.Wrapf(ErrUnknownRef, "%q", ref)
		}
		t.Covered = append(t.Covered, id)
	}
	t.SignatureAlgorithm = b.algorithm(e.signed)
	t.SignatureKeySize = b.keySize(e.signed, b.certByID(t.SigningCertificateID))

	b.doc.Graph.AddTimestamp(t)
	return nil
}

func (b *builder) signature(e *signatureEntry) error {
	s := &token.SignatureToken{
		ID:                 b.doc.refs[e.Ref],
		SignatureValid:     valid(e.SignatureValid),
		ClaimedSigningTime: utc(e.ClaimedSigningTime),
	}
	if e.Signer != "" {
		id, err := b.resolve(e.Signer, identifier.KindCertificate)
		if err != nil {
			return err
		}
		s.SigningCertificateID = id
	}
	s.SignatureAlgorithm = b.algorithm(e.signed)
	s.SignatureKeySize = b.keySize(e.signed, b.certByID(s.SigningCertificateID))

	b.doc.Graph.AddSignature(s)
	return nil
}

func (b *builder) certByID(id identifier.Identifier) *token.CertificateToken {
	c, _ := b.doc.Graph.Certificate(id)
	return c
}

func oids(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out, err := config.ProcessOIDs(in)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidDocument, err.Error())
	}
	return out, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
