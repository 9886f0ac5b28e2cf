package evidence

import (
	"bytes"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"time"

	"golang.org/x/crypto/ocsp"

	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/token"
)

// revocationID identifies one statement about one certificate. Responses
// and CRLs speak about many certificates, so the target takes part.
func revocationID(raw []byte, target identifier.Identifier) identifier.Identifier {
	digest := target.Digest()
	data := make([]byte, 0, len(raw)+len(digest))
	data = append(append(data, raw...), digest...)
	return identifier.Identify(data, identifier.KindRevocation)
}

// OCSP converts the response about target. The response is signed by
// resp.Certificate when it embeds a delegated responder, by issuer
// otherwise. nonce is the nonce sent in the request, nil when none was.
func (b *Builder) OCSP(resp *ocsp.Response, target, issuer *x509.Certificate, nonce []byte) (*token.RevocationToken, error) {
	if resp.SerialNumber == nil || resp.SerialNumber.Cmp(target.SerialNumber) != 0 {
		return nil, fmt.Errorf("%w: serial %v", ErrSerialMismatch, resp.SerialNumber)
	}
	signer := issuer
	if resp.Certificate != nil {
		signer = resp.Certificate
	}

	targetID := CertificateID(target)
	r := &token.RevocationToken{
		ID:                   revocationID(resp.Raw, targetID),
		Kind:                 token.RevocationOCSP,
		TargetID:             targetID,
		IssuerID:             CertificateID(issuer),
		ProductionTime:       resp.ProducedAt.UTC(),
		ThisUpdate:           resp.ThisUpdate.UTC(),
		SigningCertificateID: CertificateID(signer),
		SignatureAlgorithm:   SignatureAlgorithm(resp.SignatureAlgorithm),
		SignatureKeySize:     PublicKeySize(signer.PublicKey),
		SignatureValid:       resp.CheckSignatureFrom(signer) == nil,
		ResponderMatch:       responderMatches(resp, signer),
		NonceMatch:           nonceMatches(resp, nonce),
	}
	if !resp.NextUpdate.IsZero() {
		next := resp.NextUpdate.UTC()
		r.NextUpdate = &next
	}

	switch resp.Status {
	case ocsp.Good:
		r.Status = token.StatusGood
	case ocsp.Revoked:
		r.Status = token.StatusRevoked
		revokedAt := resp.RevokedAt.UTC()
		r.RevocationDate = &revokedAt
		r.Reason = token.RevocationReason(resp.RevocationReason)
	default:
		r.Status = token.StatusUnknown
	}

	b.log.Debug("converted OCSP response", "rev", r.ID, "target", targetID, "status", r.Status)
	return r, nil
}

// responderMatches checks the responder ID against the signer by name or by
// SHA-1 key hash.
func responderMatches(resp *ocsp.Response, signer *x509.Certificate) bool {
	if len(resp.RawResponderName) > 0 {
		return bytes.Equal(resp.RawResponderName, signer.RawSubject)
	}
	if len(resp.ResponderKeyHash) == 0 {
		return false
	}
	var spki struct {
		Algorithm pkix.AlgorithmIdentifier
		PublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(signer.RawSubjectPublicKeyInfo, &spki); err != nil {
		return false
	}
	sum := sha1.Sum(spki.PublicKey.RightAlign())
	return bytes.Equal(resp.ResponderKeyHash, sum[:])
}

func nonceMatches(resp *ocsp.Response, nonce []byte) *bool {
	if nonce == nil {
		return nil
	}
	match := false
	for _, ext := range resp.Extensions {
		if !ext.Id.Equal(oidOCSPNonce) {
			continue
		}
		var inner []byte
		if _, err := asn1.Unmarshal(ext.Value, &inner); err == nil {
			match = bytes.Equal(inner, nonce)
		} else {
			match = bytes.Equal(ext.Value, nonce)
		}
		break
	}
	return &match
}

// CRL converts what crl says about target. issuer is the CRL issuer, which
// for direct CRLs is the target's issuer.
func (b *Builder) CRL(crl *x509.RevocationList, target, issuer *x509.Certificate) *token.RevocationToken {
	targetID := CertificateID(target)
	r := &token.RevocationToken{
		ID:                   revocationID(crl.Raw, targetID),
		Kind:                 token.RevocationCRL,
		TargetID:             targetID,
		IssuerID:             CertificateID(issuer),
		ProductionTime:       crl.ThisUpdate.UTC(),
		ThisUpdate:           crl.ThisUpdate.UTC(),
		Status:               token.StatusGood,
		SigningCertificateID: CertificateID(issuer),
		SignatureAlgorithm:   SignatureAlgorithm(crl.SignatureAlgorithm),
		SignatureKeySize:     PublicKeySize(issuer.PublicKey),
		SignatureValid:       crl.CheckSignatureFrom(issuer) == nil,
		ResponderMatch:       bytes.Equal(crl.RawIssuer, issuer.RawSubject),
		ExpiredCertsOnCRL:    expiredCertsOnCRL(crl),
	}
	if !crl.NextUpdate.IsZero() {
		next := crl.NextUpdate.UTC()
		r.NextUpdate = &next
	}

	for _, entry := range crl.RevokedCertificateEntries {
		if entry.SerialNumber.Cmp(target.SerialNumber) != 0 {
			continue
		}
		revokedAt := entry.RevocationTime.UTC()
		r.Status = token.StatusRevoked
		r.RevocationDate = &revokedAt
		r.Reason = token.RevocationReason(entry.ReasonCode)
		break
	}

	b.log.Debug("converted CRL", "rev", r.ID, "target", targetID, "status", r.Status)
	return r
}

func expiredCertsOnCRL(crl *x509.RevocationList) *time.Time {
	for _, ext := range crl.Extensions {
		if !ext.Id.Equal(oidExpiredCerts) {
			continue
		}
		var t time.Time
		if _, err := asn1.UnmarshalWithParams(ext.Value, &t, "generalized"); err != nil {
			return nil
		}
		t = t.UTC()
		return &t
	}
	return nil
}
