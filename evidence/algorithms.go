package evidence

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"

	"github.com/georgepadayatti/adesvalidator/config"
	"github.com/georgepadayatti/adesvalidator/token"
)

var (
	oidQCStatements = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 3}
	oidOCSPNoCheck  = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 5}
	oidOCSPNonce    = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 2}
	oidExpiredCerts = asn1.ObjectIdentifier{2, 5, 29, 60}
)

var signatureAlgorithms = map[x509.SignatureAlgorithm]token.SignatureAlgorithm{
	x509.MD2WithRSA:       {Digest: "MD2", Encryption: "RSA"},
	x509.MD5WithRSA:       {Digest: "MD5", Encryption: "RSA"},
	x509.SHA1WithRSA:      {Digest: "SHA1", Encryption: "RSA"},
	x509.SHA256WithRSA:    {Digest: "SHA256", Encryption: "RSA"},
	x509.SHA384WithRSA:    {Digest: "SHA384", Encryption: "RSA"},
	x509.SHA512WithRSA:    {Digest: "SHA512", Encryption: "RSA"},
	x509.SHA256WithRSAPSS: {Digest: "SHA256", Encryption: "RSASSA-PSS"},
	x509.SHA384WithRSAPSS: {Digest: "SHA384", Encryption: "RSASSA-PSS"},
	x509.SHA512WithRSAPSS: {Digest: "SHA512", Encryption: "RSASSA-PSS"},
	x509.DSAWithSHA1:      {Digest: "SHA1", Encryption: "DSA"},
	x509.DSAWithSHA256:    {Digest: "SHA256", Encryption: "DSA"},
	x509.ECDSAWithSHA1:    {Digest: "SHA1", Encryption: "ECDSA"},
	x509.ECDSAWithSHA256:  {Digest: "SHA256", Encryption: "ECDSA"},
	x509.ECDSAWithSHA384:  {Digest: "SHA384", Encryption: "ECDSA"},
	x509.ECDSAWithSHA512:  {Digest: "SHA512", Encryption: "ECDSA"},
	x509.PureEd25519:      {Digest: "SHA512", Encryption: "EdDSA"},
}

// SignatureAlgorithm names the digest and encryption of an X.509 signature
// algorithm. Unknown algorithms give the zero value, which no suite accepts.
func SignatureAlgorithm(alg x509.SignatureAlgorithm) token.SignatureAlgorithm {
	return signatureAlgorithms[alg]
}

// PublicKeySize returns the size in bits of a public key, or 0 when unknown.
func PublicKeySize(pub crypto.PublicKey) int {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return key.N.BitLen()
	case *dsa.PublicKey:
		return key.P.BitLen()
	case *ecdsa.PublicKey:
		if key.Curve != nil {
			return key.Curve.Params().BitSize
		}
		return 0
	case ed25519.PublicKey:
		return len(key) * 8
	default:
		return 0
	}
}

type qcStatement struct {
	ID   asn1.ObjectIdentifier
	Info asn1.RawValue `asn1:"optional"`
}

// qcStatements returns the statement OIDs of the qcStatements extension.
func qcStatements(cert *x509.Certificate) []string {
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(oidQCStatements) {
			continue
		}
		var statements []qcStatement
		if _, err := asn1.Unmarshal(ext.Value, &statements); err != nil {
			return nil
		}
		out := make([]string, 0, len(statements))
		for _, s := range statements {
			out = append(out, s.ID.String())
		}
		return out
	}
	return nil
}

func hasOCSPNoCheck(cert *x509.Certificate) bool {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oidOCSPNoCheck) {
			return true
		}
	}
	return false
}

func policies(cert *x509.Certificate) []string {
	out := make([]string, 0, len(cert.PolicyIdentifiers))
	for _, oid := range cert.PolicyIdentifiers {
		out = append(out, oid.String())
	}
	return out
}

func extKeyUsages(cert *x509.Certificate) []string {
	out := make([]string, 0, len(cert.ExtKeyUsage))
	for _, u := range cert.ExtKeyUsage {
		if name, ok := config.ExtKeyUsageName(u); ok {
			out = append(out, name)
		}
	}
	return out
}
