// Package condition expresses certificate criteria as a small boolean tree.
//
// A Condition is a Leaf predicate or one of the combinators All, AtLeastOne
// and None over child conditions. Evaluate interprets the tree recursively.
package condition

import (
	"crypto/x509"
	"strings"

	"github.com/georgepadayatti/adesvalidator/config"
	"github.com/georgepadayatti/adesvalidator/token"
)

// Condition is a criterion over a certificate token.
type Condition interface {
	String() string
	condition()
}

// Leaf is a single named predicate.
type Leaf struct {
	Name string
	Test func(*token.CertificateToken) bool
}

// All holds when every child holds. An empty All holds.
type All []Condition

// AtLeastOne holds when some child holds. An empty AtLeastOne does not hold.
type AtLeastOne []Condition

// None holds when no child holds. An empty None holds.
type None []Condition

func (Leaf) condition()       {}
func (All) condition()        {}
func (AtLeastOne) condition() {}
func (None) condition()       {}

func (l Leaf) String() string       { return l.Name }
func (a All) String() string        { return render("all", a) }
func (a AtLeastOne) String() string { return render("any", a) }
func (n None) String() string       { return render("none", n) }

func render(op string, children []Condition) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return op + "(" + strings.Join(parts, ", ") + ")"
}

// Evaluate reports whether cert satisfies c. A nil condition always holds.
func Evaluate(c Condition, cert *token.CertificateToken) bool {
	switch v := c.(type) {
	case nil:
		return true
	case Leaf:
		return v.Test(cert)
	case All:
		for _, child := range v {
			if !Evaluate(child, cert) {
				return false
			}
		}
		return true
	case AtLeastOne:
		for _, child := range v {
			if Evaluate(child, cert) {
				return true
			}
		}
		return false
	case None:
		for _, child := range v {
			if Evaluate(child, cert) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CA holds for CA certificates.
func CA() Leaf {
	return Leaf{Name: "ca", Test: func(c *token.CertificateToken) bool { return c.CA }}
}

// Trusted holds for trust anchors.
func Trusted() Leaf {
	return Leaf{Name: "trusted", Test: func(c *token.CertificateToken) bool { return c.Trusted }}
}

// SelfSigned holds for self-signed certificates.
func SelfSigned() Leaf {
	return Leaf{Name: "self-signed", Test: (*token.CertificateToken).IsSelfSigned}
}

// Policy holds when the certificate asserts the policy OID.
func Policy(oid string) Leaf {
	return Leaf{
		Name: "policy(" + oid + ")",
		Test: func(c *token.CertificateToken) bool { return c.HasPolicy(oid) },
	}
}

// QCStatement holds when the certificate carries the QC statement OID.
func QCStatement(oid string) Leaf {
	return Leaf{
		Name: "qc-statement(" + oid + ")",
		Test: func(c *token.CertificateToken) bool { return c.HasQCStatement(oid) },
	}
}

// KeyUsage holds when the key usage bit is asserted.
func KeyUsage(name string, bit x509.KeyUsage) Leaf {
	return Leaf{
		Name: "key-usage(" + name + ")",
		Test: func(c *token.CertificateToken) bool { return c.HasKeyUsage(bit) },
	}
}

// ExtKeyUsage holds when the extended key usage is present.
func ExtKeyUsage(name string) Leaf {
	name = config.NormalizeExtKeyUsageFlag(name)
	return Leaf{
		Name: "ext-key-usage(" + name + ")",
		Test: func(c *token.CertificateToken) bool { return c.HasExtKeyUsage(name) },
	}
}
