package condition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/georgepadayatti/adesvalidator/config"
)

// ErrInvalidCondition is returned for expressions that do not parse.
var ErrInvalidCondition = errors.New("invalid condition")

// qcStatementNames are the ETSI EN 319 412-5 statements accepted by name.
var qcStatementNames = map[string]string{
	"qc-compliance": "0.4.0.1862.1.1",
	"qc-limit":      "0.4.0.1862.1.2",
	"qc-retention":  "0.4.0.1862.1.3",
	"qc-sscd":       "0.4.0.1862.1.4",
	"qc-pds":        "0.4.0.1862.1.5",
	"qc-type":       "0.4.0.1862.1.6",
}

// conditionExpr is a leaf name or a call such as any(a, b).
type conditionExpr struct {
	Name string     `parser:"@Ident"`
	Args []*argExpr `parser:"( '(' ( @@ ( ',' @@ )* )? ')' )?"`
}

type argExpr struct {
	OID    string         `parser:"  @OID"`
	Nested *conditionExpr `parser:"| @@"`
}

var conditionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "OID", Pattern: `\d+(\.\d+)+`},
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_-]*`},
	{Name: "Punct", Pattern: `[(),]`},
})

var conditionParser = participle.MustBuild[conditionExpr](
	participle.Lexer(conditionLexer),
	participle.Elide("Whitespace"),
)

// Parse parses an expression such as
//
//	all(ca, any(policy(0.4.0.194112.1.2), qc-statement(qc-compliance)), none(self-signed))
//
// Operators are all, any (or at-least-one) and none. Leaves are ca, trusted,
// self-signed, policy(OID), qc-statement(OID or name), key-usage(name) and
// ext-key-usage(name).
func Parse(expr string) (Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidCondition)
	}
	ast, err := conditionParser.ParseString("", expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidCondition, expr, err)
	}
	return convert(ast)
}

// MustParse is like Parse but panics on error.
func MustParse(expr string) Condition {
	c, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return c
}

func convert(e *conditionExpr) (Condition, error) {
	name := strings.ToLower(e.Name)
	switch name {
	case "all", "any", "at-least-one", "none":
		children := make([]Condition, 0, len(e.Args))
		for _, arg := range e.Args {
			if arg.Nested == nil {
				return nil, fmt.Errorf("%w: %s expects conditions, got %s", ErrInvalidCondition, name, arg.OID)
			}
			child, err := convert(arg.Nested)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		switch name {
		case "all":
			return All(children), nil
		case "none":
			return None(children), nil
		default:
			return AtLeastOne(children), nil
		}

	case "ca", "trusted", "self-signed":
		if len(e.Args) > 0 {
			return nil, fmt.Errorf("%w: %s takes no arguments", ErrInvalidCondition, name)
		}
		switch name {
		case "ca":
			return CA(), nil
		case "trusted":
			return Trusted(), nil
		default:
			return SelfSigned(), nil
		}

	case "policy":
		oid, err := singleArg(name, e.Args)
		if err != nil {
			return nil, err
		}
		if !config.OIDRegex.MatchString(oid) {
			return nil, fmt.Errorf("%w: policy expects an OID, got %s", ErrInvalidCondition, oid)
		}
		return Policy(oid), nil

	case "qc-statement":
		arg, err := singleArg(name, e.Args)
		if err != nil {
			return nil, err
		}
		if oid, ok := qcStatementNames[strings.ToLower(arg)]; ok {
			arg = oid
		}
		if !config.OIDRegex.MatchString(arg) {
			return nil, fmt.Errorf("%w: unknown QC statement %s", ErrInvalidCondition, arg)
		}
		return QCStatement(arg), nil

	case "key-usage":
		arg, err := singleArg(name, e.Args)
		if err != nil {
			return nil, err
		}
		bit, ok := config.KeyUsageBit(arg)
		if !ok {
			return nil, fmt.Errorf("%w: unknown key usage %s", ErrInvalidCondition, arg)
		}
		return KeyUsage(config.NormalizeKeyUsageFlag(arg), bit), nil

	case "ext-key-usage":
		arg, err := singleArg(name, e.Args)
		if err != nil {
			return nil, err
		}
		if !config.ExtKeyUsageFlags[arg] {
			return nil, fmt.Errorf("%w: unknown extended key usage %s", ErrInvalidCondition, arg)
		}
		return ExtKeyUsage(arg), nil
	}
	return nil, fmt.Errorf("%w: unknown leaf %s", ErrInvalidCondition, e.Name)
}

// singleArg returns the one bare argument of a leaf call.
func singleArg(name string, args []*argExpr) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: %s takes exactly one argument", ErrInvalidCondition, name)
	}
	arg := args[0]
	if arg.OID != "" {
		return arg.OID, nil
	}
	if len(arg.Nested.Args) > 0 {
		return "", fmt.Errorf("%w: %s expects a name, got %s(...)", ErrInvalidCondition, name, arg.Nested.Name)
	}
	return arg.Nested.Name, nil
}
