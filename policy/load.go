package policy

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/georgepadayatti/adesvalidator/checks"
	"github.com/georgepadayatti/adesvalidator/condition"
	"github.com/georgepadayatti/adesvalidator/config"
	"github.com/georgepadayatti/adesvalidator/cryptosuite"
)

var (
	// ErrUnknownCheck is returned for levels given to checks that do not exist.
	ErrUnknownCheck = errors.New("unknown check")
	// ErrInvalidPolicy is returned for malformed policy documents.
	ErrInvalidPolicy = errors.New("invalid validation policy")
)

type policyDocument struct {
	Name        string                  `yaml:"name"`
	Levels      map[string]string       `yaml:"levels"`
	Revocation  revocationDocument      `yaml:"revocation"`
	CryptoSuite string                  `yaml:"crypto-suite"`
	Roles       map[string]roleDocument `yaml:"roles"`
}

type revocationDocument struct {
	MaxFreshness string `yaml:"max-freshness"`
	Tolerance    string `yaml:"tolerance"`
}

type roleDocument struct {
	KeyUsage   any    `yaml:"key-usage"`
	Revocation string `yaml:"revocation"`
	Condition  string `yaml:"condition"`
}

// Load reads a policy file. A relative crypto-suite path is resolved
// against the policy file's directory.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read validation policy")
	}
	p, err := parse(data, filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "validation policy %s", path)
	}
	return p, nil
}

// Parse builds a policy from a YAML document. Anything the document leaves
// out keeps its value from Default.
//
//	name: strict
//	levels:
//	  rac.nonce-match: FAIL
//	revocation:
//	  max-freshness: 24h
//	crypto-suite: suite.yaml
//	roles:
//	  signing:
//	    key-usage: [non-repudiation]
//	    condition: qc-statement(qc-compliance)
func Parse(data []byte) (*Policy, error) {
	return parse(data, "")
}

func parse(data []byte, dir string) (*Policy, error) {
	var doc policyDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "parse yaml")
	}

	p := Default()
	if doc.Name != "" {
		p.Name = doc.Name
	}

	for _, name := range sortedKeys(doc.Levels) {
		if !IsCheck(name) {
			return nil, errors.Wrapf(ErrUnknownCheck, "%s", name)
		}
		level, err := checks.ParseLevel(doc.Levels[name])
		if err != nil {
			return nil, errors.Wrapf(err, "level of %s", name)
		}
		p.levels[name] = level
	}

	var err error
	if p.maxFreshness, err = parseDuration(doc.Revocation.MaxFreshness, p.maxFreshness); err != nil {
		return nil, errors.Wrap(err, "max-freshness")
	}
	if p.tolerance, err = parseDuration(doc.Revocation.Tolerance, p.tolerance); err != nil {
		return nil, errors.Wrap(err, "tolerance")
	}

	if doc.CryptoSuite != "" {
		path := doc.CryptoSuite
		if dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if p.suite, err = cryptosuite.Load(path); err != nil {
			return nil, err
		}
	}

	for _, name := range sortedKeys(doc.Roles) {
		role := Role(name)
		base, ok := p.roles[role]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidPolicy, "unknown role %q", name)
		}
		constraints, err := doc.Roles[name].build(base)
		if err != nil {
			return nil, errors.Wrapf(err, "role %s", name)
		}
		p.roles[role] = constraints
	}

	return p, nil
}

func (d roleDocument) build(base RoleConstraints) (RoleConstraints, error) {
	rc := base
	if d.KeyUsage != nil {
		flags, err := config.ProcessKeyUsageFlags(d.KeyUsage, "key-usage")
		if err != nil {
			return rc, err
		}
		rc.KeyUsage = 0
		rc.KeyUsageNames = make([]string, 0, len(flags))
		for _, flag := range flags {
			bit, _ := config.KeyUsageBit(flag)
			rc.KeyUsage |= bit
			rc.KeyUsageNames = append(rc.KeyUsageNames, config.NormalizeKeyUsageFlag(flag))
		}
	}
	if d.Revocation != "" {
		rule, err := ParseRevocationRule(d.Revocation)
		if err != nil {
			return rc, errors.Wrap(ErrInvalidPolicy, err.Error())
		}
		rc.Revocation = rule
	}
	if strings.TrimSpace(d.Condition) != "" {
		c, err := condition.Parse(d.Condition)
		if err != nil {
			return rc, err
		}
		rc.Condition = c
	}
	return rc, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidPolicy, err.Error())
	}
	if d < 0 {
		return 0, errors.Wrapf(ErrInvalidPolicy, "negative duration %s", value)
	}
	return d, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
