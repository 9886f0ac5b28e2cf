package cryptosuite

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format selects the document syntax of a suite file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrInvalidSuite is returned for documents that do not describe a suite.
var ErrInvalidSuite = errors.New("invalid cryptographic suite")

var dateLayouts = []string{"2006-01-02", time.RFC3339}

type suiteDocument struct {
	Name       string                      `yaml:"name" toml:"name"`
	Digests    map[string]string           `yaml:"digests" toml:"digests"`
	Encryption map[string][]windowDocument `yaml:"encryption" toml:"encryption"`
}

type windowDocument struct {
	MinKeySize int    `yaml:"min-key-size" toml:"min-key-size"`
	Expiration string `yaml:"expiration" toml:"expiration"`
}

// Load reads a suite file. Files ending in ".toml" are parsed as TOML,
// everything else as YAML.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read crypto suite")
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = FormatTOML
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "crypto suite %s", path)
	}
	return s, nil
}

// Parse builds a suite from a YAML or TOML document. Expiration dates are
// "YYYY-MM-DD" or RFC 3339; an empty value or "never" never expires.
func Parse(data []byte, format Format) (*Suite, error) {
	var doc suiteDocument
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "parse yaml")
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, errors.Wrap(err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Wrapf(ErrInvalidSuite, "unexpected key %s", undecoded[0])
		}
	default:
		return nil, errors.Wrapf(ErrInvalidSuite, "unknown format %q", format)
	}
	return doc.build()
}

func (doc *suiteDocument) build() (*Suite, error) {
	if len(doc.Digests) == 0 && len(doc.Encryption) == 0 {
		return nil, errors.Wrap(ErrInvalidSuite, "no algorithms listed")
	}
	s := New(doc.Name)
	for _, name := range sortedKeys(doc.Digests) {
		exp, err := parseExpiration(doc.Digests[name])
		if err != nil {
			return nil, errors.Wrapf(err, "digest %s", name)
		}
		s.AddDigest(name, exp)
	}
	for _, name := range sortedKeys(doc.Encryption) {
		for i, w := range doc.Encryption[name] {
			if w.MinKeySize <= 0 {
				return nil, errors.Wrapf(ErrInvalidSuite, "encryption %s window %d: min-key-size must be positive", name, i)
			}
			exp, err := parseExpiration(w.Expiration)
			if err != nil {
				return nil, errors.Wrapf(err, "encryption %s window %d", name, i)
			}
			s.AddEncryption(name, w.MinKeySize, exp)
		}
	}
	return s, nil
}

func parseExpiration(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "never") {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.Wrapf(ErrInvalidSuite, "malformed expiration date %q", value)
}
