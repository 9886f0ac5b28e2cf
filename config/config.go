// Package config loads the application configuration: where the validation
// policy, cryptographic suite and trust anchors live, and how to log.
package config

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Common errors
var (
	ErrUnexpectedField = errors.New("unexpected field in configuration")
	ErrInvalidOID      = errors.New("invalid OID")
)

// OIDRegex matches OID strings like "1.2.3.4"
var OIDRegex = regexp.MustCompile(`^\d+(\.\d+)+$`)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// ValidationConfig contains validation configuration.
type ValidationConfig struct {
	// PolicyFile is the path to the validation policy. Empty selects the
	// built-in policy.
	PolicyFile string `yaml:"policy-file" json:"policy_file,omitempty"`

	// CryptoSuiteFile overrides the cryptographic suite of the policy.
	CryptoSuiteFile string `yaml:"crypto-suite-file" json:"crypto_suite_file,omitempty"`

	// TrustAnchors contains paths to trust anchor certificate files.
	TrustAnchors []string `yaml:"trust-anchors" json:"trust_anchors,omitempty"`

	// Language is the BCP 47 tag of the message language.
	Language string `yaml:"language" json:"language,omitempty"`

	// Workers bounds parallel batch validation. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers" json:"workers,omitempty"`

	// RegistrySize bounds the certificate registry shared between runs.
	RegistrySize int `yaml:"registry-size" json:"registry_size,omitempty"`
}

// SetDefaults sets default values for validation configuration.
func (c *ValidationConfig) SetDefaults() {
	if c.Language == "" {
		c.Language = "en"
	}
}

// Validate validates the validation configuration.
func (c *ValidationConfig) Validate() error {
	if c.Workers < 0 {
		return NewConfigError("workers", "must not be negative")
	}
	if c.RegistrySize < 0 {
		return NewConfigError("registry-size", "must not be negative")
	}
	if _, err := language.Parse(c.Language); err != nil {
		return &ConfigError{Field: "language", Message: fmt.Sprintf("invalid language tag %q", c.Language), Err: err}
	}
	return nil
}

// LanguageTag returns the parsed message language, English if unset.
func (c *ValidationConfig) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// resolvePaths makes relative file references relative to dir.
func (c *ValidationConfig) resolvePaths(dir string) {
	c.PolicyFile = resolvePath(dir, c.PolicyFile)
	c.CryptoSuiteFile = resolvePath(dir, c.CryptoSuiteFile)
	for i, p := range c.TrustAnchors {
		c.TrustAnchors[i] = resolvePath(dir, p)
	}
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// CheckConfigKeys checks if all provided keys are valid for a given configuration type.
func CheckConfigKeys(configName string, expectedKeys, suppliedKeys []string) error {
	expectedSet := make(map[string]bool)
	for _, k := range expectedKeys {
		// Normalize to use dashes
		expectedSet[normalizeKey(k)] = true
	}

	var unexpected []string
	for _, k := range suppliedKeys {
		normalized := normalizeKey(k)
		if !expectedSet[normalized] {
			unexpected = append(unexpected, k)
		}
	}

	if len(unexpected) > 0 {
		keyWord := "key"
		if len(unexpected) > 1 {
			keyWord = "keys"
		}
		return fmt.Errorf("%w: unexpected %s in configuration for %s: %s",
			ErrUnexpectedField, keyWord, configName, strings.Join(unexpected, ", "))
	}

	return nil
}

// normalizeKey normalizes a configuration key (underscores to dashes).
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// ProcessOID checks that oidString is a dotted numeric OID.
func ProcessOID(oidString string) (string, error) {
	if oidString == "" {
		return "", NewConfigError("oid", "OID string is empty")
	}
	if !OIDRegex.MatchString(oidString) {
		return "", &ConfigError{Field: "oid", Message: fmt.Sprintf("%q is not a dotted OID", oidString), Err: ErrInvalidOID}
	}
	return oidString, nil
}

// ProcessOIDs validates and normalizes a list of OID strings.
func ProcessOIDs(oidStrings []string) ([]string, error) {
	result := make([]string, 0, len(oidStrings))
	for _, oid := range oidStrings {
		processed, err := ProcessOID(oid)
		if err != nil {
			return nil, err
		}
		result = append(result, processed)
	}
	return result, nil
}

// Common X.509 KeyUsage flag names (matching crypto/x509 KeyUsage constants)
var KeyUsageFlags = map[string]bool{
	"digital-signature":  true,
	"digitalSignature":   true,
	"content-commitment": true,
	"contentCommitment":  true,
	"non-repudiation":    true, // Alias for content-commitment
	"nonRepudiation":     true,
	"key-encipherment":   true,
	"keyEncipherment":    true,
	"data-encipherment":  true,
	"dataEncipherment":   true,
	"key-agreement":      true,
	"keyAgreement":       true,
	"key-cert-sign":      true,
	"keyCertSign":        true,
	"crl-sign":           true,
	"cRLSign":            true,
	"encipher-only":      true,
	"encipherOnly":       true,
	"decipher-only":      true,
	"decipherOnly":       true,
}

// Common X.509 ExtKeyUsage flag names
var ExtKeyUsageFlags = map[string]bool{
	"any":                            true,
	"server-auth":                    true,
	"serverAuth":                     true,
	"client-auth":                    true,
	"clientAuth":                     true,
	"code-signing":                   true,
	"codeSigning":                    true,
	"email-protection":               true,
	"emailProtection":                true,
	"ipsec-end-system":               true,
	"ipsecEndSystem":                 true,
	"ipsec-tunnel":                   true,
	"ipsecTunnel":                    true,
	"ipsec-user":                     true,
	"ipsecUser":                      true,
	"time-stamping":                  true,
	"timeStamping":                   true,
	"ocsp-signing":                   true,
	"OCSPSigning":                    true,
}

// EnsureStrings ensures the input is a slice of strings.
// It accepts either a single string or a slice of strings.
// This is a helper for processing configuration values that can be
// specified as either a single value or a list.
func EnsureStrings(value any, paramName string) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		result := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, NewConfigError(paramName,
					fmt.Sprintf("item %d is not a string (got %T)", i, item))
			}
			result = append(result, s)
		}
		return result, nil
	default:
		return nil, NewConfigError(paramName,
			fmt.Sprintf("must be specified as a list of strings or a string, got %T", value))
	}
}

// ProcessBitStringFlags validates a list of flag strings against a set of valid flag names.
// This is used for processing configuration values like KeyUsage or ExtKeyUsage flags.
//
// Parameters:
//   - validFlags: a map of valid flag names (the map values are ignored, only keys matter)
//   - strings: the flag strings to validate (can be a single string or slice)
//   - paramName: the parameter name for error messages
//   - flagTypeName: the type name for error messages (e.g., "KeyUsage", "ExtKeyUsage")
//
// Returns the validated flag strings or an error if any flag is invalid.
func ProcessBitStringFlags(validFlags map[string]bool, input any, paramName, flagTypeName string) ([]string, error) {
	flags, err := EnsureStrings(input, paramName)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(flags))
	for _, flagString := range flags {
		if flagString == "" {
			return nil, NewConfigError(paramName, "flag identifier cannot be empty")
		}

		if !validFlags[flagString] {
			validNames := make([]string, 0, len(validFlags))
			for name := range validFlags {
				validNames = append(validNames, name)
			}
			sort.Strings(validNames)
			return nil, NewConfigError(paramName,
				fmt.Sprintf("'%s' is not a valid %s flag name (valid: %s)",
					flagString, flagTypeName, strings.Join(validNames, ", ")))
		}

		result = append(result, flagString)
	}

	return result, nil
}

// ProcessKeyUsageFlags validates and processes KeyUsage flag strings.
// Accepts common KeyUsage names like "digital-signature", "digitalSignature",
// "key-encipherment", "keyEncipherment", etc.
func ProcessKeyUsageFlags(input any, paramName string) ([]string, error) {
	return ProcessBitStringFlags(KeyUsageFlags, input, paramName, "KeyUsage")
}

// ProcessExtKeyUsageFlags validates and processes ExtKeyUsage flag strings.
// Accepts common ExtKeyUsage names like "server-auth", "serverAuth",
// "code-signing", "codeSigning", etc.
func ProcessExtKeyUsageFlags(input any, paramName string) ([]string, error) {
	return ProcessBitStringFlags(ExtKeyUsageFlags, input, paramName, "ExtKeyUsage")
}

// NormalizeKeyUsageFlag normalizes a KeyUsage flag name to its canonical form.
// Converts camelCase to kebab-case for consistency.
func NormalizeKeyUsageFlag(flag string) string {
	// Map common variations to canonical kebab-case form
	normalizations := map[string]string{
		"digitalSignature":  "digital-signature",
		"contentCommitment": "content-commitment",
		"nonRepudiation":    "non-repudiation",
		"keyEncipherment":   "key-encipherment",
		"dataEncipherment":  "data-encipherment",
		"keyAgreement":      "key-agreement",
		"keyCertSign":       "key-cert-sign",
		"cRLSign":           "crl-sign",
		"encipherOnly":      "encipher-only",
		"decipherOnly":      "decipher-only",
	}
	if normalized, ok := normalizations[flag]; ok {
		return normalized
	}
	return flag
}

// NormalizeExtKeyUsageFlag normalizes an ExtKeyUsage flag name to its canonical form.
func NormalizeExtKeyUsageFlag(flag string) string {
	normalizations := map[string]string{
		"serverAuth":      "server-auth",
		"clientAuth":      "client-auth",
		"codeSigning":     "code-signing",
		"emailProtection": "email-protection",
		"ipsecEndSystem":  "ipsec-end-system",
		"ipsecTunnel":     "ipsec-tunnel",
		"ipsecUser":       "ipsec-user",
		"timeStamping":    "time-stamping",
		"OCSPSigning":     "ocsp-signing",
	}
	if normalized, ok := normalizations[flag]; ok {
		return normalized
	}
	return flag
}

var keyUsageBits = map[string]x509.KeyUsage{
	"digital-signature":  x509.KeyUsageDigitalSignature,
	"content-commitment": x509.KeyUsageContentCommitment,
	"non-repudiation":    x509.KeyUsageContentCommitment,
	"key-encipherment":   x509.KeyUsageKeyEncipherment,
	"data-encipherment":  x509.KeyUsageDataEncipherment,
	"key-agreement":      x509.KeyUsageKeyAgreement,
	"key-cert-sign":      x509.KeyUsageCertSign,
	"crl-sign":           x509.KeyUsageCRLSign,
	"encipher-only":      x509.KeyUsageEncipherOnly,
	"decipher-only":      x509.KeyUsageDecipherOnly,
}

// KeyUsageBit maps a KeyUsage flag name in either spelling to its bit.
func KeyUsageBit(name string) (x509.KeyUsage, bool) {
	bit, ok := keyUsageBits[NormalizeKeyUsageFlag(name)]
	return bit, ok
}

// ExtKeyUsageName returns the canonical flag name of a standard extended key
// usage, or false for usages without one.
func ExtKeyUsageName(usage x509.ExtKeyUsage) (string, bool) {
	switch usage {
	case x509.ExtKeyUsageAny:
		return "any", true
	case x509.ExtKeyUsageServerAuth:
		return "server-auth", true
	case x509.ExtKeyUsageClientAuth:
		return "client-auth", true
	case x509.ExtKeyUsageCodeSigning:
		return "code-signing", true
	case x509.ExtKeyUsageEmailProtection:
		return "email-protection", true
	case x509.ExtKeyUsageIPSECEndSystem:
		return "ipsec-end-system", true
	case x509.ExtKeyUsageIPSECTunnel:
		return "ipsec-tunnel", true
	case x509.ExtKeyUsageIPSECUser:
		return "ipsec-user", true
	case x509.ExtKeyUsageTimeStamping:
		return "time-stamping", true
	case x509.ExtKeyUsageOCSPSigning:
		return "ocsp-signing", true
	}
	return "", false
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level,omitempty"`

	// Format is the log format (text, json).
	Format string `yaml:"format" json:"format,omitempty"`

	// Output is the log output (stdout, stderr, or file path).
	Output string `yaml:"output" json:"output,omitempty"`

	// MaxSize is the size in megabytes at which a log file is rotated.
	MaxSize int `yaml:"max-size" json:"max_size,omitempty"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max-backups" json:"max_backups,omitempty"`

	// MaxAge is the number of days rotated files are kept.
	MaxAge int `yaml:"max-age" json:"max_age,omitempty"`

	// Compress gzips rotated files.
	Compress bool `yaml:"compress" json:"compress,omitempty"`

	// Caller adds the calling file and line to each record.
	Caller bool `yaml:"caller" json:"caller,omitempty"`
}

// IsFile reports whether Output names a file rather than a stream.
func (c *LoggingConfig) IsFile() bool {
	return c.Output != "stdout" && c.Output != "stderr" && c.Output != ""
}

// SetDefaults sets default values for logging configuration.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	if c.MaxSize == 0 {
		c.MaxSize = 100
	}
}

// AppConfig contains the complete application configuration.
type AppConfig struct {
	// Validation contains validation configuration.
	Validation *ValidationConfig `yaml:"validation" json:"validation,omitempty"`

	// Logging contains logging configuration.
	Logging *LoggingConfig `yaml:"logging" json:"logging,omitempty"`
}

var appConfigKeys = []string{"validation", "logging"}

// LoadAppConfig loads the complete application configuration from a file.
// Relative paths in the file are taken relative to the file's directory.
func LoadAppConfig(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config, err := ParseAppConfig(data)
	if err != nil {
		return nil, err
	}
	config.Validation.resolvePaths(filepath.Dir(filename))
	return config, nil
}

// ParseAppConfig parses application configuration from YAML data and fills
// in defaults.
func ParseAppConfig(data []byte) (*AppConfig, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	supplied := make([]string, 0, len(raw))
	for k := range raw {
		supplied = append(supplied, k)
	}
	sort.Strings(supplied)
	if err := CheckConfigKeys("application", appConfigKeys, supplied); err != nil {
		return nil, err
	}

	var config AppConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Validation == nil {
		config.Validation = &ValidationConfig{}
	}
	config.Validation.SetDefaults()
	if err := config.Validation.Validate(); err != nil {
		return nil, err
	}
	if config.Logging == nil {
		config.Logging = &LoggingConfig{}
	}
	config.Logging.SetDefaults()

	return &config, nil
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	config := &AppConfig{Validation: &ValidationConfig{}, Logging: &LoggingConfig{}}
	config.Validation.SetDefaults()
	config.Logging.SetDefaults()
	return config
}
