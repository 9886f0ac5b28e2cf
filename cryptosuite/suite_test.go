package cryptosuite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgepadayatti/adesvalidator/token"
)

var (
	sha256RSA  = token.SignatureAlgorithm{Digest: "SHA256", Encryption: "RSA"}
	sha1RSA    = token.SignatureAlgorithm{Digest: "SHA1", Encryption: "RSA"}
	unknownAlg = token.SignatureAlgorithm{Digest: "WHIRLPOOL", Encryption: "RSA"}
)

func testSuite() *Suite {
	return New("test").
		AddDigest("SHA256", nil).
		AddDigest("SHA1", day(2009, time.August, 1)).
		AddEncryption("RSA", 3072, nil).
		AddEncryption("RSA", 1024, day(2013, time.December, 31)).
		AddEncryption("RSA", 2048, day(2020, time.January, 1))
}

func TestEncryptionExpirationUsesFloorWindow(t *testing.T) {
	s := testSuite()
	tests := []struct {
		keySize int
		want    *time.Time
		known   bool
	}{
		{512, nil, false},
		{1024, day(2013, time.December, 31), true},
		{2047, day(2013, time.December, 31), true},
		{2048, day(2020, time.January, 1), true},
		{3000, day(2020, time.January, 1), true},
		{4096, nil, true},
	}
	for _, tt := range tests {
		got, ok := s.EncryptionExpiration("rsa", tt.keySize)
		assert.Equal(t, tt.known, ok, "key size %d", tt.keySize)
		assert.Equal(t, tt.want, got, "key size %d", tt.keySize)
	}
}

func TestIsAcceptableBoundaryIsInclusive(t *testing.T) {
	s := testSuite()
	exp := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, s.IsAcceptable(sha256RSA, 2048, exp))
	assert.False(t, s.IsAcceptable(sha256RSA, 2048, exp.Add(time.Nanosecond)))
	assert.True(t, s.IsAcceptable(sha256RSA, 4096, time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestIsAcceptableFailsClosed(t *testing.T) {
	s := testSuite()
	at := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, s.IsAcceptable(unknownAlg, 4096, at))
	assert.False(t, s.IsAcceptable(token.SignatureAlgorithm{Digest: "SHA256", Encryption: "GOST"}, 4096, at))
	assert.False(t, s.IsAcceptable(sha256RSA, 512, at))
	assert.False(t, s.IsAcceptable(token.SignatureAlgorithm{}, 4096, at))

	_, known := s.ExpirationDate(unknownAlg, 4096)
	assert.False(t, known)
}

func TestExpirationDateTakesEarliest(t *testing.T) {
	s := testSuite()

	exp, ok := s.ExpirationDate(sha1RSA, 4096)
	require.True(t, ok)
	assert.Equal(t, day(2009, time.August, 1), exp)

	exp, ok = s.ExpirationDate(sha256RSA, 2048)
	require.True(t, ok)
	assert.Equal(t, day(2020, time.January, 1), exp)

	exp, ok = s.ExpirationDate(sha256RSA, 4096)
	require.True(t, ok)
	assert.Nil(t, exp)
}

func TestCanonicalNames(t *testing.T) {
	s := New("x").AddDigest("SHA-256", nil)
	assert.True(t, s.DigestAcceptable("sha256", time.Now()))
	assert.True(t, s.DigestAcceptable("SHA_256", time.Now()))
	assert.Equal(t, []string{"SHA256"}, s.Digests())
}

func TestDefaultSuite(t *testing.T) {
	s := Default()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, s.IsAcceptable(sha256RSA, 3072, now))
	assert.False(t, s.IsAcceptable(sha256RSA, 2048, now))
	assert.False(t, s.IsAcceptable(sha1RSA, 4096, now))
	assert.True(t, s.IsAcceptable(token.SignatureAlgorithm{Digest: "SHA256", Encryption: "ECDSA"}, 256, now))
	assert.True(t, s.IsAcceptable(token.SignatureAlgorithm{Digest: "SHA512", Encryption: "EdDSA"}, 256, now))
}

func TestLoadYAML(t *testing.T) {
	s, err := Load("testdata/suite.yaml")
	require.NoError(t, err)
	assert.Equal(t, "test suite", s.Name)

	exp, ok := s.DigestExpiration("SHA1")
	require.True(t, ok)
	assert.Equal(t, day(2009, time.August, 1), exp)

	exp, ok = s.DigestExpiration("SHA512")
	require.True(t, ok)
	assert.Nil(t, exp)

	exp, ok = s.EncryptionExpiration("RSA", 2500)
	require.True(t, ok)
	assert.Equal(t, day(2020, time.January, 1), exp)

	_, ok = s.EncryptionExpiration("ECDSA", 255)
	assert.False(t, ok)
}

func TestLoadTOML(t *testing.T) {
	s, err := Load("testdata/suite.toml")
	require.NoError(t, err)

	assert.True(t, s.IsAcceptable(sha256RSA, 2048, time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, s.IsAcceptable(sha256RSA, 2048, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.True(t, s.IsAcceptable(sha256RSA, 3072, time.Date(2090, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"bad date", "digests:\n  SHA1: yesterday\n", FormatYAML},
		{"empty", "name: nothing\n", FormatYAML},
		{"unknown key", "digests:\n  SHA1: never\nextra: 1\n", FormatYAML},
		{"zero key size", "encryption:\n  RSA:\n    - min-key-size: 0\n", FormatYAML},
		{"toml unknown key", "bogus = 1\n[digests]\nSHA1 = \"never\"\n", FormatTOML},
		{"unknown format", "", Format("json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestParseErrorsWrapSentinel(t *testing.T) {
	_, err := Parse([]byte("digests:\n  SHA1: 31/12/2009\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidSuite)
}
