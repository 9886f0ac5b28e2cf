package cryptosuite

import "time"

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// Default returns a suite modelled on the ETSI TS 119 312 recommendations.
func Default() *Suite {
	s := New("ETSI TS 119 312")

	s.AddDigest("MD2", day(2005, time.August, 1)).
		AddDigest("MD5", day(2005, time.August, 1)).
		AddDigest("SHA1", day(2009, time.August, 1)).
		AddDigest("SHA224", day(2025, time.December, 31)).
		AddDigest("SHA256", nil).
		AddDigest("SHA384", nil).
		AddDigest("SHA512", nil).
		AddDigest("SHA3-256", nil).
		AddDigest("SHA3-384", nil).
		AddDigest("SHA3-512", nil)

	for _, rsa := range []string{"RSA", "RSASSA-PSS"} {
		s.AddEncryption(rsa, 1024, day(2013, time.December, 31)).
			AddEncryption(rsa, 1536, day(2016, time.December, 31)).
			AddEncryption(rsa, 1900, day(2019, time.October, 1)).
			AddEncryption(rsa, 3000, nil)
	}
	s.AddEncryption("DSA", 1024, day(2013, time.December, 31)).
		AddEncryption("DSA", 2048, day(2029, time.December, 31)).
		AddEncryption("DSA", 3072, nil)
	s.AddEncryption("ECDSA", 160, day(2013, time.December, 31)).
		AddEncryption("ECDSA", 192, day(2016, time.December, 31)).
		AddEncryption("ECDSA", 224, day(2021, time.October, 1)).
		AddEncryption("ECDSA", 256, nil)
	s.AddEncryption("EdDSA", 256, nil)

	return s
}
