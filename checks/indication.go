package checks

// Indication is the top-level validation outcome.
type Indication string

const (
	Passed        Indication = "PASSED"
	Indeterminate Indication = "INDETERMINATE"
	Failed        Indication = "FAILED"
)

// SubIndication refines a non-passing indication.
type SubIndication string

const (
	NoSubIndication SubIndication = ""

	NoSigningCertificateFound      SubIndication = "NO_SIGNING_CERTIFICATE_FOUND"
	NoCertificateChainFound        SubIndication = "NO_CERTIFICATE_CHAIN_FOUND"
	CertificateChainGeneralFailure SubIndication = "CERTIFICATE_CHAIN_GENERAL_FAILURE"
	ChainConstraintsFailure        SubIndication = "CHAIN_CONSTRAINTS_FAILURE"
	OutOfBoundsNoPOE               SubIndication = "OUT_OF_BOUNDS_NO_POE"
	RevokedNoPOE                   SubIndication = "REVOKED_NO_POE"
	RevokedCANoPOE                 SubIndication = "REVOKED_CA_NO_POE"
	TryLater                       SubIndication = "TRY_LATER"
	NoAcceptableRevocationFound    SubIndication = "NO_ACCEPTABLE_REVOCATION_FOUND"
	CryptoConstraintsFailureNoPOE  SubIndication = "CRYPTO_CONSTRAINTS_FAILURE_NO_POE"
	SigCryptoFailure               SubIndication = "SIG_CRYPTO_FAILURE"
	NotYetValid                    SubIndication = "NOT_YET_VALID"
	EvidenceGraphFailure           SubIndication = "EVIDENCE_GRAPH_FAILURE"
)

// TimeSensitive reports whether the failure may disappear at an earlier
// control time, which is what past validation searches for.
func (s SubIndication) TimeSensitive() bool {
	switch s {
	case OutOfBoundsNoPOE, RevokedNoPOE, RevokedCANoPOE,
		CryptoConstraintsFailureNoPOE, NoAcceptableRevocationFound:
		return true
	}
	return false
}

// Structural reports whether the failure means required evidence is missing
// altogether rather than invalid.
func (s SubIndication) Structural() bool {
	switch s {
	case NoSigningCertificateFound, NoCertificateChainFound:
		return true
	}
	return false
}
