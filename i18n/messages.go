package i18n

// Signature acceptance.
var (
	SignatureIntact           = pair("SAV_SIG_INTACT")
	SigningCertificateFound   = pair("SAV_SIGNING_CERT_FOUND")
	SignatureCryptoConstraint = pair("SAV_CRYPTO")
)

// Certificate validation.
var (
	TrustAnchorReached     = pair("XCV_TRUST_ANCHOR")
	CertificateIntact      = pair("XCV_SIG_INTACT")
	ValidityRange          = pair("XCV_VALIDITY_RANGE")
	KeyUsage               = pair("XCV_KEY_USAGE")
	CertificatePolicy      = pair("XCV_CERT_POLICY")
	RevocationPresent      = pair("XCV_REVOCATION_PRESENT")
	RevocationAcceptable   = pair("XCV_REVOCATION_ACCEPTABLE")
	NotRevoked             = pair("XCV_NOT_REVOKED")
	NotOnHold              = pair("XCV_NOT_ON_HOLD")
	CertificateCryptoCheck = pair("XCV_CRYPTO")
)

// Revocation acceptance.
var (
	RevocationTarget      = pair("RAC_TARGET")
	RevocationIntact      = pair("RAC_SIG_INTACT")
	RevocationIssuer      = pair("RAC_ISSUER")
	RevocationResponderID = pair("RAC_RESPONDER_ID")
	RevocationNonce       = pair("RAC_NONCE")
	RevocationStatusKnown = pair("RAC_STATUS_KNOWN")
	RevocationConsistent  = pair("RAC_CONSISTENT")
	RevocationFresh       = pair("RAC_FRESH")
	RevocationCryptoCheck = pair("RAC_CRYPTO")
)

// Timestamp acceptance.
var (
	TimestampIntact      = pair("TST_SIG_INTACT")
	TimestampSignerFound = pair("TST_SIGNER_FOUND")
	TimestampChainValid  = pair("TST_CHAIN_VALID")
	TimestampCryptoCheck = pair("TST_CRYPTO")
)

// Past signature validation.
var (
	ControlTimeValid     = pair("PSV_CONTROL_TIME_VALID")
	ValidityWindowOpen   = pair("PSV_WINDOW_OPEN")
	SignaturePOEInWindow = pair("PSV_SIG_POE_IN_WINDOW")
	ControlTimeFound     = pair("PSV_CONTROL_TIME_FOUND")
	POENotBeforeIssuance = pair("PSV_POE_AFTER_ISSUANCE")
)

var english = map[MessageTag]string{
	SignatureIntact.OK:           "The signature value is intact.",
	SignatureIntact.KO:           "The signature value is not intact.",
	SigningCertificateFound.OK:   "The signing certificate has been identified.",
	SigningCertificateFound.KO:   "The signing certificate could not be identified.",
	SignatureCryptoConstraint.OK: "The signature algorithm %s with a %d-bit key is acceptable at %s.",
	SignatureCryptoConstraint.KO: "The signature algorithm %s with a %d-bit key is not acceptable at %s.",

	TrustAnchorReached.OK:     "The certificate chain of %s reaches a trust anchor.",
	TrustAnchorReached.KO:     "The certificate chain of %s does not reach a trust anchor.",
	CertificateIntact.OK:      "The signature on certificate %s is intact.",
	CertificateIntact.KO:      "The signature on certificate %s is not intact.",
	ValidityRange.OK:          "Certificate %s is inside its validity range at %s.",
	ValidityRange.KO:          "Certificate %s is outside its validity range at %s.",
	KeyUsage.OK:               "The key usage of certificate %s fits the %s role.",
	KeyUsage.KO:               "The key usage of certificate %s does not fit the %s role.",
	CertificatePolicy.OK:      "Certificate %s satisfies the condition %s.",
	CertificatePolicy.KO:      "Certificate %s does not satisfy the condition %s.",
	RevocationPresent.OK:      "Revocation data is present for certificate %s.",
	RevocationPresent.KO:      "No revocation data is present for certificate %s.",
	RevocationAcceptable.OK:   "Acceptable revocation data was found for certificate %s at %s.",
	RevocationAcceptable.KO:   "No acceptable revocation data was found for certificate %s at %s.",
	NotRevoked.OK:             "Certificate %s is not revoked at %s.",
	NotRevoked.KO:             "Certificate %s is revoked at %s.",
	NotOnHold.OK:              "Certificate %s is not on hold at %s.",
	NotOnHold.KO:              "Certificate %s is on hold at %s.",
	CertificateCryptoCheck.OK: "The algorithm signing certificate %s is acceptable at %s.",
	CertificateCryptoCheck.KO: "The algorithm signing certificate %s is not acceptable at %s.",

	RevocationTarget.OK:      "Revocation data %s is about the certificate.",
	RevocationTarget.KO:      "Revocation data %s is about another certificate.",
	RevocationIntact.OK:      "The signature on revocation data %s is intact.",
	RevocationIntact.KO:      "The signature on revocation data %s is not intact.",
	RevocationIssuer.OK:      "Revocation data %s is issued by an authorised issuer.",
	RevocationIssuer.KO:      "Revocation data %s is not issued by an authorised issuer.",
	RevocationResponderID.OK: "The responder of revocation data %s matches its signing certificate.",
	RevocationResponderID.KO: "The responder of revocation data %s does not match its signing certificate.",
	RevocationNonce.OK:       "The nonce of revocation data %s matches the request.",
	RevocationNonce.KO:       "The nonce of revocation data %s does not match the request.",
	RevocationStatusKnown.OK: "Revocation data %s states a known status.",
	RevocationStatusKnown.KO: "Revocation data %s states an unknown status.",
	RevocationConsistent.OK:  "Revocation data %s was issued while the certificate was valid.",
	RevocationConsistent.KO:  "Revocation data %s was issued outside the certificate validity.",
	RevocationFresh.OK:       "Revocation data %s is fresh at %s.",
	RevocationFresh.KO:       "Revocation data %s is not fresh at %s.",
	RevocationCryptoCheck.OK: "The algorithm signing revocation data %s is acceptable at %s.",
	RevocationCryptoCheck.KO: "The algorithm signing revocation data %s is not acceptable at %s.",

	TimestampIntact.OK:      "The signature of timestamp %s is intact.",
	TimestampIntact.KO:      "The signature of timestamp %s is not intact.",
	TimestampSignerFound.OK: "The signing certificate of timestamp %s has been identified.",
	TimestampSignerFound.KO: "The signing certificate of timestamp %s could not be identified.",
	TimestampChainValid.OK:  "The certificate chain of timestamp %s is valid at its production time %s.",
	TimestampChainValid.KO:  "The certificate chain of timestamp %s is not valid at its production time %s.",
	TimestampCryptoCheck.OK: "The algorithm signing timestamp %s is acceptable at %s.",
	TimestampCryptoCheck.KO: "The algorithm signing timestamp %s is not acceptable at %s.",

	ControlTimeValid.OK:     "The certificate chain is valid at control time %s.",
	ControlTimeValid.KO:     "The certificate chain is not valid at control time %s.",
	ValidityWindowOpen.OK:   "Control time %s is inside the validity window ending %s.",
	ValidityWindowOpen.KO:   "Control time %s is after the validity window ending %s.",
	SignaturePOEInWindow.OK: "The signature is proven to exist at %s, within the validity window ending %s.",
	SignaturePOEInWindow.KO: "The signature is only proven to exist at %s, after the validity window ending %s.",
	ControlTimeFound.OK:     "A control time was found before %s.",
	ControlTimeFound.KO:     "No control time was found before %s.",
	POENotBeforeIssuance.OK: "The signature proof of existence %s is not before the issuance of the signing certificate.",
	POENotBeforeIssuance.KO: "The signature proof of existence %s is before the issuance of the signing certificate.",
}
