package models

import (
	"crypto/sha256"
	"encoding/hex"
)

// Credential is the API key presented to the billing service in the X-API-Key header.
// It is never logged; diagnostics use Fingerprint.
type Credential string

// Fingerprint returns a stable, non-reversible identifier for the credential.
func (c Credential) Fingerprint() string {
	if c == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(c))
	return hex.EncodeToString(sum[:])[:12]
}

// String hides the credential from accidental %v formatting.
func (c Credential) String() string {
	if c == "" {
		return ""
	}
	return "cred:" + c.Fingerprint()
}
