package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidAPIKey = errors.New("invalid API key")

// APIKeyVerifier gates token issuance on a shared API key. The key is never
// stored in the clear: the server is configured with a bcrypt hash and
// callers present the plaintext.
//
// An empty hash disables the check entirely, which keeps local development
// setups free of key management.
type APIKeyVerifier struct {
	hash []byte
}

// NewAPIKeyVerifier creates a verifier from a bcrypt hash. Pass an empty
// string to accept any key.
func NewAPIKeyVerifier(hash string) *APIKeyVerifier {
	return &APIKeyVerifier{hash: []byte(hash)}
}

// Enabled reports whether a key hash is configured.
func (v *APIKeyVerifier) Enabled() bool {
	return len(v.hash) > 0
}

// Verify checks the presented key against the configured hash.
func (v *APIKeyVerifier) Verify(key string) error {
	if !v.Enabled() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(key)); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}

// HashAPIKey produces a bcrypt hash suitable for the verifier's
// configuration. Exposed for provisioning tooling and tests.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
