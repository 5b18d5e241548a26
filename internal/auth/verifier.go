package auth

import (
	"errors"
	"fmt"

	"promo-dispenser/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// maxTokenLength is bcrypt's input limit.
const maxTokenLength = 72

// Verifier checks a presented access token.
// Verify returns nil for an accepted token, model.ErrMissingCredential for an
// empty one and model.ErrInvalidCredential for anything else.
type Verifier interface {
	Verify(token string) error
}

// bcryptVerifier holds only the bcrypt hash of the shared secret.
type bcryptVerifier struct {
	hash []byte
}

// NewBcryptVerifier hashes secret once with the given cost.
// The plaintext is not kept.
func NewBcryptVerifier(secret string, cost int) (Verifier, error) {
	if secret == "" {
		return nil, errors.New("access token must not be empty")
	}
	if len(secret) > maxTokenLength {
		return nil, fmt.Errorf("access token must be at most %d bytes", maxTokenLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash access token: %w", err)
	}

	return &bcryptVerifier{hash: hash}, nil
}

// NewBcryptVerifierFromHash uses a hash produced elsewhere, e.g. by
// `htpasswd -bnBC 10 "" <token>`.
func NewBcryptVerifierFromHash(hash string) (Verifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid access token hash: %w", err)
	}

	return &bcryptVerifier{hash: []byte(hash)}, nil
}

// Verify compares token against the stored hash.
func (v *bcryptVerifier) Verify(token string) error {
	if token == "" {
		return model.ErrMissingCredential
	}

	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(token)); err != nil {
		return model.ErrInvalidCredential
	}

	return nil
}
