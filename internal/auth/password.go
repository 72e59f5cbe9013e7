package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with bcrypt. The cost is injected so
// tests can run with bcrypt.MinCost.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher. Costs outside bcrypt's accepted range fall
// back to bcrypt.DefaultCost.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash produces a salted digest. bcrypt generates a fresh salt per call, so
// hashing the same password twice yields different digests.
func (h Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify compares plaintext against a stored digest. A mismatch and a
// malformed digest both surface as ErrPasswordMismatch; anything else is an
// unexpected subsystem failure and is returned as-is.
func (h Hasher) Verify(digest, password string) error {
	if digest == "" {
		return ErrPasswordMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword),
		errors.Is(err, bcrypt.ErrHashTooShort):
		return ErrPasswordMismatch
	default:
		var vErr bcrypt.InvalidHashPrefixError
		if errors.As(err, &vErr) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("verify password: %w", err)
	}
}
