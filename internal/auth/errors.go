package auth

import "errors"

var (
	// ErrPasswordMismatch means the plaintext does not match the stored
	// digest (or the digest is malformed). Deliberately indistinguishable
	// from the caller's point of view.
	ErrPasswordMismatch = errors.New("auth: password mismatch")

	// ErrTokenMalformed means the token is structurally unparsable.
	ErrTokenMalformed = errors.New("auth: token malformed")

	// ErrTokenExpired means the token signature is fine but its expiry has
	// passed.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrInvalidSignature means the token was not signed with our secret.
	ErrInvalidSignature = errors.New("auth: invalid token signature")
)
