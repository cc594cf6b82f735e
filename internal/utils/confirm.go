package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// ErrNotValidConfirmation is returned when a presented confirmation
// token does not match the digest derived from the user's email.
var ErrNotValidConfirmation = errors.New("email confirmation is not valid")

// DeriveConfirmationToken returns the URL-safe confirmation credential
// for an email address: a plain SHA-256 hex digest. It is deliberately
// not secret-keyed; the security rests on the link being delivered to
// the registered mailbox only.
func DeriveConfirmationToken(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}

// CheckConfirmation recomputes the digest for email and compares it
// with the presented token in constant time.
func CheckConfirmation(email, token string) error {
	derived := DeriveConfirmationToken(email)
	if subtle.ConstantTimeCompare([]byte(derived), []byte(token)) != 1 {
		return ErrNotValidConfirmation
	}
	return nil
}
