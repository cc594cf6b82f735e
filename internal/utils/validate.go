package utils

import (
	"errors"
	"regexp"
	"strings"
)

// Registration input rules. Password: 12–16 characters drawn from
// letters, digits and ASCII punctuation, with at least one uppercase
// letter, one lowercase letter, one digit and one punctuation
// character. Email: local-part@domain.tld shape.

var (
	ErrInvalidPassword = errors.New("password must be 12-16 characters and contain an uppercase letter, a lowercase letter, a digit and a special character")
	ErrInvalidEmail    = errors.New("email must look like name@domain.tld")
)

const passwordSymbols = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var emailPattern = regexp.MustCompile(`^[-A-Za-z0-9.` + "`" + `?{}+_%]+@\w+(\.\w+)+$`)

// ValidatePassword enforces the registration password policy.
func ValidatePassword(password string) error {
	n := len(password)
	if n < 12 || n > 16 {
		return ErrInvalidPassword
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return ErrInvalidPassword
		}
	}
	if !upper || !lower || !digit || !symbol {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateEmail enforces the registration email shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}
