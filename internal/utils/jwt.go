package utils // package utils provides helpers for token issuance, hashing and validation

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed short-lived JWT presented on every
// protected request. Claims carry the user id as subject plus the
// display name, so most requests never touch the database.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // UTC expiration time
}

// RefreshToken is the longer-lived JWT exchanged for a new pair at
// /api/user/refresh. Raw goes back to the client; the database keeps
// only the SHA-256 hash of Raw.
type RefreshToken struct {
	Raw string    // raw signed token returned to the client
	Exp time.Time // UTC expiration time
}

// newJTI returns a random hex token id. Every issued JWT gets one, so
// two tokens minted for the same user in the same second still differ
// and rotating one never invalidates or revives the other.
func newJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewAccessToken builds and signs an HS256 JWT for a user. TTL comes
// from configuration; tests shrink it to seconds to exercise expiry.
// Claims: sub (user id), username, fresh, jti, exp, iat.
func NewAccessToken(secret string, userID uint64, username string, ttl time.Duration) (AccessToken, error) {
	jti, err := newJTI()
	if err != nil {
		return AccessToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"fresh":    true,
		"jti":      jti,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT carrying the user id
// as subject plus a random jti. The jti is what makes each issued
// value unique; without it two refreshes in the same second would
// produce equal tokens and a rotated-away value could still match
// the stored row.
func NewRefreshToken(secret string, userID uint64, ttl time.Duration) (RefreshToken, error) {
	jti, err := newJTI()
	if err != nil {
		return RefreshToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": jti,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: signed, Exp: exp}, nil
}

// ParseToken verifies signature and expiry of a serialized token and
// returns its claims. Tokens signed with anything but HMAC are
// rejected.
func ParseToken(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SubjectID extracts the user id from the sub claim. Numeric claims
// decode as float64.
func SubjectID(claims jwt.MapClaims) (uint64, bool) {
	switch v := claims["sub"].(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}

// HashTokenRaw returns the SHA-256 hex digest of a raw token value.
// Only the digest is persisted, so a leaked refresh_tokens row cannot
// be replayed.
func HashTokenRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
