// Package auth issues and validates the signed session tokens that stand in
// for server-side sessions.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every token failure: malformed input, bad
// signature, expiry, or subject mismatch. Callers are never told which check
// failed.
var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	jwt.RegisteredClaims
}

// Tokens signs and verifies session tokens with a process-wide symmetric
// secret. It holds no mutable state and is safe for concurrent use.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// New creates a Tokens using the given HMAC secret and token lifetime.
func New(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{secret: secret, ttl: ttl}
}

// Issue mints a signed token asserting the given subject until now+TTL.
func (t *Tokens) Issue(subject string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})
	return tok.SignedString(t.secret)
}

// ParseSubject extracts the subject from a verified token.
func (t *Tokens) ParseSubject(raw string) (string, error) {
	c, err := t.parse(raw)
	if err != nil {
		return "", err
	}
	if c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}

// Valid reports whether raw is a well-formed, correctly signed, unexpired
// token issued for the given subject.
func (t *Tokens) Valid(raw, subject string) bool {
	c, err := t.parse(raw)
	if err != nil {
		return false
	}
	return c.Subject == subject
}

func (t *Tokens) parse(raw string) (*claims, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(raw, c, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return c, nil
}
