// Package jwtx wraps github.com/golang-jwt/jwt/v5 with the small surface the
// session layer needs: signing and verifying HS256 session tokens.
package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrExpiredToken = errors.New("jwtx: token expired")
)

// Claims carries the session claims the service cares about.
type Claims struct {
	Subject   string // user id
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Signer mints session tokens.
type Signer interface {
	Sign(claims Claims) (string, error)
}

// Verifier validates session tokens and returns their claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256 is a symmetric signer/verifier for session tokens. A single shared
// secret is enough here: the service is both the only issuer and the only
// consumer of its session tokens.
type HS256 struct {
	Secret []byte
	Issuer string
}

func NewHS256(secret []byte, issuer string) *HS256 {
	return &HS256{Secret: secret, Issuer: issuer}
}

func (h *HS256) Sign(claims Claims) (string, error) {
	if len(h.Secret) == 0 {
		return "", errors.New("jwtx: signing secret is empty")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   claims.Subject,
		Issuer:    h.Issuer,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})

	signed, err := token.SignedString(h.Secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

func (h *HS256) Verify(raw string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return h.Secret, nil
	}, jwt.WithIssuer(h.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}

	rc, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || rc.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{
		Subject: rc.Subject,
		Issuer:  rc.Issuer,
	}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Time
	}
	return claims, nil
}
