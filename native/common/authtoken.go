package common

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrExecutorTokenInvalid covers every way a slash-call token can fail to
// verify: bad signature, expiry, or subject mismatch.
var ErrExecutorTokenInvalid = errors.New("common: executor token invalid")

// IssueExecutorToken signs a short-lived HS256 token asserting that the
// bearer is entitled to act as executorPrincipal, the same shape as the
// gateway JWT checks repurposed here to authenticate the Claim Engine's
// cross-process dispatch of slash to the Pool Engine.
func IssueExecutorToken(secret []byte, executorPrincipal string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   executorPrincipal,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyExecutorToken validates the token's signature, expiry, and that
// its subject claim equals the configured executor_principal.
func VerifyExecutorToken(secret []byte, tokenString string, expectedPrincipal string, now time.Time) error {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrExecutorTokenInvalid
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !parsed.Valid {
		return ErrExecutorTokenInvalid
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return ErrExecutorTokenInvalid
	}
	if claims.Subject != expectedPrincipal {
		return ErrExecutorTokenInvalid
	}
	return nil
}
