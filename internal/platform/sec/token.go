// Copyright (c) 2026 Identra. All rights reserved.

// Package sec provides cryptographic primitives and session-token management.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, JWT
// signing and verification) from the domain logic. It performs no I/O:
// signing and verifying are pure functions of the token bytes, the key
// material, and the codec's clock.
package sec

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification failure kinds.
//
// Callers map all of them to the same external "unauthenticated" outcome;
// they are distinguished only so the log pipeline can tell a truncated
// token apart from a stale or forged one.
var (
	// ErrMalformedToken indicates the token structure could not be parsed
	// (wrong segment count, undecodable payload). Detected before any
	// signature verification.
	ErrMalformedToken = errors.New("sec: malformed token")

	// ErrInvalidSignature indicates the signature does not match the
	// header and payload. Checked before expiry.
	ErrInvalidSignature = errors.New("sec: invalid token signature")

	// ErrExpiredToken indicates a structurally valid, correctly signed
	// token whose expiry has passed.
	ErrExpiredToken = errors.New("sec: token expired")
)

// Claims represents the payload embedded inside a signed session token.
//
// The custom claims (username, email, roles) are a snapshot taken at
// issuance time. They are advisory only: authorization always re-derives
// the live role list from storage, so these values may be stale without
// being a security problem.
type Claims struct {
	jwt.RegisteredClaims

	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// UserID returns the numeric subject of the token.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sec: non-numeric token subject %q: %w", c.Subject, err)
	}
	return id, nil
}

// TokenCodec signs and verifies compact session tokens using HS256.
//
// The codec is stateless and safe for concurrent use. Tokens have no
// server-side record; invalidation is purely by expiry.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration

	// now is swappable for deterministic expiry tests.
	now func() time.Time
}

// NewTokenCodec constructs a codec for the given symmetric secret, issuer
// and token lifetime.
func NewTokenCodec(secret, issuer string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the configured token lifetime.
func (codec *TokenCodec) TTL() time.Duration {
	return codec.ttl
}

// Sign issues a signed session token for the given identity snapshot.
// Issued-at and expiry are computed from the codec's clock and TTL.
func (codec *TokenCodec) Sign(userID int64, username, email string, roles []string) (string, error) {
	currentTime := codec.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(codec.ttl)),
		},
		Username: username,
		Email:    email,
		Roles:    roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the structure, signature and expiry of a token string,
// in that order, and returns its claims.
//
// Failures are classified as [ErrMalformedToken], [ErrInvalidSignature]
// or [ErrExpiredToken]. A malformed token short-circuits before signature
// verification; an expired token is only reported as such after its
// signature has been verified.
func (codec *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return codec.secret, nil
		},
		jwt.WithTimeFunc(codec.now),
		jwt.WithIssuer(codec.issuer),
	)

	if err != nil {
		return nil, classifyTokenError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformedToken
	}

	return claims, nil
}

// classifyTokenError maps jwt/v5 parse errors onto the codec's failure
// kinds. Order matters: structural failures win over signature failures,
// which win over expiry.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpiredToken, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
}
