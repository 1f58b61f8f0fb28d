// Copyright (c) 2026 Identra. All rights reserved.

/*
Package auth implements credential verification and session token issuance.

It owns the login, registration and token refresh flows. Authorization of
individual routes lives elsewhere (the access package); this package's job
ends once a token is minted or refused.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh).
  - CredentialStore: Abstracted account lookup backed by Postgres.
  - AttemptLimiter: Redis-backed brute-force throttle per username and IP.
  - Trail: Every verification attempt lands in the audit trail.

Failed verifications deliberately collapse into one client-facing message so
that responses never reveal whether a username exists.
*/
package auth

import (
	"context"
	"time"
)

// Account is the credential-bearing view of a user record, including the
// role names needed to mint a token.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	Roles        []string
	LastLoginAt  *time.Time
}

// CredentialStore loads and mutates accounts for the verification flows.
type CredentialStore interface {
	// FindByUsername returns the account with its roles, or a not-found error.
	FindByUsername(context context.Context, username string) (*Account, error)

	// FindByEmail returns the account with its roles, or a not-found error.
	FindByEmail(context context.Context, email string) (*Account, error)

	// FindByID returns the account with its roles, or a not-found error.
	FindByID(context context.Context, id int64) (*Account, error)

	// CreateAccount persists a new account and fills in its generated ID.
	CreateAccount(context context.Context, account *Account, roleNames []string) error

	// TouchLastLogin stamps the account's last successful login time.
	TouchLastLogin(context context.Context, id int64) error
}

// AttemptLimiter throttles repeated failed logins per username and IP.
//
// Implementations should fail open: if the limiter backend is unreachable,
// login proceeds on credentials alone.
type AttemptLimiter interface {
	TooManyFailures(context context.Context, username, ip string) (bool, error)
	RecordFailure(context context.Context, username, ip string) error
	Reset(context context.Context, username, ip string) error
}

// RequestMeta carries the client facts recorded alongside audit events.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// DefaultRole is assigned to accounts registered through the public endpoint.
const DefaultRole = "user"

// Field names for validation
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)
