// Copyright (c) 2026 Identra. All rights reserved.

package access

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anhtran-dev/identra/internal/platform/apperr"
	"github.com/anhtran-dev/identra/internal/platform/constants"
	"github.com/anhtran-dev/identra/internal/platform/dberr"
	"github.com/anhtran-dev/identra/internal/platform/sec"
)

// IdentityStore loads the live account state behind a token subject.
//
// # Why an interface?
//
// Defining IdentityStore here decouples the resolver from the users storage
// implementation and lets tests inject an in-memory store.
type IdentityStore interface {
	FindIdentity(ctx context.Context, id int64) (*Identity, error)
}

// Resolver authenticates requests by verifying the bearer token and
// re-reading the account from storage.
type Resolver struct {
	codec *sec.TokenCodec
	store IdentityStore
}

// NewResolver wires a token codec to an identity store.
func NewResolver(codec *sec.TokenCodec, store IdentityStore) *Resolver {
	return &Resolver{codec: codec, store: store}
}

// Resolve authenticates a single request.
//
// # Flow
//  1. Extract the 'Authorization: Bearer <token>' header.
//  2. Verify the token's integrity, signature and expiry.
//  3. Load the account the token points at from storage.
//  4. Reject deactivated accounts.
//
// Every failure maps to HTTP 401. Roles on the returned identity come from
// storage, not from the token, so stale role claims are never honored.
func (r *Resolver) Resolve(request *http.Request) (*Identity, error) {
	authHeader := request.Header.Get(constants.HeaderAuthorization)

	// ── 1. Header Extraction ──────────────────────────────────────────────
	if authHeader == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return nil, apperr.Unauthorized("Invalid authorization format")
	}

	// ── 2. Token Verification ─────────────────────────────────────────────
	claims, err := r.codec.Verify(parts[1])
	if err != nil {
		if errors.Is(err, sec.ErrExpiredToken) {
			return nil, apperr.Unauthorized("Token has expired").WithCause(err)
		}
		return nil, apperr.Unauthorized("Invalid token").WithCause(err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthorized("Invalid token").WithCause(err)
	}

	// ── 3. Live Account Lookup ────────────────────────────────────────────
	identity, err := r.store.FindIdentity(request.Context(), userID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Account no longer exists").WithCause(err)
		}
		return nil, err
	}

	// ── 4. Active Flag Check ──────────────────────────────────────────────
	if !identity.IsActive {
		return nil, apperr.Unauthorized("Account disabled")
	}

	return identity, nil
}
