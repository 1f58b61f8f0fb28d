// Copyright (c) 2026 Identra. All rights reserved.

/*
Package access implements request identity resolution and route authorization.

It is split into two cooperating halves:

  - Resolver: turns a bearer token into a live [Identity] by re-reading the
    account from storage on every request. Token claims are treated as a
    pointer to the account, never as the source of truth for roles or status.
  - Chain: evaluates a route's [Policy] against the resolved identity through
    an ordered set of decision stages (authentication, roles, ownership).

Handlers never inspect tokens themselves. They read the resolved identity
from the request context via [FromContext] or [RequireIdentity].
*/
package access

import (
	"context"
	"net/http"

	"github.com/anhtran-dev/identra/internal/platform/apperr"
	"github.com/anhtran-dev/identra/internal/platform/ctxkey"
)

// Identity is the per-request view of an authenticated account.
//
// Roles and the active flag are loaded from storage at resolution time, so a
// role revocation or account deactivation takes effect on the next request
// even if the client still holds a token minted before the change.
type Identity struct {
	ID       int64
	Username string
	Email    string
	Roles    []string
	IsActive bool
}

// HasRole reports whether the identity carries the named role.
func (i *Identity) HasRole(name string) bool {
	for _, role := range i.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the identity carries at least one of the named roles.
func (i *Identity) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if i.HasRole(name) {
			return true
		}
	}
	return false
}

// WithIdentity returns a new context carrying the resolved identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, ctxkey.KeyIdentity, identity)
}

// FromContext retrieves the resolved identity from the context.
//
// # Returns
//   - The [*Identity] if the request passed through an authenticated route.
//   - nil for anonymous requests.
func FromContext(ctx context.Context) *Identity {
	identity, ok := ctx.Value(ctxkey.KeyIdentity).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// RequireIdentity retrieves the resolved identity or fails with 401.
//
// Handlers on protected routes use this instead of [FromContext] so that a
// misconfigured route (handler mounted without its policy) fails closed.
func RequireIdentity(request *http.Request) (*Identity, error) {
	identity := FromContext(request.Context())
	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return identity, nil
}
