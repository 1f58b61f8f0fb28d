// Copyright (c) 2026 Identra. All rights reserved.

package access

import (
	"net/http"

	"github.com/anhtran-dev/identra/internal/platform/apperr"
	"github.com/anhtran-dev/identra/internal/platform/respond"
)

// verdict is a single stage's contribution to the access decision.
type verdict int

const (
	// verdictSkip means the stage does not apply to this policy.
	verdictSkip verdict = iota
	// verdictAllow terminates evaluation with access granted.
	verdictAllow
	// verdictDeny records a denial that a later stage may override.
	verdictDeny
)

// stage evaluates one aspect of a policy against the resolved identity.
type stage func(policy Policy, identity *Identity, request *http.Request) verdict

// stages run in order. A verdictAllow from any stage grants access
// immediately; a verdictDeny stands only if no later stage allows.
var stages = []stage{
	roleStage,
	ownershipStage,
}

// roleStage grants access when the identity holds at least one required
// role. Its denial is overridable by the ownership stage.
func roleStage(policy Policy, identity *Identity, _ *http.Request) verdict {
	if len(policy.Roles) == 0 {
		return verdictSkip
	}
	if identity.HasAnyRole(policy.Roles...) {
		return verdictAllow
	}
	return verdictDeny
}

// ownershipStage grants access when the caller is the resource owner.
// It never denies on its own; a failed owner lookup simply leaves any
// earlier role denial standing.
func ownershipStage(policy Policy, identity *Identity, request *http.Request) verdict {
	if policy.Owner == nil {
		return verdictSkip
	}

	ownerID, err := policy.Owner(request)
	if err != nil {
		return verdictSkip
	}

	if ownerID == identity.ID {
		return verdictAllow
	}
	return verdictSkip
}

// Chain turns route policies into HTTP middleware.
type Chain struct {
	resolver *Resolver
}

// NewChain creates a policy evaluation chain backed by the given resolver.
func NewChain(resolver *Resolver) *Chain {
	return &Chain{resolver: resolver}
}

// Protect returns middleware enforcing the given policy on a route.
//
// # Flow
//  1. Public policies pass through untouched.
//  2. The resolver authenticates the request (HTTP 401 on failure).
//  3. The resolved identity is attached to the request context.
//  4. Decision stages run in order (HTTP 403 when none allows).
func (c *Chain) Protect(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Public Short-Circuit ───────────────────────────────────
			if policy.Public {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Authentication ─────────────────────────────────────────
			identity, err := c.resolver.Resolve(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────
			request = request.WithContext(WithIdentity(request.Context(), identity))

			// ── 4. Decision Stages ────────────────────────────────────────
			if err := evaluate(policy, identity, request); err != nil {
				respond.Error(writer, request, err)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// evaluate runs the decision stages for one request.
//
// An authenticated identity passes by default; a stage must deny (without a
// later stage allowing) for the request to be rejected.
func evaluate(policy Policy, identity *Identity, request *http.Request) error {
	denied := false

	for _, s := range stages {
		switch s(policy, identity, request) {
		case verdictAllow:
			return nil
		case verdictDeny:
			denied = true
		}
	}

	if denied {
		return apperr.Forbidden("Insufficient permissions")
	}
	return nil
}
