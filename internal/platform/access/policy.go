// Copyright (c) 2026 Identra. All rights reserved.

package access

import (
	"net/http"

	requestutil "github.com/anhtran-dev/identra/internal/platform/request"
)

// OwnerFunc extracts the resource owner's user ID from a request.
//
// It runs only after authentication succeeds, so implementations may assume
// the route matched and focus on locating the owner (usually a URL parameter
// or a storage lookup).
type OwnerFunc func(request *http.Request) (int64, error)

// Policy declares, at route registration time, who may call a route.
//
// # Evaluation Order
//
// The chain evaluates a policy in fixed stages:
//
//  1. Public short-circuit: anonymous access, nothing else runs.
//  2. Authentication: the bearer token must resolve to an active identity.
//  3. Roles: if Roles is non-empty, the identity must hold at least one.
//  4. Ownership: a role denial is overridden when Owner reports that the
//     caller is the resource owner.
//
// A zero-value Policy means "any authenticated user".
type Policy struct {
	// Public allows anonymous access. All other fields are ignored.
	Public bool

	// Roles lists role names of which the caller must hold at least one.
	// Empty means no role requirement.
	Roles []string

	// Owner optionally identifies the resource owner, allowing self-access
	// even when the caller lacks the required roles.
	Owner OwnerFunc
}

// Anyone returns a policy granting anonymous access.
func Anyone() Policy {
	return Policy{Public: true}
}

// Authenticated returns a policy requiring only a valid identity.
func Authenticated() Policy {
	return Policy{}
}

// AnyOf returns a policy requiring at least one of the given roles.
func AnyOf(roles ...string) Policy {
	return Policy{Roles: roles}
}

// SelfOr returns a policy allowing the given roles, or the resource owner
// identified by the "id" URL parameter.
func SelfOr(roles ...string) Policy {
	return Policy{Roles: roles, Owner: OwnerFromParam("id")}
}

// OwnerFromParam builds an [OwnerFunc] that reads the owner's user ID from
// the named chi URL parameter.
func OwnerFromParam(name string) OwnerFunc {
	return func(request *http.Request) (int64, error) {
		return requestutil.IntParam(request, name)
	}
}
