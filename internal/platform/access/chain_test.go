// Copyright (c) 2026 Identra. All rights reserved.

package access_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhtran-dev/identra/internal/platform/access"
)

// mountProtected builds a chi router with a single route guarded by the policy.
// The handler records the identity it observed.
func mountProtected(t *testing.T, chain *access.Chain, pattern string, policy access.Policy) (*chi.Mux, *access.Identity) {
	t.Helper()

	var seen access.Identity

	router := chi.NewRouter()
	router.With(chain.Protect(policy)).Get(pattern, func(writer http.ResponseWriter, request *http.Request) {
		if identity := access.FromContext(request.Context()); identity != nil {
			seen = *identity
		}
		writer.WriteHeader(http.StatusOK)
	})

	return router, &seen
}

func do(router http.Handler, path, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestChain_PublicRoute verifies that public policies bypass authentication
entirely.
*/
func TestChain_PublicRoute(t *testing.T) {
	resolver, _, _ := newTestResolver(t)
	chain := access.NewChain(resolver)

	router, _ := mountProtected(t, chain, "/health", access.Anyone())

	recorder := do(router, "/health", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestChain_AuthenticatedRoute verifies that a bare policy requires a valid
token and attaches the identity to the context.
*/
func TestChain_AuthenticatedRoute(t *testing.T) {
	resolver, codec, _ := newTestResolver(t)
	chain := access.NewChain(resolver)

	router, seen := mountProtected(t, chain, "/me", access.Authenticated())

	// 1. Anonymous request is rejected
	recorder := do(router, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// 2. Authenticated request passes and sees its identity
	token, err := codec.Sign(2, "bob", "bob@identra.dev", []string{"user"})
	require.NoError(t, err)

	recorder = do(router, "/me", token)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(2), seen.ID)
}

/*
TestChain_RoleRequirement verifies the role stage: any shared role between
the policy and the identity grants access, none means 403.
*/
func TestChain_RoleRequirement(t *testing.T) {
	resolver, codec, _ := newTestResolver(t)
	chain := access.NewChain(resolver)

	router, _ := mountProtected(t, chain, "/admin", access.AnyOf("admin", "manager"))

	adminToken, err := codec.Sign(1, "admin", "admin@identra.dev", nil)
	require.NoError(t, err)
	userToken, err := codec.Sign(2, "bob", "bob@identra.dev", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(router, "/admin", adminToken).Code)
	assert.Equal(t, http.StatusForbidden, do(router, "/admin", userToken).Code)
}

/*
TestChain_OwnershipOverride verifies that a role denial is overridden when
the caller owns the resource named in the URL.
*/
func TestChain_OwnershipOverride(t *testing.T) {
	resolver, codec, _ := newTestResolver(t)
	chain := access.NewChain(resolver)

	router, _ := mountProtected(t, chain, "/users/{id}", access.SelfOr("admin"))

	bobToken, err := codec.Sign(2, "bob", "bob@identra.dev", nil)
	require.NoError(t, err)
	adminToken, err := codec.Sign(1, "admin", "admin@identra.dev", nil)
	require.NoError(t, err)

	// 1. Bob may access his own record despite lacking the admin role
	assert.Equal(t, http.StatusOK, do(router, "/users/2", bobToken).Code)

	// 2. Bob may not access someone else's record
	assert.Equal(t, http.StatusForbidden, do(router, "/users/1", bobToken).Code)

	// 3. The admin role reaches any record
	assert.Equal(t, http.StatusOK, do(router, "/users/2", adminToken).Code)
}

/*
TestChain_RevokedRoleTakesEffect verifies that authorization always uses the
roles currently in storage, so a revocation applies to outstanding tokens.
*/
func TestChain_RevokedRoleTakesEffect(t *testing.T) {
	resolver, codec, store := newTestResolver(t)
	chain := access.NewChain(resolver)

	router, _ := mountProtected(t, chain, "/admin", access.AnyOf("admin"))

	token, err := codec.Sign(1, "admin", "admin@identra.dev", []string{"admin"})
	require.NoError(t, err)

	// 1. Works while the role is held
	assert.Equal(t, http.StatusOK, do(router, "/admin", token).Code)

	// 2. Revoke the role in storage; the same token is now insufficient
	store.identities[1].Roles = []string{"user"}
	assert.Equal(t, http.StatusForbidden, do(router, "/admin", token).Code)
}

/*
TestChain_DeactivationTakesEffect verifies that deactivating an account
locks out outstanding tokens on their next request.
*/
func TestChain_DeactivationTakesEffect(t *testing.T) {
	resolver, codec, store := newTestResolver(t)
	chain := access.NewChain(resolver)

	router, _ := mountProtected(t, chain, "/me", access.Authenticated())

	token, err := codec.Sign(2, "bob", "bob@identra.dev", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(router, "/me", token).Code)

	store.identities[2].IsActive = false
	assert.Equal(t, http.StatusUnauthorized, do(router, "/me", token).Code)
}
