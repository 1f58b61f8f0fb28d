// Copyright (c) 2026 Identra. All rights reserved.

package access_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhtran-dev/identra/internal/platform/access"
	"github.com/anhtran-dev/identra/internal/platform/apperr"
	"github.com/anhtran-dev/identra/internal/platform/dberr"
	"github.com/anhtran-dev/identra/internal/platform/sec"
)

// memoryStore is an in-memory IdentityStore for tests.
type memoryStore struct {
	identities map[int64]*access.Identity
}

func (s *memoryStore) FindIdentity(_ context.Context, id int64) (*access.Identity, error) {
	identity, ok := s.identities[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	// Return a copy so tests can mutate the stored record between requests.
	clone := *identity
	return &clone, nil
}

func newTestResolver(t *testing.T) (*access.Resolver, *sec.TokenCodec, *memoryStore) {
	t.Helper()

	codec := sec.NewTokenCodec("test-secret-at-least-32-chars-long", "identra", time.Hour)
	store := &memoryStore{identities: map[int64]*access.Identity{
		1: {ID: 1, Username: "admin", Email: "admin@identra.dev", Roles: []string{"admin"}, IsActive: true},
		2: {ID: 2, Username: "bob", Email: "bob@identra.dev", Roles: []string{"user"}, IsActive: true},
		3: {ID: 3, Username: "carol", Email: "carol@identra.dev", Roles: []string{"user"}, IsActive: false},
	}}

	return access.NewResolver(codec, store), codec, store
}

func requestWithToken(token string) *http.Request {
	request := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	return request
}

/*
TestResolver_Resolve_Success verifies the happy path: a valid token for an
active account yields a live identity.
*/
func TestResolver_Resolve_Success(t *testing.T) {
	resolver, codec, _ := newTestResolver(t)

	token, err := codec.Sign(2, "bob", "bob@identra.dev", []string{"user"})
	require.NoError(t, err)

	identity, err := resolver.Resolve(requestWithToken(token))
	require.NoError(t, err)

	assert.Equal(t, int64(2), identity.ID)
	assert.Equal(t, "bob", identity.Username)
	assert.Equal(t, []string{"user"}, identity.Roles)
}

/*
TestResolver_Resolve_HeaderErrors checks the 401 responses for missing or
malformed Authorization headers.
*/
func TestResolver_Resolve_HeaderErrors(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing_header", ""},
		{"not_bearer", "Basic dXNlcjpwYXNz"},
		{"empty_token", "Bearer "},
		{"garbage_token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			_, err := resolver.Resolve(request)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)
		})
	}
}

/*
TestResolver_Resolve_InactiveAccount verifies that a valid token for a
deactivated account is rejected with 401.
*/
func TestResolver_Resolve_InactiveAccount(t *testing.T) {
	resolver, codec, _ := newTestResolver(t)

	token, err := codec.Sign(3, "carol", "carol@identra.dev", []string{"user"})
	require.NoError(t, err)

	_, err = resolver.Resolve(requestWithToken(token))
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)
	assert.Equal(t, "Account disabled", ae.Message)
}

/*
TestResolver_Resolve_DeletedAccount verifies that a token whose subject no
longer exists in storage is rejected with 401, not 404.
*/
func TestResolver_Resolve_DeletedAccount(t *testing.T) {
	resolver, codec, _ := newTestResolver(t)

	token, err := codec.Sign(99, "ghost", "ghost@identra.dev", nil)
	require.NoError(t, err)

	_, err = resolver.Resolve(requestWithToken(token))
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)
}

/*
TestResolver_Resolve_StaleTokenRoles verifies that roles embedded in the
token are ignored: the identity always carries the roles currently stored.
*/
func TestResolver_Resolve_StaleTokenRoles(t *testing.T) {
	resolver, codec, store := newTestResolver(t)

	// Token minted while bob was an admin.
	token, err := codec.Sign(2, "bob", "bob@identra.dev", []string{"admin"})
	require.NoError(t, err)

	// Bob has since been demoted to plain user in storage.
	store.identities[2].Roles = []string{"user"}

	identity, err := resolver.Resolve(requestWithToken(token))
	require.NoError(t, err)

	assert.Equal(t, []string{"user"}, identity.Roles)
	assert.False(t, identity.HasRole("admin"))
}
