// Copyright (c) 2026 Identra. All rights reserved.

package auth

import (
	stdctx "context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhtran-dev/identra/internal/audit"
	"github.com/anhtran-dev/identra/internal/platform/apperr"
	"github.com/anhtran-dev/identra/internal/platform/dberr"
	"github.com/anhtran-dev/identra/internal/platform/sec"
)

// # Test Doubles

// fakeCredentialStore is an in-memory CredentialStore.
type fakeCredentialStore struct {
	accounts    map[int64]*Account
	lookups     int
	lastLoginID int64
	createErr   error
}

func (s *fakeCredentialStore) find(match func(*Account) bool) (*Account, error) {
	s.lookups++
	for _, account := range s.accounts {
		if match(account) {
			clone := *account
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (s *fakeCredentialStore) FindByUsername(_ stdctx.Context, username string) (*Account, error) {
	return s.find(func(a *Account) bool { return a.Username == username })
}

func (s *fakeCredentialStore) FindByEmail(_ stdctx.Context, email string) (*Account, error) {
	return s.find(func(a *Account) bool { return a.Email == email })
}

func (s *fakeCredentialStore) FindByID(_ stdctx.Context, id int64) (*Account, error) {
	return s.find(func(a *Account) bool { return a.ID == id })
}

func (s *fakeCredentialStore) CreateAccount(_ stdctx.Context, account *Account, _ []string) error {
	if s.createErr != nil {
		return s.createErr
	}
	account.ID = int64(len(s.accounts) + 1)
	clone := *account
	s.accounts[account.ID] = &clone
	return nil
}

func (s *fakeCredentialStore) TouchLastLogin(_ stdctx.Context, id int64) error {
	s.lastLoginID = id
	return nil
}

// fakeLimiter is an in-memory AttemptLimiter.
type fakeLimiter struct {
	failures  map[string]int
	threshold int
	resets    int
}

func limiterKey(username, ip string) string { return username + "|" + ip }

func (l *fakeLimiter) TooManyFailures(_ stdctx.Context, username, ip string) (bool, error) {
	return l.failures[limiterKey(username, ip)] >= l.threshold, nil
}

func (l *fakeLimiter) RecordFailure(_ stdctx.Context, username, ip string) error {
	l.failures[limiterKey(username, ip)]++
	return nil
}

func (l *fakeLimiter) Reset(_ stdctx.Context, username, ip string) error {
	l.resets++
	delete(l.failures, limiterKey(username, ip))
	return nil
}

// recordingAuditStore captures appended audit events.
type recordingAuditStore struct {
	mu        sync.Mutex
	events    []*audit.Event
	appendErr error
}

func (s *recordingAuditStore) Append(_ stdctx.Context, event *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.events = append(s.events, event)
	return nil
}

func (s *recordingAuditStore) List(stdctx.Context, audit.Filter, int, int) ([]*audit.Event, int, error) {
	return nil, 0, nil
}
func (s *recordingAuditStore) GetEvent(stdctx.Context, int64) (*audit.Event, error) {
	return nil, nil
}
func (s *recordingAuditStore) DeleteOlderThan(stdctx.Context, time.Time) (int64, error) {
	return 0, nil
}
func (s *recordingAuditStore) Statistics(stdctx.Context, *time.Time, *time.Time) (*audit.Statistics, error) {
	return nil, nil
}
func (s *recordingAuditStore) Trends(stdctx.Context, int) ([]audit.DailyCount, error) {
	return nil, nil
}

// # Fixture

type fixture struct {
	service *Service
	store   *fakeCredentialStore
	limiter *fakeLimiter
	trail   *audit.Trail
	audits  *recordingAuditStore
	codec   *sec.TokenCodec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := sec.NewHasher(4)
	codec := sec.NewTokenCodec("test-secret-at-least-32-chars-long", "identra", time.Hour)

	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	store := &fakeCredentialStore{accounts: map[int64]*Account{
		1: {ID: 1, Username: "anh", Email: "anh@identra.dev", PasswordHash: hash, IsActive: true, Roles: []string{"admin"}},
		2: {ID: 2, Username: "sleeper", Email: "sleeper@identra.dev", PasswordHash: hash, IsActive: false, Roles: []string{"user"}},
	}}
	limiter := &fakeLimiter{failures: map[string]int{}, threshold: 10}
	audits := &recordingAuditStore{}
	trail := audit.NewTrail(audits, logger, nil)

	return &fixture{
		service: NewService(store, hasher, codec, limiter, trail, nil, logger),
		store:   store,
		limiter: limiter,
		trail:   trail,
		audits:  audits,
		codec:   codec,
	}
}

var testMeta = RequestMeta{IPAddress: "203.0.113.7", UserAgent: "go-test"}

// lastAudit drains the trail and returns the most recent event.
func (f *fixture) lastAudit(t *testing.T) *audit.Event {
	t.Helper()
	f.trail.Close()

	f.audits.mu.Lock()
	defer f.audits.mu.Unlock()
	require.NotEmpty(t, f.audits.events)
	return f.audits.events[len(f.audits.events)-1]
}

// # Login

/*
TestService_Login_Success verifies the happy path: a verifiable token is
issued, the audit trail gets a SUCCESS event, and throttle state is reset.
*/
func TestService_Login_Success(t *testing.T) {
	f := newFixture(t)

	session, err := f.service.Login(stdctx.Background(), LoginInput{Username: "anh", Password: "correct-horse"}, testMeta)
	require.NoError(t, err)

	// 1. The token verifies and carries the stored roles
	claims, err := f.codec.Verify(session.Token)
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)
	assert.Equal(t, []string{"admin"}, claims.Roles)

	// 2. Side effects
	assert.Equal(t, int64(1), f.store.lastLoginID)
	assert.Equal(t, 1, f.limiter.resets)

	// 3. Audit trail
	event := f.lastAudit(t)
	assert.Equal(t, audit.ActionLogin, event.Action)
	assert.Equal(t, audit.StatusSuccess, event.Status)
	require.NotNil(t, event.ActorID)
	assert.Equal(t, int64(1), *event.ActorID)
	assert.Equal(t, testMeta.IPAddress, event.IPAddress)
}

/*
TestService_Login_AuditOutageDoesNotFailLogin verifies that a broken audit
store never surfaces into the login response.
*/
func TestService_Login_AuditOutageDoesNotFailLogin(t *testing.T) {
	f := newFixture(t)
	f.audits.appendErr = assert.AnError

	session, err := f.service.Login(stdctx.Background(), LoginInput{Username: "anh", Password: "correct-horse"}, testMeta)
	require.NoError(t, err)

	claims, verifyErr := f.codec.Verify(session.Token)
	require.NoError(t, verifyErr)
	assert.Equal(t, "anh", claims.Username)

	// Drain the trail: the append failure stayed inside it.
	f.trail.Close()
	assert.Empty(t, f.audits.events)
}

/*
TestService_Login_IndistinguishableFailures verifies that an unknown
username and a wrong password produce byte-identical client errors.
*/
func TestService_Login_IndistinguishableFailures(t *testing.T) {
	f := newFixture(t)

	_, unknownErr := f.service.Login(stdctx.Background(), LoginInput{Username: "nobody", Password: "whatever"}, testMeta)
	_, mismatchErr := f.service.Login(stdctx.Background(), LoginInput{Username: "anh", Password: "wrong"}, testMeta)

	require.Error(t, unknownErr)
	require.Error(t, mismatchErr)
	assert.Equal(t, unknownErr.Error(), mismatchErr.Error())

	ae := apperr.As(unknownErr)
	require.NotNil(t, ae)
	assert.Equal(t, 401, ae.HTTPStatus)
}

/*
TestService_Login_UnknownUsername_AuditsWithoutActor verifies that a failed
attempt against a nonexistent account is still recorded, unattributed.
*/
func TestService_Login_UnknownUsername_AuditsWithoutActor(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(stdctx.Background(), LoginInput{Username: "nobody", Password: "whatever"}, testMeta)
	require.Error(t, err)

	event := f.lastAudit(t)
	assert.Equal(t, audit.StatusFailed, event.Status)
	assert.Nil(t, event.ActorID)
	require.NotNil(t, event.ErrorMessage)
}

/*
TestService_Login_DisabledAccount verifies that deactivated accounts get a
distinct message so their owners know retrying is pointless.
*/
func TestService_Login_DisabledAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(stdctx.Background(), LoginInput{Username: "sleeper", Password: "correct-horse"}, testMeta)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 401, ae.HTTPStatus)
	assert.Equal(t, "Account disabled", ae.Message)
}

/*
TestService_Login_Throttled verifies that the limiter rejects before any
credential work happens.
*/
func TestService_Login_Throttled(t *testing.T) {
	f := newFixture(t)
	f.limiter.failures[limiterKey("anh", testMeta.IPAddress)] = 10

	lookupsBefore := f.store.lookups
	_, err := f.service.Login(stdctx.Background(), LoginInput{Username: "anh", Password: "correct-horse"}, testMeta)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 429, ae.HTTPStatus)
	assert.Equal(t, lookupsBefore, f.store.lookups)
}

/*
TestService_Login_FailuresFeedThrottle verifies that failed attempts
increment the limiter until it trips.
*/
func TestService_Login_FailuresFeedThrottle(t *testing.T) {
	f := newFixture(t)
	f.limiter.threshold = 3

	for i := 0; i < 3; i++ {
		_, err := f.service.Login(stdctx.Background(), LoginInput{Username: "anh", Password: "wrong"}, testMeta)
		require.Error(t, err)
		assert.Equal(t, 401, apperr.As(err).HTTPStatus)
	}

	_, err := f.service.Login(stdctx.Background(), LoginInput{Username: "anh", Password: "correct-horse"}, testMeta)
	require.Error(t, err)
	assert.Equal(t, 429, apperr.As(err).HTTPStatus)
}

// # Registration

/*
TestService_Register_Success verifies hashing, default role assignment and
the REGISTER audit event.
*/
func TestService_Register_Success(t *testing.T) {
	f := newFixture(t)

	account, err := f.service.Register(stdctx.Background(), RegisterInput{
		Username: "newcomer",
		Email:    "newcomer@identra.dev",
		Password: "s3cret-password",
	}, testMeta)
	require.NoError(t, err)

	assert.NotZero(t, account.ID)
	assert.True(t, account.IsActive)
	assert.Equal(t, []string{DefaultRole}, account.Roles)
	assert.NotEqual(t, "s3cret-password", account.PasswordHash)

	event := f.lastAudit(t)
	assert.Equal(t, audit.ActionRegister, event.Action)
	assert.Equal(t, audit.StatusSuccess, event.Status)
}

/*
TestService_Register_PersistenceFailureIsAudited verifies that a storage
error during account creation leaves a FAILED trail event and still
propagates to the caller.
*/
func TestService_Register_PersistenceFailureIsAudited(t *testing.T) {
	f := newFixture(t)
	f.store.createErr = assert.AnError

	_, err := f.service.Register(stdctx.Background(), RegisterInput{
		Username: "newcomer",
		Email:    "newcomer@identra.dev",
		Password: "s3cret-password",
	}, testMeta)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	event := f.lastAudit(t)
	assert.Equal(t, audit.ActionRegister, event.Action)
	assert.Equal(t, audit.StatusFailed, event.Status)
	assert.Nil(t, event.ActorID)
	require.NotNil(t, event.ErrorMessage)
	assert.Contains(t, *event.ErrorMessage, assert.AnError.Error())
}

/*
TestService_Register_Conflicts verifies duplicate detection and its order:
when both collide, the username conflict wins.
*/
func TestService_Register_Conflicts(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		input   RegisterInput
		message string
	}{
		{
			"duplicate_username",
			RegisterInput{Username: "anh", Email: "fresh@identra.dev", Password: "s3cret-password"},
			"Username is already taken",
		},
		{
			"duplicate_email",
			RegisterInput{Username: "fresh", Email: "anh@identra.dev", Password: "s3cret-password"},
			"Email is already registered",
		},
		{
			"both_duplicate_reports_username",
			RegisterInput{Username: "anh", Email: "anh@identra.dev", Password: "s3cret-password"},
			"Username is already taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(stdctx.Background(), tt.input, testMeta)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, 409, ae.HTTPStatus)
			assert.Equal(t, tt.message, ae.Message)
		})
	}
}

/*
TestService_Register_Validation spot-checks the input rules.
*/
func TestService_Register_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Register(stdctx.Background(), RegisterInput{
		Username: "x",
		Email:    "not-an-email",
		Password: "123",
	}, testMeta)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.NotEmpty(t, ae.Details)
}

// # Refresh

/*
TestService_Refresh_RederivesRoles verifies that a refreshed token carries
the roles held now, not the roles at original login.
*/
func TestService_Refresh_RederivesRoles(t *testing.T) {
	f := newFixture(t)

	// Demote the account after its original token was minted
	f.store.accounts[1].Roles = []string{"user"}

	session, err := f.service.Refresh(stdctx.Background(), 1, testMeta)
	require.NoError(t, err)

	claims, err := f.codec.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, claims.Roles)

	event := f.lastAudit(t)
	assert.Equal(t, audit.ActionRefresh, event.Action)
}

/*
TestService_CurrentAccount verifies the live lookup behind /auth/me and its
not-found mapping.
*/
func TestService_CurrentAccount(t *testing.T) {
	f := newFixture(t)

	account, err := f.service.CurrentAccount(stdctx.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "anh", account.Username)
	assert.Equal(t, []string{"admin"}, account.Roles)

	_, err = f.service.CurrentAccount(stdctx.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}

/*
TestService_Refresh_Rejections verifies that deleted and deactivated
accounts cannot refresh.
*/
func TestService_Refresh_Rejections(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Refresh(stdctx.Background(), 99, testMeta)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)

	_, err = f.service.Refresh(stdctx.Background(), 2, testMeta)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}
