// Copyright (c) 2026 Identra. All rights reserved.

package auth

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anhtran-dev/identra/internal/audit"
	"github.com/anhtran-dev/identra/internal/platform/apperr"
	"github.com/anhtran-dev/identra/internal/platform/constants"
	"github.com/anhtran-dev/identra/internal/platform/dberr"
	"github.com/anhtran-dev/identra/internal/platform/metrics"
	"github.com/anhtran-dev/identra/internal/platform/sec"
	"github.com/anhtran-dev/identra/internal/platform/validate"
	"github.com/anhtran-dev/identra/pkg/pointer"
)

// Login outcome labels for metrics.
const (
	loginOutcomeSuccess   = "success"
	loginOutcomeFailed    = "failed"
	loginOutcomeThrottled = "throttled"
)

// Service implements the credential verification use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, login, or
// token issuance logic must be reviewed before merging.
type Service struct {
	store    CredentialStore
	hasher   *sec.Hasher
	codec    *sec.TokenCodec
	attempts AttemptLimiter
	trail    *audit.Trail
	metrics  *metrics.Set
	logger   *slog.Logger

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewService constructs the credential verification service.
// The metrics set may be nil.
func NewService(
	store CredentialStore,
	hasher *sec.Hasher,
	codec *sec.TokenCodec,
	attempts AttemptLimiter,
	trail *audit.Trail,
	set *metrics.Set,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		hasher:   hasher,
		codec:    codec,
		attempts: attempts,
		trail:    trail,
		metrics:  set,
		logger:   logger,
		now:      time.Now,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register validates, hashes, and persists a brand new account.

Description: Enrolls a new account with the default role. Uniqueness is
checked on the username first, then the email, so a request that collides on
both reports the username conflict.

Parameters:
  - context: context.Context
  - input: RegisterInput
  - meta: RequestMeta

Returns:
  - *Account: Created entity
  - err: Conflict (if identity exists), validation or storage errors
*/
func (service *Service) Register(context stdctx.Context, input RegisterInput, meta RequestMeta) (*Account, error) {
	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		MaxLen(FieldUsername, input.Username, 50).
		Username(FieldUsername, input.Username).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 6).
		MaxLen(FieldPassword, input.Password, 72)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	if _, err := service.store.FindByUsername(context, input.Username); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Verify email uniqueness. Return a client-safe Conflict err.
	if _, err := service.store.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	account := &Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		IsActive:     true,
		Roles:        []string{DefaultRole},
	}

	if err := service.store.CreateAccount(context, account, account.Roles); err != nil {
		// Persistence failures are audited, then still returned to the caller.
		service.trail.Record(context, audit.Event{
			Action:       audit.ActionRegister,
			Module:       constants.AuditModuleAuth,
			Description:  fmt.Sprintf("Registration of %q failed", account.Username),
			IPAddress:    meta.IPAddress,
			UserAgent:    meta.UserAgent,
			Status:       audit.StatusFailed,
			ErrorMessage: pointer.To(err.Error()),
		})
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	service.trail.Record(context, audit.Event{
		Action:      audit.ActionRegister,
		Module:      constants.AuditModuleAuth,
		Description: fmt.Sprintf("Account %q registered", account.Username),
		ActorID:     &account.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		Status:      audit.StatusSuccess,
	})

	service.logger.Info("account_registered",
		slog.Int64("user_id", account.ID),
		slog.String("username", account.Username),
	)

	return account, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session represents a successfully issued bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}

/*
Login validates credentials and issues a signed session token.

Description: Verifies identity with a constant-time password comparison and
mints a stateless bearer token. Unknown usernames and wrong passwords yield
the same client-facing message; a disabled account is reported distinctly so
its owner knows not to retry.

Parameters:
  - context: context.Context
  - input: LoginInput
  - meta: RequestMeta

Returns:
  - *Session: Transport-ready token and account snapshot
  - err: Unauthorized, RateLimited or internal failures
*/
func (service *Service) Login(context stdctx.Context, input LoginInput, meta RequestMeta) (*Session, error) {

	// ── 1. Brute-Force Throttle ───────────────────────────────────────────
	throttled, err := service.attempts.TooManyFailures(context, input.Username, meta.IPAddress)
	if err != nil {
		// Fail open: a limiter outage must not lock everyone out.
		service.logger.Warn("login_attempt_limiter_unavailable", slog.Any("error", err))
	} else if throttled {
		service.observeLogin(loginOutcomeThrottled)
		return nil, apperr.RateLimited(int(constants.LoginAttemptWindow.Seconds()))
	}

	// ── 2. Account Lookup ─────────────────────────────────────────────────
	account, err := service.store.FindByUsername(context, input.Username)
	if err != nil {
		if !dberr.IsNotFound(err) {
			return nil, err
		}

		// Unknown username. Generic message to prevent enumeration.
		service.recordLoginFailure(context, nil, input.Username, meta, "Unknown username")
		return nil, apperr.Unauthorized("Invalid username or password")
	}

	// ── 3. Active Flag Check ──────────────────────────────────────────────
	if !account.IsActive {
		service.recordLoginFailure(context, &account.ID, input.Username, meta, "Account disabled")
		return nil, apperr.Unauthorized("Account disabled")
	}

	// ── 4. Password Verification ──────────────────────────────────────────
	if !service.hasher.Compare(input.Password, account.PasswordHash) {
		service.recordLoginFailure(context, &account.ID, input.Username, meta, "Password mismatch")
		return nil, apperr.Unauthorized("Invalid username or password")
	}

	// ── 5. Token Issuance ─────────────────────────────────────────────────
	token, err := service.codec.Sign(account.ID, account.Username, account.Email, account.Roles)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_issuance_failed: %w", err)
	}

	// Last-login stamping is best-effort; the session is already valid.
	if err := service.store.TouchLastLogin(context, account.ID); err != nil {
		service.logger.Warn("last_login_update_failed",
			slog.Int64("user_id", account.ID),
			slog.Any("error", err),
		)
	}

	if err := service.attempts.Reset(context, input.Username, meta.IPAddress); err != nil {
		service.logger.Warn("login_attempt_reset_failed", slog.Any("error", err))
	}

	service.trail.Record(context, audit.Event{
		Action:      audit.ActionLogin,
		Module:      constants.AuditModuleAuth,
		Description: fmt.Sprintf("Account %q logged in", account.Username),
		ActorID:     &account.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		Status:      audit.StatusSuccess,
	})
	service.observeLogin(loginOutcomeSuccess)

	return &Session{
		Token:     token,
		ExpiresAt: service.now().Add(service.codec.TTL()),
		Account:   account,
	}, nil
}

// # Token Refresh Flow

/*
Refresh re-issues a session token for an already-authenticated account.

Description: Re-reads the account so the fresh token carries the roles held
right now, not the roles held at original login. Deleted or deactivated
accounts cannot refresh.

Parameters:
  - context: context.Context
  - userID: int64
  - meta: RequestMeta

Returns:
  - *Session: A new token with a full lifetime
  - err: Unauthorized or internal failures
*/
func (service *Service) Refresh(context stdctx.Context, userID int64, meta RequestMeta) (*Session, error) {
	account, err := service.store.FindByID(context, userID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, err
	}

	if !account.IsActive {
		return nil, apperr.Unauthorized("Account disabled")
	}

	token, err := service.codec.Sign(account.ID, account.Username, account.Email, account.Roles)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_issuance_failed: %w", err)
	}

	service.trail.Record(context, audit.Event{
		Action:      audit.ActionRefresh,
		Module:      constants.AuditModuleAuth,
		Description: fmt.Sprintf("Account %q refreshed its session", account.Username),
		ActorID:     &account.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		Status:      audit.StatusSuccess,
	})

	return &Session{
		Token:     token,
		ExpiresAt: service.now().Add(service.codec.TTL()),
		Account:   account,
	}, nil
}

// CurrentAccount returns the live account behind an authenticated session.
func (service *Service) CurrentAccount(context stdctx.Context, userID int64) (*Account, error) {
	account, err := service.store.FindByID(context, userID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, err
	}
	return account, nil
}

// recordLoginFailure audits a failed attempt and feeds the throttle.
func (service *Service) recordLoginFailure(context stdctx.Context, actorID *int64, username string, meta RequestMeta, reason string) {
	if err := service.attempts.RecordFailure(context, username, meta.IPAddress); err != nil {
		service.logger.Warn("login_attempt_record_failed", slog.Any("error", err))
	}

	service.trail.Record(context, audit.Event{
		Action:       audit.ActionLogin,
		Module:       constants.AuditModuleAuth,
		Description:  fmt.Sprintf("Failed login for %q", username),
		ActorID:      actorID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		Status:       audit.StatusFailed,
		ErrorMessage: pointer.To(reason),
	})
	service.observeLogin(loginOutcomeFailed)
}

func (service *Service) observeLogin(outcome string) {
	if service.metrics != nil {
		service.metrics.ObserveLogin(outcome)
	}
}
