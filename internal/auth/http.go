// Copyright (c) 2026 Identra. All rights reserved.

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anhtran-dev/identra/internal/platform/access"
	"github.com/anhtran-dev/identra/internal/platform/middleware"
	requestutil "github.com/anhtran-dev/identra/internal/platform/request"
	"github.com/anhtran-dev/identra/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router, chain *access.Chain) {
	// Public
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)

	// Authenticated
	router.Group(func(authedRoute chi.Router) {
		authedRoute.Use(chain.Protect(access.Authenticated()))

		authedRoute.Post("/refresh", handler.refresh)
		authedRoute.Get("/me", handler.me)
		authedRoute.Post("/logout", handler.logout)
	})
}

// accountView is the wire shape of an account in auth responses.
type accountView struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Roles       []string   `json:"roles"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// sessionView is the wire shape of an issued token.
type sessionView struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      accountView `json:"user"`
}

func newAccountView(account *Account) accountView {
	return accountView{
		ID:          account.ID,
		Username:    account.Username,
		Email:       account.Email,
		Roles:       account.Roles,
		IsActive:    account.IsActive,
		LastLoginAt: account.LastLoginAt,
	}
}

func newSessionView(session *Session) sessionView {
	return sessionView{
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
		User:      newAccountView(session.Account),
	}
}

// requestMeta extracts the client facts recorded in audit events.
func requestMeta(request *http.Request) RequestMeta {
	return RequestMeta{
		IPAddress: middleware.RealIP(request),
		UserAgent: request.UserAgent(),
	}
}

func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.Register(request.Context(), input, requestMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, newAccountView(account))
}

func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), input, requestMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, newSessionView(session))
}

func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	identity, err := access.RequireIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Refresh(request.Context(), identity.ID, requestMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, newSessionView(session))
}

// me returns the live account behind the presented token.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := access.RequireIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.service.CurrentAccount(request.Context(), identity.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, newAccountView(account))
}

// logout exists for API symmetry. Tokens are stateless, so the server has
// nothing to revoke; clients discard the token.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"message": "Logged out"})
}
