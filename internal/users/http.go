package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anhtran-dev/identra/internal/platform/access"
	requestutil "github.com/anhtran-dev/identra/internal/platform/request"
	"github.com/anhtran-dev/identra/internal/platform/respond"
	"github.com/anhtran-dev/identra/pkg/pagination"
	"github.com/anhtran-dev/identra/pkg/pointer"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router, chain *access.Chain) {
	// Operators
	router.With(chain.Protect(access.AnyOf("admin", "manager"))).Get("/", handler.listUsers)
	router.With(chain.Protect(access.SelfOr("admin", "manager"))).Get("/{id}", handler.getUser)

	// Self-or-admin
	router.With(chain.Protect(access.SelfOr("admin"))).Patch("/{id}", handler.updateUser)

	// Admin strict only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(chain.Protect(access.AnyOf("admin")))

		adminRoute.Post("/", handler.createUser)
		adminRoute.Delete("/{id}", handler.deleteUser)
		adminRoute.Patch("/{id}/activate", handler.activateUser)
		adminRoute.Patch("/{id}/deactivate", handler.deactivateUser)
		adminRoute.Put("/{id}/roles", handler.replaceRoles)
	})
}

func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	query := request.URL.Query()

	filter := Filter{
		Query: query.Get("q"),
		Role:  query.Get("role"),
	}
	if raw := query.Get("is_active"); raw == "true" || raw == "false" {
		filter.IsActive = pointer.To(raw == "true")
	}

	users, total, err := handler.service.ListUsers(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.GetUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.CreateUser(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, user)
}

func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor, err := access.RequireIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.UpdateUser(request.Context(), userID, input, actor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor, err := access.RequireIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteUser(request.Context(), userID, actor); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) activateUser(writer http.ResponseWriter, request *http.Request) {
	handler.setActive(writer, request, true)
}

func (handler *Handler) deactivateUser(writer http.ResponseWriter, request *http.Request) {
	handler.setActive(writer, request, false)
}

func (handler *Handler) setActive(writer http.ResponseWriter, request *http.Request, active bool) {
	userID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor, err := access.RequireIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetActive(request.Context(), userID, active, actor); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.GetUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) replaceRoles(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		RoleIDs []int64 `json:"role_ids"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.ReplaceRoles(request.Context(), userID, input.RoleIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}
