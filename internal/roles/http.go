package roles

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anhtran-dev/identra/internal/platform/access"
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
	// Operators may read
	router.Group(func(operatorRoute chi.Router) {
		operatorRoute.Use(chain.Protect(access.AnyOf("admin", "manager")))

		operatorRoute.Get("/", handler.listRoles)
		operatorRoute.Get("/{id}", handler.getRole)
	})

	// Admin strict only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(chain.Protect(access.AnyOf("admin")))

		adminRoute.Post("/", handler.createRole)
		adminRoute.Patch("/{id}", handler.updateRole)
		adminRoute.Delete("/{id}", handler.deleteRole)
	})
}

func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.ListRoles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) getRole(writer http.ResponseWriter, request *http.Request) {
	roleID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.service.GetRole(request.Context(), roleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, role)
}

func (handler *Handler) createRole(writer http.ResponseWriter, request *http.Request) {
	var input Role
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateRole(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateRole(writer http.ResponseWriter, request *http.Request) {
	roleID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Role
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateRole(request.Context(), roleID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteRole(writer http.ResponseWriter, request *http.Request) {
	roleID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteRole(request.Context(), roleID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
