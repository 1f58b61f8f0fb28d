package profiles

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
	// Own profile
	router.Group(func(selfRoute chi.Router) {
		selfRoute.Use(chain.Protect(access.Authenticated()))

		selfRoute.Get("/me", handler.getOwnProfile)
		selfRoute.Put("/me", handler.updateOwnProfile)
	})

	// Other users' profiles, addressed by user ID
	router.With(chain.Protect(access.SelfOr("admin", "manager"))).Get("/{id}", handler.getProfile)
	router.With(chain.Protect(access.SelfOr("admin"))).Put("/{id}", handler.updateProfile)
}

func (handler *Handler) getOwnProfile(writer http.ResponseWriter, request *http.Request) {
	identity, err := access.RequireIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.respondProfile(writer, request, identity.ID)
}

func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.respondProfile(writer, request, userID)
}

func (handler *Handler) respondProfile(writer http.ResponseWriter, request *http.Request, userID int64) {
	profile, err := handler.service.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

func (handler *Handler) updateOwnProfile(writer http.ResponseWriter, request *http.Request) {
	identity, err := access.RequireIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.applyUpdate(writer, request, identity.ID)
}

func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.applyUpdate(writer, request, userID)
}

func (handler *Handler) applyUpdate(writer http.ResponseWriter, request *http.Request, userID int64) {
	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.UpdateProfile(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}
