package audit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anhtran-dev/identra/internal/platform/access"
	requestutil "github.com/anhtran-dev/identra/internal/platform/request"
	"github.com/anhtran-dev/identra/internal/platform/respond"
	"github.com/anhtran-dev/identra/pkg/device"
	"github.com/anhtran-dev/identra/pkg/pagination"
	"github.com/anhtran-dev/identra/pkg/slice"
)

type Handler struct {
	service   *Service
	retention time.Duration
}

func NewHandler(service *Service, retention time.Duration) *Handler {
	return &Handler{service: service, retention: retention}
}

func (handler *Handler) RegisterRoutes(router chi.Router, chain *access.Chain) {
	// Operators only
	router.Group(func(operatorRoute chi.Router) {
		operatorRoute.Use(chain.Protect(access.AnyOf("admin", "manager")))

		operatorRoute.Get("/", handler.listEvents)
		operatorRoute.Get("/statistics", handler.statistics)
		operatorRoute.Get("/trends", handler.trends)
		operatorRoute.Get("/{id}", handler.getEvent)
	})

	// Admin strict only
	router.With(chain.Protect(access.AnyOf("admin"))).Post("/cleanup", handler.cleanup)
}

// eventView decorates an event with a readable device summary.
type eventView struct {
	*Event
	Device string `json:"device"`
}

func newEventView(event *Event) eventView {
	return eventView{Event: event, Device: device.Summarize(event.UserAgent)}
}

func (handler *Handler) listEvents(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter, err := filterFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	events, total, err := handler.service.ListEvents(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	views := slice.Map(events, newEventView)

	respond.Paginated(writer, views, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getEvent(writer http.ResponseWriter, request *http.Request) {
	eventID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	event, err := handler.service.GetEvent(request.Context(), eventID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, newEventView(event))
}

func (handler *Handler) statistics(writer http.ResponseWriter, request *http.Request) {
	from, to, err := timeWindowFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stats, err := handler.service.Statistics(request.Context(), from, to)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (handler *Handler) trends(writer http.ResponseWriter, request *http.Request) {
	days := requestutil.QueryInt(request, "days", 7)

	trends, err := handler.service.Trends(request.Context(), days)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, trends)
}

func (handler *Handler) cleanup(writer http.ResponseWriter, request *http.Request) {
	retention := handler.retention
	if days := requestutil.QueryInt(request, "days", 0); days > 0 {
		retention = time.Duration(days) * 24 * time.Hour
	}

	removed, err := handler.service.Cleanup(request.Context(), retention)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int64{"removed": removed})
}

// filterFromRequest parses list query parameters.
func filterFromRequest(request *http.Request) (Filter, error) {
	query := request.URL.Query()

	filter := Filter{
		Module: query.Get("module"),
		Action: query.Get("action"),
		Status: query.Get("status"),
	}

	if raw := query.Get("user_id"); raw != "" {
		actorID, err := requestutil.QueryInt64(request, "user_id")
		if err != nil {
			return Filter{}, err
		}
		filter.ActorID = &actorID
	}

	from, to, err := timeWindowFromRequest(request)
	if err != nil {
		return Filter{}, err
	}
	filter.From = from
	filter.To = to

	return filter, nil
}

// timeWindowFromRequest parses optional RFC 3339 "from"/"to" bounds.
func timeWindowFromRequest(request *http.Request) (*time.Time, *time.Time, error) {
	parse := func(name string) (*time.Time, error) {
		raw := request.URL.Query().Get(name)
		if raw == "" {
			return nil, nil
		}

		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, requestutil.InvalidQueryError(name, "Must be an RFC 3339 timestamp")
		}
		return &parsed, nil
	}

	from, err := parse("from")
	if err != nil {
		return nil, nil, err
	}

	to, err := parse("to")
	if err != nil {
		return nil, nil, err
	}

	return from, to, nil
}
