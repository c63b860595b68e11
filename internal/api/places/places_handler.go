package places

import (
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/api"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// ActivitiesResponse adds the destination context to the search body.
type ActivitiesResponse struct {
	api.SearchResponse
	types.ActivitySearch
}

// SearchActivities godoc
// @Summary      Search activities
// @Description  Lists tourist attractions within 5 km of a location, with sample tour packages and the local time zone.
// @Tags         Search
// @Produce      json
// @Param        location query string true "City or address"
// @Success      200 {object} places.ActivitiesResponse
// @Failure      400 {object} api.Response
// @Failure      502 {object} places.ActivitiesResponse "Provider failure"
// @Security     BearerAuth
// @Router       /search/activities [get]
func (h *HandlerImpl) SearchActivities(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "SearchActivities"))
	location := r.URL.Query().Get("location")
	if location == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "location is required")
		return
	}

	res, extra := h.service.SearchActivities(r.Context(), location)
	l.DebugContext(r.Context(), "Activity search done", slog.String("status", string(res.Status)))

	status := http.StatusOK
	if res.Status == types.SearchFailed {
		status = http.StatusBadGateway
	}
	api.WriteJSONResponse(w, r, status, ActivitiesResponse{
		SearchResponse: api.NewSearchResponse(res),
		ActivitySearch: extra,
	})
}

// SearchRestaurants godoc
// @Summary      Search restaurants
// @Description  Lists restaurants within 1.5 km of a location, best rated first.
// @Tags         Search
// @Produce      json
// @Param        location query string true "City or address"
// @Success      200 {object} api.SearchResponse
// @Failure      400 {object} api.Response
// @Failure      502 {object} api.SearchResponse "Provider failure"
// @Security     BearerAuth
// @Router       /search/restaurants [get]
func (h *HandlerImpl) SearchRestaurants(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "SearchRestaurants"))
	location := r.URL.Query().Get("location")
	if location == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "location is required")
		return
	}

	res := h.service.SearchRestaurants(r.Context(), location)
	l.DebugContext(r.Context(), "Restaurant search done", slog.String("status", string(res.Status)))
	api.WriteSearchResult(w, r, res)
}
