package travelPlan

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/api"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

const (
	msgPlanNotFound = "Plan not found"
	msgServerError  = "Server error"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// requestIDs extracts the authenticated user and, when withPlan is set, the
// {id} path parameter. It writes the error response itself and returns ok=false.
func (h *HandlerImpl) requestIDs(w http.ResponseWriter, r *http.Request, withPlan bool) (userID, planID uuid.UUID, ok bool) {
	userIDStr, found := auth.GetUserIDFromContext(r.Context())
	if !found {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	if !withPlan {
		return userID, uuid.Nil, true
	}
	// an id that cannot exist is reported like any other missing plan
	planID, err = uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, msgPlanNotFound)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, planID, true
}

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, msgPlanNotFound)
	case errors.Is(err, types.ErrBadRequest):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	default:
		l.ErrorContext(r.Context(), "Travel plan request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, msgServerError)
	}
}

// CreatePlan godoc
// @Summary      Save a travel plan
// @Description  Stores a plan the client already holds, e.g. an edited generation result.
// @Tags         Travel Plans
// @Accept       json
// @Produce      json
// @Param        body body types.CreateTravelPlanParams true "Plan"
// @Success      201 {object} types.TravelPlan
// @Failure      400 {object} api.Response
// @Failure      401 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     BearerAuth
// @Router       /travel-plans [post]
func (h *HandlerImpl) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TravelPlanHandler").Start(r.Context(), "CreatePlan", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", "/api/travel-plans"),
	))
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("handler", "CreatePlan"))

	userID, _, ok := h.requestIDs(w, r, false)
	if !ok {
		return
	}
	var params types.CreateTravelPlanParams
	if err := api.DecodeAndValidate(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.CreatePlan(ctx, userID, params)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, plan)
}

// ListPlans godoc
// @Summary      List travel plans
// @Description  Returns the caller's plans, newest first.
// @Tags         Travel Plans
// @Produce      json
// @Success      200 {array} types.TravelPlan
// @Failure      401 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     BearerAuth
// @Router       /travel-plans [get]
func (h *HandlerImpl) ListPlans(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TravelPlanHandler").Start(r.Context(), "ListPlans", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", "/api/travel-plans"),
	))
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("handler", "ListPlans"))

	userID, _, ok := h.requestIDs(w, r, false)
	if !ok {
		return
	}
	plans, err := h.service.ListPlans(ctx, userID)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	span.SetAttributes(attribute.Int("travel_plans.count", len(plans)))
	api.WriteJSONResponse(w, r, http.StatusOK, plans)
}

// GetPlan godoc
// @Summary      Get a travel plan
// @Tags         Travel Plans
// @Produce      json
// @Param        id path string true "Plan ID"
// @Success      200 {object} types.TravelPlan
// @Failure      401 {object} api.Response
// @Failure      404 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     BearerAuth
// @Router       /travel-plans/{id} [get]
func (h *HandlerImpl) GetPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TravelPlanHandler").Start(r.Context(), "GetPlan", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", "/api/travel-plans/{id}"),
	))
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("handler", "GetPlan"))

	userID, planID, ok := h.requestIDs(w, r, true)
	if !ok {
		return
	}
	plan, err := h.service.GetPlan(ctx, userID, planID)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

// UpdatePlan godoc
// @Summary      Update a travel plan
// @Description  Only the fields present in the body change. New content is parsed into a fresh itinerary.
// @Tags         Travel Plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        body body types.UpdateTravelPlanParams true "Fields to change"
// @Success      200 {object} types.TravelPlan
// @Failure      400 {object} api.Response
// @Failure      401 {object} api.Response
// @Failure      404 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     BearerAuth
// @Router       /travel-plans/{id} [put]
func (h *HandlerImpl) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TravelPlanHandler").Start(r.Context(), "UpdatePlan", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", "/api/travel-plans/{id}"),
	))
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("handler", "UpdatePlan"))

	userID, planID, ok := h.requestIDs(w, r, true)
	if !ok {
		return
	}
	var params types.UpdateTravelPlanParams
	if err := api.DecodeAndValidate(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.UpdatePlan(ctx, userID, planID, params)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

// DeletePlan godoc
// @Summary      Delete a travel plan
// @Tags         Travel Plans
// @Produce      json
// @Param        id path string true "Plan ID"
// @Success      200 {object} api.Response
// @Failure      401 {object} api.Response
// @Failure      404 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     BearerAuth
// @Router       /travel-plans/{id} [delete]
func (h *HandlerImpl) DeletePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TravelPlanHandler").Start(r.Context(), "DeletePlan", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", "/api/travel-plans/{id}"),
	))
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("handler", "DeletePlan"))

	userID, planID, ok := h.requestIDs(w, r, true)
	if !ok {
		return
	}
	if err := h.service.DeletePlan(ctx, userID, planID); err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Message: "Plan deleted successfully"})
}

// Calendar godoc
// @Summary      Export a travel plan as iCalendar
// @Description  One all-day event per itinerary day, or a single event covering the trip.
// @Tags         Travel Plans
// @Produce      text/calendar
// @Param        id path string true "Plan ID"
// @Success      200 {string} string "VCALENDAR document"
// @Failure      401 {object} api.Response
// @Failure      404 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     BearerAuth
// @Router       /travel-plans/{id}/calendar [get]
func (h *HandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TravelPlanHandler").Start(r.Context(), "Calendar", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", "/api/travel-plans/{id}/calendar"),
	))
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("handler", "Calendar"))

	userID, planID, ok := h.requestIDs(w, r, true)
	if !ok {
		return
	}
	doc, err := h.service.Calendar(ctx, userID, planID)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="travel-plan-`+planID.String()+`.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		l.ErrorContext(ctx, "Failed to write calendar", slog.Any("error", err))
	}
}
