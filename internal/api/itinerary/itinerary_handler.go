package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/api"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// Generate godoc
// @Summary      Generate a travel plan
// @Description  Searches hotels and flights when requested, asks the language model for an itinerary and saves the result.
// @Tags         Travel Plans
// @Accept       json
// @Produce      json
// @Param        body body types.TripRequest true "Trip parameters"
// @Success      201 {object} types.GeneratedPlan
// @Failure      400 {object} api.Response
// @Failure      401 {object} api.Response
// @Failure      429 {object} api.Response "Too many generations"
// @Failure      500 {object} api.Response "Plan could not be saved"
// @Failure      502 {object} api.Response "Language model failure"
// @Security     BearerAuth
// @Router       /travel-plans/generate [post]
func (h *HandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Generate", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", "/api/travel-plans/generate"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "Generate"))

	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.ErrorContext(ctx, "Malformed user id in token", slog.String("user_id", userIDStr))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.TripRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid trip request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Generate(ctx, userID, req)
	switch {
	case err == nil:
		api.WriteJSONResponse(w, r, http.StatusCreated, result)
	case errors.Is(err, types.ErrBadRequest):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrGeneration):
		api.ErrorResponse(w, r, http.StatusBadGateway, "Failed to generate travel plan")
	default:
		l.ErrorContext(ctx, "Plan generation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save travel plan")
	}
}
