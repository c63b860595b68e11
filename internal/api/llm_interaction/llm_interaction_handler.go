package llmInteraction

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/api"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/auth"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type HandlerImpl struct {
	repo   LLmInteractionRepository
	logger *slog.Logger
}

func NewHandlerImpl(repo LLmInteractionRepository, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{repo: repo, logger: logger}
}

// ListInteractions godoc
// @Summary      List recent model calls
// @Description  Returns the caller's most recent itinerary generations with token usage and latency, newest first.
// @Tags         LLM Interactions
// @Produce      json
// @Param        limit query int false "Maximum number of records (default 20, max 100)"
// @Success      200 {array} types.LlmInteraction
// @Failure      400 {object} api.Response
// @Failure      401 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     BearerAuth
// @Router       /llm-interactions [get]
func (h *HandlerImpl) ListInteractions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LlmInteractionHandler").Start(r.Context(), "ListInteractions", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", "/api/llm-interactions"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "ListInteractions"))

	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, err := api.QueryInt(r, "limit", defaultListLimit)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	limit = min(limit, maxListLimit)

	interactions, err := h.repo.ListInteractions(ctx, userID, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list interactions", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, interactions)
}
