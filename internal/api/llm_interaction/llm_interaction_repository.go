package llmInteraction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-trip-planner-ai/app/db"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

var _ LLmInteractionRepository = (*PostgresLlmInteractionRepo)(nil)

type LLmInteractionRepository interface {
	SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error)
	ListInteractions(ctx context.Context, userID uuid.UUID, limit int) ([]types.LlmInteraction, error)
}

type PostgresLlmInteractionRepo struct {
	logger *slog.Logger
	pgpool database.DBTX
}

func NewPostgresLlmInteractionRepo(pgpool database.DBTX, logger *slog.Logger) *PostgresLlmInteractionRepo {
	return &PostgresLlmInteractionRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// SaveInteraction stores one model call and returns its id.
func (r *PostgresLlmInteractionRepo) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error) {
	ctx, span := otel.Tracer("LlmInteractionRepo").Start(ctx, "SaveInteraction", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("llm.provider", interaction.Provider),
		attribute.String("llm.model", interaction.ModelUsed),
	))
	defer span.End()

	query := `
        INSERT INTO llm_interactions (
            user_id, prompt, response_text, model_used, provider,
            prompt_tokens, completion_tokens, total_tokens, latency_ms, destination
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `
	var userID *uuid.UUID
	if interaction.UserID != uuid.Nil {
		userID = &interaction.UserID
	}

	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, query,
		userID, interaction.Prompt, interaction.ResponseText, interaction.ModelUsed, interaction.Provider,
		interaction.PromptTokens, interaction.CompletionTokens, interaction.TotalTokens,
		interaction.LatencyMs, interaction.Destination,
	).Scan(&id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save llm interaction", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return uuid.Nil, fmt.Errorf("failed to save llm interaction: %w", err)
	}

	span.SetAttributes(attribute.String("llm_interaction.id", id.String()))
	span.SetStatus(codes.Ok, "")
	return id, nil
}

// ListInteractions returns a user's most recent interactions, newest first.
func (r *PostgresLlmInteractionRepo) ListInteractions(ctx context.Context, userID uuid.UUID, limit int) ([]types.LlmInteraction, error) {
	ctx, span := otel.Tracer("LlmInteractionRepo").Start(ctx, "ListInteractions", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	query := `
        SELECT id, user_id, prompt, COALESCE(response_text, ''), model_used, provider,
               COALESCE(prompt_tokens, 0), COALESCE(completion_tokens, 0), COALESCE(total_tokens, 0),
               COALESCE(latency_ms, 0), COALESCE(destination, ''), created_at
        FROM llm_interactions
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.pgpool.Query(ctx, query, userID, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to list llm interactions: %w", err)
	}
	defer rows.Close()

	interactions := []types.LlmInteraction{}
	for rows.Next() {
		var i types.LlmInteraction
		if err := rows.Scan(&i.ID, &i.UserID, &i.Prompt, &i.ResponseText, &i.ModelUsed, &i.Provider,
			&i.PromptTokens, &i.CompletionTokens, &i.TotalTokens, &i.LatencyMs, &i.Destination, &i.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "scan failed")
			return nil, fmt.Errorf("failed to scan llm interaction: %w", err)
		}
		interactions = append(interactions, i)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rows error")
		return nil, fmt.Errorf("error iterating llm interactions: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return interactions, nil
}
