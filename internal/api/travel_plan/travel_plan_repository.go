package travelPlan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-trip-planner-ai/app/db"
	"github.com/FACorreiaa/go-trip-planner-ai/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists travel plans. Every lookup is scoped to the owner.
type Repository interface {
	Create(ctx context.Context, plan types.TravelPlan) (*types.TravelPlan, error)
	List(ctx context.Context, userID uuid.UUID) ([]types.TravelPlan, error)
	Get(ctx context.Context, userID, planID uuid.UUID) (*types.TravelPlan, error)
	Update(ctx context.Context, plan types.TravelPlan) (*types.TravelPlan, error)
	Delete(ctx context.Context, userID, planID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.DBTX
}

func NewRepository(pgpool database.DBTX, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const planColumns = `id, user_id, origin, destination, start_date, end_date, budget, preferences,
               travelers, content, itinerary, hotel_data, flight_data, created_at, updated_at`

// planJSON holds the jsonb columns of a plan in encoded form.
type planJSON struct {
	travelers, itinerary, hotels, flights []byte
}

func encodePlan(p types.TravelPlan) (planJSON, error) {
	var (
		out planJSON
		err error
	)
	if out.travelers, err = json.Marshal(p.Travelers); err != nil {
		return out, fmt.Errorf("encode travelers: %w", err)
	}
	if p.Itinerary.Sections == nil {
		p.Itinerary.Sections = []types.ItinerarySection{}
	}
	if out.itinerary, err = json.Marshal(p.Itinerary); err != nil {
		return out, fmt.Errorf("encode itinerary: %w", err)
	}
	if p.HotelData == nil {
		p.HotelData = []types.HotelOffer{}
	}
	if out.hotels, err = json.Marshal(p.HotelData); err != nil {
		return out, fmt.Errorf("encode hotel data: %w", err)
	}
	if p.FlightData == nil {
		p.FlightData = []types.FlightOffer{}
	}
	if out.flights, err = json.Marshal(p.FlightData); err != nil {
		return out, fmt.Errorf("encode flight data: %w", err)
	}
	return out, nil
}

func scanPlan(row pgx.Row) (*types.TravelPlan, error) {
	var (
		p  types.TravelPlan
		js planJSON
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Origin, &p.Destination, &p.StartDate, &p.EndDate, &p.Budget, &p.Preferences,
		&js.travelers, &p.Content, &js.itinerary, &js.hotels, &js.flights, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(js.travelers) > 0 {
		if err := json.Unmarshal(js.travelers, &p.Travelers); err != nil {
			return nil, fmt.Errorf("decode travelers: %w", err)
		}
	}
	if len(js.itinerary) > 0 {
		if err := json.Unmarshal(js.itinerary, &p.Itinerary); err != nil {
			return nil, fmt.Errorf("decode itinerary: %w", err)
		}
	}
	if p.Itinerary.Sections == nil {
		p.Itinerary.Sections = []types.ItinerarySection{}
	}
	p.HotelData = []types.HotelOffer{}
	if len(js.hotels) > 0 {
		if err := json.Unmarshal(js.hotels, &p.HotelData); err != nil {
			return nil, fmt.Errorf("decode hotel data: %w", err)
		}
	}
	p.FlightData = []types.FlightOffer{}
	if len(js.flights) > 0 {
		if err := json.Unmarshal(js.flights, &p.FlightData); err != nil {
			return nil, fmt.Errorf("decode flight data: %w", err)
		}
	}
	return &p, nil
}

func (r *RepositoryImpl) observe(ctx context.Context, op string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("db.operation", op), attribute.String("db.table", "travel_plans"))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", op),
		attribute.String("db.sql.table", "travel_plans"),
	)
	return otel.Tracer("TravelPlanRepo").Start(ctx, op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// Create inserts the plan; id and timestamps are assigned by the database.
func (r *RepositoryImpl) Create(ctx context.Context, plan types.TravelPlan) (created *types.TravelPlan, err error) {
	ctx, span := startSpan(ctx, "INSERT", attribute.String("user.id", plan.UserID.String()))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, "insert", start, err); endSpan(span, err) }(time.Now())

	js, err := encodePlan(plan)
	if err != nil {
		return nil, err
	}

	query := `
        INSERT INTO travel_plans (
            user_id, origin, destination, start_date, end_date, budget, preferences,
            travelers, content, itinerary, hotel_data, flight_data
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING ` + planColumns

	created, err = scanPlan(r.pgpool.QueryRow(ctx, query,
		plan.UserID, plan.Origin, plan.Destination, plan.StartDate, plan.EndDate, plan.Budget, plan.Preferences,
		js.travelers, plan.Content, js.itinerary, js.hotels, js.flights,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create travel plan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create travel plan: %w", err)
	}
	span.SetAttributes(attribute.String("travel_plan.id", created.ID.String()))
	return created, nil
}

// List returns the user's plans, newest first.
func (r *RepositoryImpl) List(ctx context.Context, userID uuid.UUID) (plans []types.TravelPlan, err error) {
	ctx, span := startSpan(ctx, "SELECT", attribute.String("user.id", userID.String()))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, "select", start, err); endSpan(span, err) }(time.Now())

	query := `
        SELECT ` + planColumns + `
        FROM travel_plans
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list travel plans", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list travel plans: %w", err)
	}
	defer rows.Close()

	plans = []types.TravelPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan travel plan", slog.Any("error", err))
			return nil, fmt.Errorf("failed to scan travel plan: %w", err)
		}
		plans = append(plans, *p)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating travel plan rows", slog.Any("error", err))
		return nil, fmt.Errorf("error iterating travel plan rows: %w", err)
	}
	span.SetAttributes(attribute.Int("travel_plans.count", len(plans)))
	return plans, nil
}

// Get returns the plan if it exists and belongs to userID.
func (r *RepositoryImpl) Get(ctx context.Context, userID, planID uuid.UUID) (plan *types.TravelPlan, err error) {
	ctx, span := startSpan(ctx, "SELECT", attribute.String("travel_plan.id", planID.String()))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, "select", start, err); endSpan(span, err) }(time.Now())

	query := `
        SELECT ` + planColumns + `
        FROM travel_plans
        WHERE id = $1 AND user_id = $2
    `
	plan, err = scanPlan(r.pgpool.QueryRow(ctx, query, planID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("travel plan %s: %w", planID, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get travel plan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get travel plan: %w", err)
	}
	return plan, nil
}

// Update overwrites the editable fields of an owned plan. Last write wins.
func (r *RepositoryImpl) Update(ctx context.Context, plan types.TravelPlan) (updated *types.TravelPlan, err error) {
	ctx, span := startSpan(ctx, "UPDATE", attribute.String("travel_plan.id", plan.ID.String()))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, "update", start, err); endSpan(span, err) }(time.Now())

	js, err := encodePlan(plan)
	if err != nil {
		return nil, err
	}

	query := `
        UPDATE travel_plans
        SET destination = $3, start_date = $4, end_date = $5, budget = $6, preferences = $7,
            content = $8, itinerary = $9, updated_at = now()
        WHERE id = $1 AND user_id = $2
        RETURNING ` + planColumns

	updated, err = scanPlan(r.pgpool.QueryRow(ctx, query,
		plan.ID, plan.UserID, plan.Destination, plan.StartDate, plan.EndDate, plan.Budget, plan.Preferences,
		plan.Content, js.itinerary,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("travel plan %s: %w", plan.ID, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to update travel plan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update travel plan: %w", err)
	}
	return updated, nil
}

// Delete removes an owned plan.
func (r *RepositoryImpl) Delete(ctx context.Context, userID, planID uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "DELETE", attribute.String("travel_plan.id", planID.String()))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, "delete", start, err); endSpan(span, err) }(time.Now())

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM travel_plans WHERE id = $1 AND user_id = $2`, planID, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete travel plan", slog.Any("error", err))
		return fmt.Errorf("failed to delete travel plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("travel plan %s: %w", planID, types.ErrNotFound)
	}
	return nil
}
