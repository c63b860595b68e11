package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner-ai/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/booking"
	generativeAI "github.com/FACorreiaa/go-trip-planner-ai/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

const (
	DefaultTemperature float32 = 0.7
	DefaultMaxTokens           = 2000
)

var (
	// ErrGeneration wraps language model failures.
	ErrGeneration = errors.New("itinerary generation failed")
	// ErrPersistence wraps failures to store the generated plan.
	ErrPersistence = errors.New("failed to save travel plan")
)

// TravelSearcher runs the hotel and flight aggregators.
type TravelSearcher interface {
	SearchHotels(ctx context.Context, q booking.HotelQuery) types.SearchResult[types.HotelOffer]
	SearchFlights(ctx context.Context, q booking.FlightQuery) types.SearchResult[types.FlightOffer]
}

// InteractionRecorder stores a record of each model call.
type InteractionRecorder interface {
	SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error)
}

// PlanStore persists generated plans.
type PlanStore interface {
	Create(ctx context.Context, plan types.TravelPlan) (*types.TravelPlan, error)
}

type Service interface {
	Generate(ctx context.Context, userID uuid.UUID, req types.TripRequest) (*types.GeneratedPlan, error)
}

type ServiceImpl struct {
	search      TravelSearcher
	llm         generativeAI.LLMClient
	recorder    InteractionRecorder
	store       PlanStore
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

// NewServiceImpl wires the pipeline. A zero temperature or token cap falls
// back to the defaults. recorder may be nil.
func NewServiceImpl(search TravelSearcher, llm generativeAI.LLMClient, recorder InteractionRecorder, store PlanStore,
	temperature float32, maxTokens int, logger *slog.Logger) *ServiceImpl {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &ServiceImpl{
		search:      search,
		llm:         llm,
		recorder:    recorder,
		store:       store,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// CheckDates verifies the trip does not end before it starts.
func CheckDates(req types.TripRequest) error {
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return fmt.Errorf("startDate must be a date in YYYY-MM-DD format: %w", types.ErrBadRequest)
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return fmt.Errorf("endDate must be a date in YYYY-MM-DD format: %w", types.ErrBadRequest)
	}
	if end.Before(start) {
		return fmt.Errorf("endDate must not be before startDate: %w", types.ErrBadRequest)
	}
	return nil
}

// Generate runs hotel search, flight search, prompt construction, the model
// call and persistence, in that order. Search failures are reported in the
// result and never stop generation.
func (s *ServiceImpl) Generate(ctx context.Context, userID uuid.UUID, req types.TripRequest) (plan *types.GeneratedPlan, err error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("destination", req.Destination),
		attribute.Bool("needs_hotel", req.NeedsHotel),
		attribute.Bool("needs_flight", req.NeedsFlight),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "Generate"), slog.String("destination", req.Destination))

	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		m := metrics.Get()
		m.PlanGenerationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		m.PlanGenerationDuration.Record(ctx, time.Since(start).Seconds())
	}()

	if err := CheckDates(req); err != nil {
		return nil, err
	}
	if req.Travelers.Adults <= 0 {
		req.Travelers.Adults = 1
	}

	hotels := types.Skipped[types.HotelOffer]()
	if req.NeedsHotel {
		hotels = s.search.SearchHotels(ctx, booking.HotelQuery{
			Destination: req.Destination,
			CheckIn:     req.StartDate,
			CheckOut:    req.EndDate,
			Adults:      req.Travelers.Adults,
			Children:    req.Travelers.Children,
		})
		l.InfoContext(ctx, "Hotel search finished", slog.String("status", string(hotels.Status)), slog.Int("count", len(hotels.Items)))
	}

	flights := types.Skipped[types.FlightOffer]()
	if req.NeedsFlight && req.Origin != "" {
		flights = s.search.SearchFlights(ctx, booking.FlightQuery{
			Origin:      req.Origin,
			Destination: req.Destination,
			DepartDate:  req.StartDate,
			ReturnDate:  req.EndDate,
			Adults:      req.Travelers.Adults,
			Children:    req.Travelers.Children,
		})
		l.InfoContext(ctx, "Flight search finished", slog.String("status", string(flights.Status)), slog.Int("count", len(flights.Items)))
	}

	layout := NewLayout(req, hotels.OrEmpty(), flights.OrEmpty())
	prompt := BuildPrompt(req, hotels.OrEmpty(), flights.OrEmpty())

	completion, err := s.llm.Complete(ctx, generativeAI.CompletionRequest{
		System:      SystemInstruction,
		Prompt:      prompt,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		l.ErrorContext(ctx, "Language model call failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	s.record(ctx, userID, req, prompt, completion)

	created, err := s.store.Create(ctx, types.TravelPlan{
		UserID:      userID,
		Origin:      req.Origin,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Preferences: req.Preferences,
		Travelers:   req.Travelers,
		Content:     completion.Text,
		Itinerary:   ParseItinerary(completion.Text, layout),
		HotelData:   hotels.OrEmpty(),
		FlightData:  flights.OrEmpty(),
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to persist plan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	l.InfoContext(ctx, "Travel plan generated", slog.String("plan_id", created.ID.String()),
		slog.Duration("elapsed", time.Since(start)))
	return &types.GeneratedPlan{
		Plan:         created,
		HotelSearch:  hotels.Summary(),
		FlightSearch: flights.Summary(),
	}, nil
}

func (s *ServiceImpl) record(ctx context.Context, userID uuid.UUID, req types.TripRequest, prompt string, c *generativeAI.Completion) {
	if s.recorder == nil {
		return
	}
	_, err := s.recorder.SaveInteraction(ctx, types.LlmInteraction{
		UserID:           userID,
		Prompt:           prompt,
		ResponseText:     c.Text,
		ModelUsed:        c.Model,
		Provider:         s.llm.Provider(),
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
		TotalTokens:      c.TotalTokens,
		LatencyMs:        int(c.Latency.Milliseconds()),
		Destination:      req.Destination,
	})
	if err != nil {
		// not fatal: the plan is still worth saving
		s.logger.WarnContext(ctx, "Failed to record llm interaction", slog.Any("error", err))
	}
}
