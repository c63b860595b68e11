package travelPlan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

const calendarProductID = "-//go-trip-planner-ai//travel plans//EN"

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreatePlan(ctx context.Context, userID uuid.UUID, params types.CreateTravelPlanParams) (*types.TravelPlan, error)
	ListPlans(ctx context.Context, userID uuid.UUID) ([]types.TravelPlan, error)
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*types.TravelPlan, error)
	UpdatePlan(ctx context.Context, userID, planID uuid.UUID, params types.UpdateTravelPlanParams) (*types.TravelPlan, error)
	DeletePlan(ctx context.Context, userID, planID uuid.UUID) error
	Calendar(ctx context.Context, userID, planID uuid.UUID) (string, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// layoutFor recovers the prompt layout of stored content from the offers saved
// with it. Generation only stores offers it asked for, so this matches the
// layout the content was generated with.
func layoutFor(hotels []types.HotelOffer, flights []types.FlightOffer) itinerary.Layout {
	return itinerary.NewLayout(types.TripRequest{NeedsHotel: true, NeedsFlight: true}, hotels, flights)
}

func checkDates(start, end string) error {
	return itinerary.CheckDates(types.TripRequest{StartDate: start, EndDate: end})
}

func (s *ServiceImpl) CreatePlan(ctx context.Context, userID uuid.UUID, params types.CreateTravelPlanParams) (*types.TravelPlan, error) {
	ctx, span := otel.Tracer("TravelPlanService").Start(ctx, "CreatePlan", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("destination", params.Destination),
	))
	defer span.End()

	if strings.TrimSpace(params.Destination) == "" {
		return nil, fmt.Errorf("destination is required: %w", types.ErrBadRequest)
	}
	if err := checkDates(params.StartDate, params.EndDate); err != nil {
		return nil, err
	}
	if params.Travelers.Adults <= 0 {
		params.Travelers.Adults = 1
	}

	plan, err := s.repo.Create(ctx, types.TravelPlan{
		UserID:      userID,
		Origin:      params.Origin,
		Destination: params.Destination,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		Budget:      params.Budget,
		Preferences: params.Preferences,
		Travelers:   params.Travelers,
		Content:     params.Content,
		Itinerary:   itinerary.ParseItinerary(params.Content, layoutFor(params.HotelData, params.FlightData)),
		HotelData:   params.HotelData,
		FlightData:  params.FlightData,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}
	s.logger.InfoContext(ctx, "Travel plan created", slog.String("plan_id", plan.ID.String()))
	span.SetStatus(codes.Ok, "")
	return plan, nil
}

func (s *ServiceImpl) ListPlans(ctx context.Context, userID uuid.UUID) ([]types.TravelPlan, error) {
	ctx, span := otel.Tracer("TravelPlanService").Start(ctx, "ListPlans", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()
	return s.repo.List(ctx, userID)
}

func (s *ServiceImpl) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*types.TravelPlan, error) {
	ctx, span := otel.Tracer("TravelPlanService").Start(ctx, "GetPlan", trace.WithAttributes(
		attribute.String("travel_plan.id", planID.String()),
	))
	defer span.End()
	return s.repo.Get(ctx, userID, planID)
}

// UpdatePlan applies the provided fields over the stored plan. Changed content
// is parsed again so the structured itinerary follows the text.
func (s *ServiceImpl) UpdatePlan(ctx context.Context, userID, planID uuid.UUID, params types.UpdateTravelPlanParams) (*types.TravelPlan, error) {
	ctx, span := otel.Tracer("TravelPlanService").Start(ctx, "UpdatePlan", trace.WithAttributes(
		attribute.String("travel_plan.id", planID.String()),
	))
	defer span.End()

	plan, err := s.repo.Get(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	if params.Destination != nil {
		if strings.TrimSpace(*params.Destination) == "" {
			return nil, fmt.Errorf("destination must not be empty: %w", types.ErrBadRequest)
		}
		plan.Destination = *params.Destination
	}
	if params.StartDate != nil {
		plan.StartDate = *params.StartDate
	}
	if params.EndDate != nil {
		plan.EndDate = *params.EndDate
	}
	if params.StartDate != nil || params.EndDate != nil {
		if err := checkDates(plan.StartDate, plan.EndDate); err != nil {
			return nil, err
		}
	}
	if params.Budget != nil {
		plan.Budget = *params.Budget
	}
	if params.Preferences != nil {
		plan.Preferences = *params.Preferences
	}
	if params.Content != nil && *params.Content != plan.Content {
		plan.Content = *params.Content
		plan.Itinerary = itinerary.ParseItinerary(plan.Content, layoutFor(plan.HotelData, plan.FlightData))
	}

	updated, err := s.repo.Update(ctx, *plan)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return updated, nil
}

func (s *ServiceImpl) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	ctx, span := otel.Tracer("TravelPlanService").Start(ctx, "DeletePlan", trace.WithAttributes(
		attribute.String("travel_plan.id", planID.String()),
	))
	defer span.End()

	if err := s.repo.Delete(ctx, userID, planID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Travel plan deleted", slog.String("plan_id", planID.String()))
	return nil
}

// Calendar renders an owned plan as an iCalendar document.
func (s *ServiceImpl) Calendar(ctx context.Context, userID, planID uuid.UUID) (string, error) {
	ctx, span := otel.Tracer("TravelPlanService").Start(ctx, "Calendar", trace.WithAttributes(
		attribute.String("travel_plan.id", planID.String()),
	))
	defer span.End()

	plan, err := s.repo.Get(ctx, userID, planID)
	if err != nil {
		return "", err
	}
	return BuildCalendar(*plan)
}

// BuildCalendar emits one all-day event per itinerary day. Plans without a
// parsed day-by-day section get a single event spanning the whole trip.
func BuildCalendar(plan types.TravelPlan) (string, error) {
	start, err := time.Parse(time.DateOnly, plan.StartDate)
	if err != nil {
		return "", fmt.Errorf("plan start date %q: %w", plan.StartDate, types.ErrBadRequest)
	}
	end, err := time.Parse(time.DateOnly, plan.EndDate)
	if err != nil {
		return "", fmt.Errorf("plan end date %q: %w", plan.EndDate, types.ErrBadRequest)
	}
	stamp := plan.UpdatedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Trip to " + plan.Destination)

	var days []types.ItineraryDay
	if daily, ok := plan.Itinerary.Section(types.SectionDaily); ok {
		days = daily.Days
	}

	if len(days) == 0 {
		ev := cal.AddEvent(fmt.Sprintf("%s@travel-plans", plan.ID))
		ev.SetDtStampTime(stamp)
		ev.SetSummary("Trip to " + plan.Destination)
		ev.SetLocation(plan.Destination)
		ev.SetAllDayStartAt(start)
		// DTEND is exclusive for all-day events
		ev.SetAllDayEndAt(end.AddDate(0, 0, 1))
		if plan.Preferences != "" {
			ev.SetDescription(plan.Preferences)
		}
		return cal.Serialize(), nil
	}

	for _, d := range days {
		date := start.AddDate(0, 0, d.Day-1)
		ev := cal.AddEvent(fmt.Sprintf("%s-day-%d@travel-plans", plan.ID, d.Day))
		ev.SetDtStampTime(stamp)
		summary := fmt.Sprintf("Day %d in %s", d.Day, plan.Destination)
		if d.Title != "" {
			summary += ": " + d.Title
		}
		ev.SetSummary(summary)
		ev.SetLocation(plan.Destination)
		ev.SetAllDayStartAt(date)
		ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
		if desc := dayDescription(d); desc != "" {
			ev.SetDescription(desc)
		}
	}
	return cal.Serialize(), nil
}

func dayDescription(d types.ItineraryDay) string {
	var parts []string
	for _, slot := range []struct{ name, text string }{
		{"Morning", d.Morning},
		{"Afternoon", d.Afternoon},
		{"Evening", d.Evening},
	} {
		if slot.text != "" {
			parts = append(parts, slot.name+": "+slot.text)
		}
	}
	parts = append(parts, d.Notes...)
	return strings.Join(parts, "\n")
}
