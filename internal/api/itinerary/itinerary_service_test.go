package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/booking"
	generativeAI "github.com/FACorreiaa/go-trip-planner-ai/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchHotels(ctx context.Context, q booking.HotelQuery) types.SearchResult[types.HotelOffer] {
	return m.Called(ctx, q).Get(0).(types.SearchResult[types.HotelOffer])
}

func (m *MockSearcher) SearchFlights(ctx context.Context, q booking.FlightQuery) types.SearchResult[types.FlightOffer] {
	return m.Called(ctx, q).Get(0).(types.SearchResult[types.FlightOffer])
}

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Complete(ctx context.Context, req generativeAI.CompletionRequest) (*generativeAI.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generativeAI.Completion), args.Error(1)
}

func (m *MockLLM) Provider() string { return "openai" }
func (m *MockLLM) Model() string    { return "gpt-3.5-turbo" }

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) SaveInteraction(ctx context.Context, in types.LlmInteraction) (uuid.UUID, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, plan types.TravelPlan) (*types.TravelPlan, error) {
	args := m.Called(ctx, plan)
	if fn, ok := args.Get(0).(func(context.Context, types.TravelPlan) *types.TravelPlan); ok {
		return fn(ctx, plan), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TravelPlan), args.Error(1)
}

// echoStore returns the plan it was given with server fields filled in.
func echoStore(s *MockStore) {
	s.On("Create", mock.Anything, mock.Anything).
		Return(func(_ context.Context, p types.TravelPlan) *types.TravelPlan {
			p.ID = uuid.New()
			p.CreatedAt = time.Now()
			p.UpdatedAt = p.CreatedAt
			return &p
		}, nil)
}

type fixture struct {
	search   *MockSearcher
	llm      *MockLLM
	recorder *MockRecorder
	store    *MockStore
	svc      *ServiceImpl
}

func newFixture() *fixture {
	f := &fixture{
		search:   new(MockSearcher),
		llm:      new(MockLLM),
		recorder: new(MockRecorder),
		store:    new(MockStore),
	}
	f.svc = NewServiceImpl(f.search, f.llm, f.recorder, f.store, 0, 0, slog.Default())
	return f
}

const planText = "1. Trip Overview\nGo.\n2. Paris Guide\nSee.\n3. Day-by-Day Itinerary\n[Day 1]\nMorning: Louvre\n4. Travel Tips\nWalk.\n5. Accommodation Recommendations in Paris\n[Book Now](https://www.booking.com/hotel/fr/lutetia.html)\n6. Budget Planning\nTotal Cost: 2000"

func TestGenerate_ParisHotelOnly(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	req := parisRequest()
	req.NeedsHotel = true

	f.search.On("SearchHotels", mock.Anything, booking.HotelQuery{
		Destination: "Paris", CheckIn: "2025-06-01", CheckOut: "2025-06-05", Adults: 2,
	}).Return(types.Found([]types.HotelOffer{lutetia})).Once()

	var sent generativeAI.CompletionRequest
	f.llm.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(generativeAI.CompletionRequest) }).
		Return(&generativeAI.Completion{Text: planText, Model: "gpt-3.5-turbo-0125", TotalTokens: 900, Latency: 3 * time.Second}, nil).Once()
	f.recorder.On("SaveInteraction", mock.Anything, mock.MatchedBy(func(in types.LlmInteraction) bool {
		return in.UserID == userID && in.Provider == "openai" && in.Destination == "Paris" && in.LatencyMs == 3000
	})).Return(uuid.New(), nil).Once()
	echoStore(f.store)

	out, err := f.svc.Generate(context.Background(), userID, req)
	require.NoError(t, err)

	assert.Equal(t, SystemInstruction, sent.System)
	assert.Equal(t, float32(0.7), sent.Temperature)
	assert.Equal(t, 2000, sent.MaxTokens)
	assert.Equal(t, BuildPrompt(req, []types.HotelOffer{lutetia}, nil), sent.Prompt)
	assert.Contains(t, sent.Prompt, "5. Accommodation Recommendations in Paris")
	assert.Contains(t, sent.Prompt, "6. Budget Planning")

	require.NotNil(t, out.Plan)
	assert.Equal(t, userID, out.Plan.UserID)
	assert.Equal(t, planText, out.Plan.Content, "content is stored unmodified")
	assert.Equal(t, []types.HotelOffer{lutetia}, out.Plan.HotelData)
	assert.Empty(t, out.Plan.FlightData)
	assert.Equal(t, types.SearchFound, out.HotelSearch.Status)
	assert.Equal(t, types.SearchSkipped, out.FlightSearch.Status)

	acc, ok := out.Plan.Itinerary.Section(types.SectionAccommodation)
	require.True(t, ok)
	assert.Equal(t, 5, acc.Number)
	f.search.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything)
	mock.AssertExpectationsForObjects(t, f.search, f.llm, f.recorder, f.store)
}

func TestGenerate_SearchFailuresDoNotAbort(t *testing.T) {
	f := newFixture()
	req := parisRequest()
	req.NeedsHotel = true
	req.NeedsFlight = true
	req.Origin = "Lisbon"

	f.search.On("SearchHotels", mock.Anything, mock.Anything).
		Return(types.Failed[types.HotelOffer](errors.New("booking: upstream returned status 429"))).Once()
	f.search.On("SearchFlights", mock.Anything, booking.FlightQuery{
		Origin: "Lisbon", Destination: "Paris", DepartDate: "2025-06-01", ReturnDate: "2025-06-05", Adults: 2,
	}).Return(types.NotFound[types.FlightOffer]()).Once()

	var prompt string
	f.llm.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.Get(1).(generativeAI.CompletionRequest).Prompt }).
		Return(&generativeAI.Completion{Text: "ok"}, nil).Once()
	f.recorder.On("SaveInteraction", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("db down")).Once()
	echoStore(f.store)

	out, err := f.svc.Generate(context.Background(), uuid.New(), req)
	require.NoError(t, err, "a failed interaction record must not fail generation")

	assert.NotContains(t, prompt, "Accommodation Recommendations")
	assert.NotContains(t, prompt, "Flight Information")
	assert.Contains(t, prompt, "5. Budget Planning")
	assert.Equal(t, types.SearchFailed, out.HotelSearch.Status)
	assert.Contains(t, out.HotelSearch.Error, "429")
	assert.Equal(t, types.SearchNotFound, out.FlightSearch.Status)
	assert.NotNil(t, out.Plan.HotelData)
	assert.NotNil(t, out.Plan.FlightData)
}

func TestGenerate_EmptyHotelSearchMovesBudgetUp(t *testing.T) {
	f := newFixture()
	req := parisRequest()
	req.NeedsHotel = true
	text := "1. Trip Overview\nGo.\n2. Paris Guide\nSee.\n3. Day-by-Day Itinerary\n[Day 1]\nMorning: Louvre\n4. Travel Tips\nWalk.\n5. Budget Planning\nTotal Cost: 900"

	f.search.On("SearchHotels", mock.Anything, mock.Anything).Return(types.NotFound[types.HotelOffer]()).Once()
	var prompt string
	f.llm.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.Get(1).(generativeAI.CompletionRequest).Prompt }).
		Return(&generativeAI.Completion{Text: text}, nil).Once()
	f.recorder.On("SaveInteraction", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	echoStore(f.store)

	out, err := f.svc.Generate(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.Contains(t, prompt, "5. Budget Planning")
	assert.NotContains(t, prompt, "Accommodation Recommendations")
	budget, ok := out.Plan.Itinerary.Section(types.SectionBudget)
	require.True(t, ok)
	assert.Equal(t, 5, budget.Number)
	_, ok = out.Plan.Itinerary.Section(types.SectionAccommodation)
	assert.False(t, ok)
	assert.Equal(t, ParseItinerary(text, NewLayout(types.TripRequest{NeedsHotel: true, NeedsFlight: true}, out.Plan.HotelData, out.Plan.FlightData)),
		out.Plan.Itinerary, "stored offers reproduce the generation layout")
}

func TestGenerate_FlightNeedsOrigin(t *testing.T) {
	f := newFixture()
	req := parisRequest()
	req.NeedsFlight = true

	f.llm.On("Complete", mock.Anything, mock.Anything).Return(&generativeAI.Completion{Text: "x"}, nil).Once()
	f.recorder.On("SaveInteraction", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	echoStore(f.store)

	out, err := f.svc.Generate(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, types.SearchSkipped, out.FlightSearch.Status)
	f.search.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything)
}

func TestGenerate_LLMFailure(t *testing.T) {
	f := newFixture()
	f.llm.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited")).Once()

	_, err := f.svc.Generate(context.Background(), uuid.New(), parisRequest())
	assert.ErrorIs(t, err, ErrGeneration)
	f.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerate_PersistenceFailure(t *testing.T) {
	f := newFixture()
	f.llm.On("Complete", mock.Anything, mock.Anything).Return(&generativeAI.Completion{Text: "x"}, nil).Once()
	f.recorder.On("SaveInteraction", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	f.store.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed")).Once()

	_, err := f.svc.Generate(context.Background(), uuid.New(), parisRequest())
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestGenerate_EndBeforeStart(t *testing.T) {
	f := newFixture()
	req := parisRequest()
	req.EndDate = "2025-05-30"

	_, err := f.svc.Generate(context.Background(), uuid.New(), req)
	assert.ErrorIs(t, err, types.ErrBadRequest)
	f.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestHandler_Generate(t *testing.T) {
	userID := uuid.New()
	body := func(v any) *bytes.Reader {
		b, _ := json.Marshal(v)
		return bytes.NewReader(b)
	}
	authed := func(r *http.Request) *http.Request {
		return r.WithContext(auth.WithUserID(r.Context(), userID.String()))
	}

	t.Run("created", func(t *testing.T) {
		f := newFixture()
		f.llm.On("Complete", mock.Anything, mock.Anything).Return(&generativeAI.Completion{Text: planText}, nil).Once()
		f.recorder.On("SaveInteraction", mock.Anything, mock.Anything).Return(uuid.New(), nil)
		echoStore(f.store)
		h := NewHandlerImpl(f.svc, slog.Default())

		rr := httptest.NewRecorder()
		h.Generate(rr, authed(httptest.NewRequest(http.MethodPost, "/api/travel-plans/generate", body(parisRequest()))))

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var got types.GeneratedPlan
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Paris", got.Plan.Destination)
		assert.Equal(t, planText, got.Plan.Content)
		assert.Equal(t, types.SearchSkipped, got.HotelSearch.Status)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		h := NewHandlerImpl(newFixture().svc, slog.Default())
		rr := httptest.NewRecorder()
		h.Generate(rr, httptest.NewRequest(http.MethodPost, "/api/travel-plans/generate", body(parisRequest())))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("validation", func(t *testing.T) {
		h := NewHandlerImpl(newFixture().svc, slog.Default())
		tests := map[string]any{
			"missing destination": map[string]any{"startDate": "2025-06-01", "endDate": "2025-06-05"},
			"bad date":            map[string]any{"destination": "Paris", "startDate": "01/06/2025", "endDate": "2025-06-05"},
			"flight no origin":    map[string]any{"destination": "Paris", "startDate": "2025-06-01", "endDate": "2025-06-05", "needsFlight": true},
			"unknown field":       map[string]any{"destination": "Paris", "startDate": "2025-06-01", "endDate": "2025-06-05", "bogus": 1},
		}
		for name, payload := range tests {
			t.Run(name, func(t *testing.T) {
				rr := httptest.NewRecorder()
				h.Generate(rr, authed(httptest.NewRequest(http.MethodPost, "/api/travel-plans/generate", body(payload))))
				assert.Equal(t, http.StatusBadRequest, rr.Code)
			})
		}
	})

	t.Run("llm failure", func(t *testing.T) {
		f := newFixture()
		f.llm.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
		h := NewHandlerImpl(f.svc, slog.Default())

		rr := httptest.NewRecorder()
		h.Generate(rr, authed(httptest.NewRequest(http.MethodPost, "/api/travel-plans/generate", body(parisRequest()))))
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("persistence failure", func(t *testing.T) {
		f := newFixture()
		f.llm.On("Complete", mock.Anything, mock.Anything).Return(&generativeAI.Completion{Text: "x"}, nil).Once()
		f.recorder.On("SaveInteraction", mock.Anything, mock.Anything).Return(uuid.New(), nil)
		f.store.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed")).Once()
		h := NewHandlerImpl(f.svc, slog.Default())

		rr := httptest.NewRecorder()
		h.Generate(rr, authed(httptest.NewRequest(http.MethodPost, "/api/travel-plans/generate", body(parisRequest()))))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
