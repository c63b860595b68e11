package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	database "github.com/FACorreiaa/go-trip-planner-ai/app/db"
	"github.com/FACorreiaa/go-trip-planner-ai/config"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/container"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/router"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

const e2eItinerary = `1. Trip Overview
Two days in Paris.

2. Paris Guide
Compact and walkable.

3. Day-by-Day Itinerary
[Day 1] Arrival
Morning: Check in
Evening: Seine cruise
[Day 2] Museums
Morning: Louvre

4. Travel Tips
Carry a Navigo pass.

5. Accommodation Options
No hotel options available for these dates.

6. Budget Breakdown
About 900 EUR.`

// E2ETestSuite drives the real router, services and Postgres. External
// providers are replaced by local httptest servers. Set E2E=1 and point the
// postgres settings at a disposable database to run it.
type E2ETestSuite struct {
	suite.Suite
	providers *httptest.Server
	server    *httptest.Server
	container *container.Container
	client    *http.Client
	authToken string
}

func TestE2ESuite(t *testing.T) {
	if os.Getenv("E2E") == "" {
		t.Skip("set E2E=1 to run end-to-end tests against Postgres")
	}
	suite.Run(t, new(E2ETestSuite))
}

// fakeProviders answers RapidAPI with empty results, Google Maps with
// ZERO_RESULTS and OpenAI chat completions with a fixed itinerary.
func fakeProviders() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":true,"data":[]}`)
	})
	mux.HandleFunc("/maps/api/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ZERO_RESULTS","results":[]}`)
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-e2e",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "gpt-3.5-turbo",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": e2eItinerary},
			}},
			"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 80, "total_tokens": 200},
		})
	})
	return mux
}

func (s *E2ETestSuite) SetupSuite() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s.providers = httptest.NewServer(fakeProviders())

	cfg, err := config.InitConfig()
	s.Require().NoError(err)
	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAI.APIKey = "e2e"
	cfg.LLM.OpenAI.BaseURL = s.providers.URL + "/v1"
	cfg.Booking.BaseURL = s.providers.URL
	cfg.Booking.Host = "booking-com15.p.rapidapi.com"
	cfg.Booking.RequestsPerSecond = 0
	cfg.Maps.BaseURL = s.providers.URL
	cfg.Server.GenerateRateLimit = 0

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(dbConfig.ConnectionURL, logger))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.container, err = container.NewContainer(ctx, &cfg, logger)
	s.Require().NoError(err)
	s.Require().True(s.container.WaitForDB(ctx))

	s.server = httptest.NewServer(router.SetupRouter(&router.Config{Container: s.container, Logger: logger}))
	s.client = &http.Client{Timeout: 30 * time.Second}
}

func (s *E2ETestSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.container != nil {
		s.container.Close()
	}
	if s.providers != nil {
		s.providers.Close()
	}
}

func (s *E2ETestSuite) do(method, path string, body any, out any) int {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *E2ETestSuite) TestPlanLifecycle() {
	var auth api.AuthResponse
	status := s.do(http.MethodPost, "/api/auth/register", api.RegisterRequest{
		Name:     "E2E Traveller",
		Email:    fmt.Sprintf("e2e+%d@example.com", time.Now().UnixNano()),
		Password: "correct-horse",
	}, &auth)
	s.Require().Equal(http.StatusCreated, status)
	s.Require().NotEmpty(auth.AccessToken)
	s.authToken = auth.AccessToken

	var generated types.GeneratedPlan
	status = s.do(http.MethodPost, "/api/travel-plans/generate", types.TripRequest{
		Destination: "Paris",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-02",
		Travelers:   types.Travelers{Adults: 2},
		NeedsHotel:  true,
	}, &generated)
	s.Require().Equal(http.StatusCreated, status)
	s.Equal(types.SearchNotFound, generated.HotelSearch.Status)
	s.Equal(types.SearchSkipped, generated.FlightSearch.Status)
	s.Require().NotNil(generated.Plan)
	s.Equal(e2eItinerary, generated.Plan.Content)
	daily, ok := generated.Plan.Itinerary.Section(types.SectionDaily)
	s.Require().True(ok)
	s.Len(daily.Days, 2)

	planPath := "/api/travel-plans/" + generated.Plan.ID.String()

	var fetched types.TravelPlan
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, planPath, nil, &fetched))
	s.Equal(generated.Plan.Content, fetched.Content)
	s.Equal("2025-06-01", fetched.StartDate)
	s.Equal("2025-06-02", fetched.EndDate)

	var plans []types.TravelPlan
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/travel-plans", nil, &plans))
	s.Require().NotEmpty(plans)
	s.Equal(generated.Plan.ID, plans[0].ID)

	req, err := http.NewRequest(http.MethodGet, s.server.URL+planPath+"/calendar", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+s.authToken)
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	ics, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(2, strings.Count(string(ics), "BEGIN:VEVENT"))

	var interactions []types.LlmInteraction
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/llm-interactions?limit=5", nil, &interactions))
	s.Require().NotEmpty(interactions)
	s.Equal(200, interactions[0].TotalTokens)

	s.Equal(http.StatusOK, s.do(http.MethodDelete, planPath, nil, nil))
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, planPath, nil, nil))
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, planPath, nil, nil))
}

func (s *E2ETestSuite) TestUnauthenticated() {
	s.authToken = ""
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/travel-plans", nil, nil))
}
