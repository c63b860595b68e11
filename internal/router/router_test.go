package router

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-trip-planner-ai/config"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/container"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "router-test-secret"
	cfg.Handlers.Prometheus.Enabled = true
	cfg.Server.GenerateRateLimit = 1

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	return SetupRouter(&Config{
		Container: &container.Container{
			Config:   cfg,
			Logger:   slog.Default(),
			Denylist: auth.NewTokenDenylist(0),
		},
		MetricsHandler: metrics,
		Logger:         slog.Default(),
	})
}

func TestRouter_PublicEndpoints(t *testing.T) {
	h := testHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "# metrics")
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	h := testHandler(t)
	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/travel-plans/generate"},
		{http.MethodGet, "/api/travel-plans"},
		{http.MethodGet, "/api/travel-plans/3f1c2d4e-0000-4000-8000-000000000000"},
		{http.MethodDelete, "/api/travel-plans/3f1c2d4e-0000-4000-8000-000000000000"},
		{http.MethodGet, "/api/search/hotels?destination=Paris"},
		{http.MethodGet, "/api/search/activities?location=Paris"},
		{http.MethodGet, "/api/llm-interactions"},
		{http.MethodGet, "/api/auth/me"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	rr := httptest.NewRecorder()
	testHandler(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Route not found")
}
