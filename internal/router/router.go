package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/FACorreiaa/go-trip-planner-ai/docs"

	appLogger "github.com/FACorreiaa/go-trip-planner-ai/app/logger"
	appMiddleware "github.com/FACorreiaa/go-trip-planner-ai/app/middleware"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/container"
)

const defaultRequestTimeout = 90 * time.Second

// Config contains dependencies needed for the router setup
type Config struct {
	Container      *container.Container
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// SetupRouter builds the HTTP handler: server-wide middleware, public auth
// routes, and the bearer-protected API.
func SetupRouter(cfg *Config) http.Handler {
	c := cfg.Container
	appCfg := c.Config
	logger := cfg.Logger

	timeout := appCfg.Server.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(appMiddleware.RouteSpanName)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(timeout))
	r.Use(appMiddleware.CORS(appCfg.Server.CORSOrigins))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Message: "ok"})
	})

	if cfg.MetricsHandler != nil && appCfg.Handlers.Prometheus.Enabled {
		path := appCfg.Handlers.Prometheus.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}
	if appCfg.Handlers.Swagger.Enabled {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	authenticate := auth.Authenticate(logger, appCfg.JWT, c.Denylist)
	generateLimit := appMiddleware.RateLimitByIP(appCfg.Server.GenerateRateLimit, time.Minute, logger)

	r.Route("/api", func(r chi.Router) {
		// --- Public Auth Routes ---
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", c.AuthHandler.Register)
			r.Post("/auth/login", c.AuthHandler.Login)
			r.Post("/auth/google", c.AuthHandler.GoogleLogin)
			r.Post("/auth/refresh", c.AuthHandler.RefreshToken)
			r.Get("/auth/oauth/{provider}", c.AuthHandler.BeginOAuth)
			r.Get("/auth/oauth/{provider}/callback", c.AuthHandler.OAuthCallback)
		})

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/auth/logout", c.AuthHandler.Logout)
			r.Get("/auth/me", c.AuthHandler.Me)

			r.Route("/travel-plans", func(r chi.Router) {
				r.With(generateLimit).Post("/generate", c.ItineraryHandler.Generate)
				r.Post("/", c.TravelPlanHandler.CreatePlan)
				r.Get("/", c.TravelPlanHandler.ListPlans)
				r.Get("/{id}", c.TravelPlanHandler.GetPlan)
				r.Put("/{id}", c.TravelPlanHandler.UpdatePlan)
				r.Patch("/{id}", c.TravelPlanHandler.UpdatePlan)
				r.Delete("/{id}", c.TravelPlanHandler.DeletePlan)
				r.Get("/{id}/calendar", c.TravelPlanHandler.Calendar)
			})

			r.Route("/search", func(r chi.Router) {
				r.Get("/hotels", c.BookingHandler.SearchHotels)
				r.Get("/flights", c.BookingHandler.SearchFlights)
				r.Get("/flights/details", c.BookingHandler.FlightDetails)
				r.Get("/airport-code", c.BookingHandler.AirportCode)
				r.Get("/activities", c.PlacesHandler.SearchActivities)
				r.Get("/restaurants", c.PlacesHandler.SearchRestaurants)
			})

			r.Get("/llm-interactions", c.LLMInteractionHandler.ListInteractions)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.ErrorResponse(w, r, http.StatusNotFound, "Route not found")
	})

	return otelhttp.NewHandler(r, "travel-planner-api",
		otelhttp.WithSpanNameFormatter(appMiddleware.SpanName),
	)
}
