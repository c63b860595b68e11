package container

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-trip-planner-ai/app/db"
	"github.com/FACorreiaa/go-trip-planner-ai/config"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/booking"
	generativeAI "github.com/FACorreiaa/go-trip-planner-ai/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/itinerary"
	llmInteraction "github.com/FACorreiaa/go-trip-planner-ai/internal/api/llm_interaction"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/places"
	travelPlan "github.com/FACorreiaa/go-trip-planner-ai/internal/api/travel_plan"
)

const denylistCleanupInterval = 10 * time.Minute

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Pool     *pgxpool.Pool
	Denylist *auth.TokenDenylist

	AuthHandler           *auth.AuthHandlerImpl
	ItineraryHandler      *itinerary.HandlerImpl
	TravelPlanHandler     *travelPlan.HandlerImpl
	BookingHandler        *booking.HandlerImpl
	PlacesHandler         *places.HandlerImpl
	LLMInteractionHandler *llmInteraction.HandlerImpl
	OAuthProviders        []string
}

// NewContainer connects to the database and builds every client, service and
// handler. Migrations are not run here; see RunMigrations.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	maxWait := time.Duration(cfg.Repositories.Postgres.MAXCONWAITINGTIME) * time.Second
	pool, err := database.Init(dbConfig.ConnectionURL, maxWait, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	c, err := newContainer(ctx, cfg, logger, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	c.Pool = pool
	return c, nil
}

func newContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, pool database.DBTX) (*Container, error) {
	llm, err := generativeAI.NewLLMClient(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("Failed to initialize language model client", slog.Any("error", err))
		return nil, fmt.Errorf("llm client: %w", err)
	}

	// auth
	denylist := auth.NewTokenDenylist(denylistCleanupInterval)
	authRepo := auth.NewAuthRepoFactory(pool, logger)
	authService := auth.NewAuthService(authRepo, cfg, denylist, logger)
	authHandler := auth.NewAuthHandlerImpl(authService, logger)
	providers := auth.SetupOAuthProviders(cfg.OAuth, cfg.Mode != "development", logger)

	// external providers
	bookingClient := booking.NewClient(cfg.Booking, logger)
	mapsClient := places.NewClient(cfg.Maps, logger)
	placesService := places.NewServiceImpl(mapsClient, places.NewTimezoneFinder(), logger)

	// persistence
	interactionRepo := llmInteraction.NewPostgresLlmInteractionRepo(pool, logger)
	planRepo := travelPlan.NewRepository(pool, logger)
	planService := travelPlan.NewServiceImpl(planRepo, logger)

	// generation pipeline
	itineraryService := itinerary.NewServiceImpl(bookingClient, llm, interactionRepo, planRepo,
		cfg.LLM.Temperature, cfg.LLM.MaxTokens, logger)

	logger.Info("Dependencies initialized",
		slog.String("llm_provider", llm.Provider()),
		slog.String("llm_model", llm.Model()),
	)

	return &Container{
		Config:                cfg,
		Logger:                logger,
		Denylist:              denylist,
		AuthHandler:           authHandler,
		ItineraryHandler:      itinerary.NewHandlerImpl(itineraryService, logger),
		TravelPlanHandler:     travelPlan.NewHandlerImpl(planService, logger),
		BookingHandler:        booking.NewHandlerImpl(bookingClient, logger),
		PlacesHandler:         places.NewHandlerImpl(placesService, logger),
		LLMInteractionHandler: llmInteraction.NewHandlerImpl(interactionRepo, logger),
		OAuthProviders:        providers,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
