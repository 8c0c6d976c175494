package bootstrap

import (
	"context"
	"net/http"

	"github.com/go-authgate/connectgate/internal/config"
	"github.com/go-authgate/connectgate/internal/core"
	"github.com/go-authgate/connectgate/internal/services"
	"github.com/go-authgate/connectgate/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store
	MetricsRecorder      core.Recorder
	RateLimitRedisClient *redis.Client

	// Services
	ConnectionService *services.ConnectionService

	// HTTP
	DiscordClient core.DiscordClient
	HandlerSet    handlerSet
	Router        *gin.Engine
	Server        *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}
	ctx := context.Background()

	// Phase 1: Validate configuration
	validateAllConfiguration(cfg)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 4: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		return err
	}

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config)

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		_ = app.DB.Close()
		return err
	}

	return nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() {
	app.ConnectionService = initializeServices(app.DB, app.MetricsRecorder)
}

// initializeHTTPLayer sets up the Discord client, handlers, router, and server
func (app *Application) initializeHTTPLayer() error {
	oauthHTTPClient, err := createOAuthHTTPClient(app.Config)
	if err != nil {
		return err
	}
	app.DiscordClient = newDiscordProvider(app.Config, oauthHTTPClient)

	// Handlers
	app.HandlerSet = initializeHandlers(
		app.Config,
		app.DiscordClient,
		app.ConnectionService,
		app.MetricsRecorder,
	)

	// Router
	app.Router, err = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.MetricsRecorder,
		app.RateLimitRedisClient,
	)
	if err != nil {
		return err
	}

	// HTTP Server
	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Add jobs
	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Config, app.Server)
	addMetricsGaugeUpdateJob(m, app.Config, app.ConnectionService)
	addRedisClientShutdownJob(m, app.Config, app.RateLimitRedisClient)
	addDatabaseShutdownJob(m, app.DB)

	// Wait for graceful shutdown
	<-m.Done()
}
