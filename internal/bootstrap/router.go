package bootstrap

import (
	"log"
	"net/http"

	"github.com/go-authgate/connectgate/internal/config"
	"github.com/go-authgate/connectgate/internal/core"
	"github.com/go-authgate/connectgate/internal/metrics"
	"github.com/go-authgate/connectgate/internal/middleware"
	"github.com/go-authgate/connectgate/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const sessionName = "connectgate_session"

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	recorder core.Recorder,
	rateLimitRedisClient *redis.Client,
) (*gin.Engine, error) {
	// Setup Gin mode
	setupGinMode(cfg)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.IPMiddleware())

	// Setup session middleware
	setupSessionMiddleware(r, cfg)

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Setup rate limiting. A throttled callback still lands on the connections page.
	rateLimiters, err := setupRateLimiting(cfg, rateLimitRedisClient, h.discord.RateLimited)
	if err != nil {
		return nil, err
	}

	// Setup all routes
	setupAllRoutes(r, cfg, h, rateLimiters)

	// Log server startup info
	logServerStartup(cfg)

	return r, nil
}

// setupSessionMiddleware configures session handling middleware
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
) {
	// Discord OAuth (public, browser redirects)
	r.GET("/api/auth/login/discord", h.discord.Login)
	r.GET(config.DiscordCallbackPath, rateLimiters.callback, h.discord.Callback)

	// Connection API (requires an identity)
	api := r.Group("/api")
	api.Use(middleware.RequireUser(cfg.JWTSecret), rateLimiters.connections)
	{
		api.POST("/connections/notion", h.connection.ConnectNotion)
		api.GET("/connections/notion", h.connection.GetNotionConnection)
		api.GET("/connections", h.connection.ListConnections)
	}
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(c.Request.Context()); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("ConnectGate server starting on %s", cfg.ServerAddr)
	log.Printf("Discord login URL: %s/api/auth/login/discord", cfg.BaseURL)
	log.Printf("Discord redirect URI: %s", cfg.DiscordRedirectURL())
	log.Printf("Connections page: %s", cfg.ConnectionsURL())
}
