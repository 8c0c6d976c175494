package bootstrap

import (
	"fmt"
	"log"

	"github.com/go-authgate/connectgate/internal/config"
	"github.com/go-authgate/connectgate/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	callback    gin.HandlerFunc
	connections gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration.
// onCallbackLimited answers a throttled Discord callback; nil keeps the JSON 429.
func setupRateLimiting(
	cfg *config.Config,
	redisClient *redis.Client,
	onCallbackLimited gin.HandlerFunc,
) (rateLimitMiddlewares, error) {
	if !cfg.EnableRateLimit {
		noOpMiddleware := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{
			callback:    noOpMiddleware,
			connections: noOpMiddleware,
		}, nil
	}
	return createRateLimiters(cfg, redisClient, onCallbackLimited)
}

// createRateLimiters creates rate limiting middlewares for all endpoints
func createRateLimiters(
	cfg *config.Config,
	redisClient *redis.Client,
	onCallbackLimited gin.HandlerFunc,
) (rateLimitMiddlewares, error) {
	log.Printf("Rate limiting enabled (store: %s)", cfg.RateLimitStore)

	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	if storeType == middleware.RateLimitStoreRedis {
		log.Printf("Using shared Redis client for rate limiting (provided externally)")
	} else {
		log.Printf("In-memory rate limiting configured (single instance only)")
	}

	createLimiter := func(
		requestsPerMinute int,
		prefix string,
		onLimitReached gin.HandlerFunc,
	) (gin.HandlerFunc, error) {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			CleanupInterval:   cfg.RateLimitCleanupInterval,
			Prefix:            prefix,
			StoreType:         storeType,
			RedisClient:       redisClient, // nil for memory store
			OnLimitReached:    onLimitReached,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter %s: %w", prefix, err)
		}
		return limiter, nil
	}

	callback, err := createLimiter(cfg.CallbackRateLimit, "ratelimit:callback", onCallbackLimited)
	if err != nil {
		return rateLimitMiddlewares{}, err
	}
	connections, err := createLimiter(cfg.ConnectionRateLimit, "ratelimit:connections", nil)
	if err != nil {
		return rateLimitMiddlewares{}, err
	}

	return rateLimitMiddlewares{
		callback:    callback,
		connections: connections,
	}, nil
}
