package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_Memory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Create memory-based rate limiter (5 requests per minute)
	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 5,
		StoreType:         RateLimitStoreMemory,
		CleanupInterval:   5 * time.Minute,
	})
	require.NoError(t, err)
	require.NotNil(t, limiter)

	router := gin.New()
	router.Use(limiter)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	// First requests should succeed
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.100")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}

	// Next request should be rate limited
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.100")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code, "Request should be rate limited")
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestNewRateLimiter_MemoryStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 10,
		StoreType:         RateLimitStoreMemory,
		CleanupInterval:   1 * time.Minute,
	})
	require.NoError(t, err)
	require.NotNil(t, limiter)

	router := gin.New()
	router.Use(limiter)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	// Test basic functionality
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 2,
		StoreType:         RateLimitStoreMemory,
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(limiter)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	// Different IPs should have independent limits
	ips := []string{"192.168.1.1", "192.168.1.2", "192.168.1.3"}

	for _, ip := range ips {
		// Each IP can make 2 requests
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Forwarded-For", ip)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code, "Request %d from IP %s should succeed", i+1, ip)
		}

		// Third request from this IP should be rate limited
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(
			t,
			http.StatusTooManyRequests,
			w.Code,
			"Third request from IP %s should be rate limited",
			ip,
		)
	}
}

func TestRateLimiter_ErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 1,
		StoreType:         RateLimitStoreMemory,
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(limiter)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	// First request succeeds
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.50")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Second request should be rate limited with proper error
	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.50")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestNewRateLimiter_RedisWithoutClient(t *testing.T) {
	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 10,
		StoreType:         RateLimitStoreRedis,
	})

	assert.ErrorIs(t, err, ErrRedisClientRequired)
	assert.Nil(t, limiter)
}

func TestNewRateLimiter_NonPositiveLimit(t *testing.T) {
	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 0,
		StoreType:         RateLimitStoreMemory,
	})

	require.Error(t, err)
	assert.Nil(t, limiter)
}

func TestRateLimiter_CustomLimitReachedHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 1,
		StoreType:         RateLimitStoreMemory,
		OnLimitReached: func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/connections?error=rate_limit_exceeded")
		},
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(limiter)
	router.GET("/callback", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/connections")
	})

	for i, expected := range []string{"/connections", "/connections?error=rate_limit_exceeded"} {
		req := httptest.NewRequest(http.MethodGet, "/callback", nil)
		req.Header.Set("X-Forwarded-For", "192.168.7.7")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code, "request %d", i+1)
		assert.Equal(t, expected, w.Header().Get("Location"), "request %d", i+1)
	}
}

func TestRateLimiter_PrefixesAreIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newLimited := func(prefix string) gin.HandlerFunc {
		limiter, err := NewRateLimiter(RateLimitConfig{
			RequestsPerMinute: 1,
			StoreType:         RateLimitStoreMemory,
			Prefix:            prefix,
		})
		require.NoError(t, err)
		return limiter
	}

	router := gin.New()
	router.GET("/a", newLimited("a"), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/b", newLimited("b"), func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/a", "/b"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Forwarded-For", "10.1.1.1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "first request to %s", path)
	}
}

// TestRedisRateLimiter_MultiInstance simulates multiple pods sharing Redis.
// Requires a Redis server on localhost:6379 and is skipped otherwise.
func TestRedisRateLimiter_MultiInstance(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := getRedisClientForTest()
	if client == nil {
		t.Skip("Redis not available")
		return
	}
	t.Cleanup(func() { _ = client.Close() })

	gin.SetMode(gin.TestMode)

	newPod := func(name string) *gin.Engine {
		limiter, err := NewRateLimiter(RateLimitConfig{
			RequestsPerMinute: 5,
			StoreType:         RateLimitStoreRedis,
			RedisClient:       client,
			Prefix:            "ratelimit-test",
		})
		require.NoError(t, err)

		router := gin.New()
		router.Use(limiter)
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": name})
		})
		return router
	}

	router1 := newPod("pod1")
	router2 := newPod("pod2")

	testIP := "192.168.88." + time.Now().Format("150405")

	// Make 3 requests to pod1
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", testIP)
		w := httptest.NewRecorder()
		router1.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "Pod1 request %d should succeed", i+1)
	}

	// Make 2 requests to pod2 (should succeed, total = 5)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", testIP)
		w := httptest.NewRecorder()
		router2.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "Pod2 request %d should succeed", i+1)
	}

	// Next request to either pod should be rate limited (total would be 6)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", testIP)
	w := httptest.NewRecorder()
	router1.ServeHTTP(w, req)

	assert.Equal(
		t,
		http.StatusTooManyRequests,
		w.Code,
		"Shared rate limit should be enforced across pods",
	)

	_ = client.Del(context.Background(), "ratelimit-test:"+testIP).Err()
}

// Helper function to get Redis client for tests
// Returns nil if Redis is not available
func getRedisClientForTest() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
