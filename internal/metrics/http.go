package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m Recorder) gin.HandlerFunc {
	// If NoopMetrics, return a lightweight middleware that does nothing
	if _, ok := m.(*NoopMetrics); ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	// Type assert to concrete Metrics for Prometheus access
	metrics, ok := m.(*Metrics)
	if !ok {
		// Fallback if unknown implementation
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		// Increment in-flight counter
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		// Process request
		c.Next()

		// Record metrics after request completes
		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		// Record request count
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()

		// Record request duration
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath converts the actual request path to route pattern
// Returns the route pattern (e.g., "/users/:id") or the path itself if no match
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

// RecordOAuthCallback records the outcome of an OAuth callback
func (m *Metrics) RecordOAuthCallback(provider, result string) {
	m.OAuthCallbacksTotal.WithLabelValues(provider, result).Inc()
}

// RecordExternalAPICall records the duration of a third-party API call
func (m *Metrics) RecordExternalAPICall(
	provider, operation string,
	duration time.Duration,
) {
	m.ExternalAPIDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordConnectionUpsert records a connection upsert
func (m *Metrics) RecordConnectionUpsert(provider, action string) {
	m.ConnectionUpserts.WithLabelValues(provider, action).Inc()
}

// SetConnectionsCount sets the current count of stored connections (for periodic updates)
func (m *Metrics) SetConnectionsCount(connectionType string, count int) {
	m.ConnectionsActive.WithLabelValues(connectionType).Set(float64(count))
}

// RecordDatabaseQueryError records a database query error during metric collection
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}

// String formats the metrics for logging
func (m *Metrics) String() string {
	return "Metrics{OAuth: enabled, Connections: enabled, HTTP: enabled}"
}
