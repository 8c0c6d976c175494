package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	m := Init(true)
	assert.NotNil(t, m)

	// Type assert to concrete Metrics to access fields
	metrics, ok := m.(*Metrics)
	assert.True(t, ok, "Init(true) should return *Metrics")
	assert.NotNil(t, metrics.OAuthCallbacksTotal)
	assert.NotNil(t, metrics.ConnectionUpserts)
	assert.NotNil(t, metrics.HTTPRequestsTotal)

	// A second call must not re-register collectors
	assert.Same(t, metrics, Init(true))
}

func TestInitNoop(t *testing.T) {
	m := Init(false)
	assert.NotNil(t, m)

	// Type assert to NoopMetrics
	_, ok := m.(*NoopMetrics)
	assert.True(t, ok, "Init(false) should return *NoopMetrics")
}

func TestRecordOAuthCallback(t *testing.T) {
	m := Init(true).(*Metrics)

	before := testutil.ToFloat64(m.OAuthCallbacksTotal.WithLabelValues("discord", "webhook"))
	m.RecordOAuthCallback("discord", "webhook")
	m.RecordOAuthCallback("discord", "error")

	after := testutil.ToFloat64(m.OAuthCallbacksTotal.WithLabelValues("discord", "webhook"))
	assert.InDelta(t, 1, after-before, 0.0001)
}

func TestRecordExternalAPICall(t *testing.T) {
	m := Init(true)

	m.RecordExternalAPICall("discord", "token_exchange", 300*time.Millisecond)
	m.RecordExternalAPICall("discord", "guilds", 120*time.Millisecond)
	// No error means success
}

func TestRecordConnectionUpsert(t *testing.T) {
	m := Init(true).(*Metrics)

	before := testutil.ToFloat64(m.ConnectionUpserts.WithLabelValues("notion", "created"))
	m.RecordConnectionUpsert("notion", "created")
	m.RecordConnectionUpsert("notion", "updated")

	after := testutil.ToFloat64(m.ConnectionUpserts.WithLabelValues("notion", "created"))
	assert.InDelta(t, 1, after-before, 0.0001)
}

func TestSetConnectionsCount(t *testing.T) {
	m := Init(true).(*Metrics)

	m.SetConnectionsCount("Notion", 42)
	assert.InDelta(t, 42, testutil.ToFloat64(m.ConnectionsActive.WithLabelValues("Notion")), 0.0001)
}

func TestRecordDatabaseQueryError(t *testing.T) {
	m := Init(true)

	m.RecordDatabaseQueryError("count_connections")
	// No error means success
}

func TestNoopMetrics(t *testing.T) {
	m := NewNoopMetrics()

	assert.NotPanics(t, func() {
		m.RecordOAuthCallback("discord", "token")
		m.RecordExternalAPICall("discord", "guilds", time.Second)
		m.RecordConnectionUpsert("notion", "skipped")
		m.SetConnectionsCount("Notion", 1)
		m.RecordDatabaseQueryError("count_connections")
	})
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := Init(true).(*Metrics)

	r := gin.New()
	r.Use(HTTPMetricsMiddleware(m))
	r.GET("/api/connections", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/metrics", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	counter := m.HTTPRequestsTotal.WithLabelValues("GET", "/api/connections", "204")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/api/connections", nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.InDelta(t, 1, testutil.ToFloat64(counter)-before, 0.0001)

	// The metrics endpoint itself is not recorded
	metricsCounter := m.HTTPRequestsTotal.WithLabelValues("GET", "/metrics", "200")
	metricsBefore := testutil.ToFloat64(metricsCounter)
	w = httptest.NewRecorder()
	req, err = http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)
	assert.InDelta(t, 0, testutil.ToFloat64(metricsCounter)-metricsBefore, 0.0001)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		fullPath string
		expected string
	}{
		{"empty path", "", "unknown"},
		{"root path", "/", "/"},
		{"health check", "/health", "/health"},
		{"callback", "/api/auth/callback/discord", "/api/auth/callback/discord"},
		{"parameterized", "/users/:id", "/users/:id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizePath(tt.fullPath)
			assert.Equal(t, tt.expected, result)
		})
	}
}
