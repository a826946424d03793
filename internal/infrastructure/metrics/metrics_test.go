package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry()
	m := NewHTTPMetrics(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/ping", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.active.WithLabelValues("GET", "/api/ping")))
}

func TestTokenMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewTokenMetrics(reg)

	m.TokenIssued("access")
	m.TokenIssued("access")
	m.TokenIssued("refresh")
	m.RefreshAttempt("mismatch")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.issued.WithLabelValues("access")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.issued.WithLabelValues("refresh")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refresh.WithLabelValues("mismatch")))
}

func TestRegistry_Handler(t *testing.T) {
	reg := NewRegistry()
	m := NewTokenMetrics(reg)
	m.TokenIssued("access")

	w := httptest.NewRecorder()
	reg.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `tokenauth_tokens_issued_total{kind="access"} 1`), body)
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
