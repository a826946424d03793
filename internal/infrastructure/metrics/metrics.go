package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tokenauth"

// Registry 包裝獨立的 prometheus registry，避免測試間互相污染全域狀態。
type Registry struct {
	reg *prometheus.Registry
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{reg: reg}
}

// Prometheus 回傳底層 registry，供測試讀值。
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

// Handler 提供 /metrics 輸出。
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// HTTPMetrics 記錄每個路由的請求數、延遲與進行中請求。
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	active   *prometheus.GaugeVec
}

func NewHTTPMetrics(r *Registry) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		}, []string{"method", "path", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests by method and path",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "Number of currently active HTTP requests by method and path",
		}, []string{"method", "path"}),
	}
	r.reg.MustRegister(m.requests, m.duration, m.active)
	return m
}

// Middleware 以 gin 的路由樣板當作 path label，未匹配路由統一記為 "unmatched"。
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.active.WithLabelValues(method, path).Inc()
		defer m.active.WithLabelValues(method, path).Dec()

		c.Next()

		m.requests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// TokenMetrics 實作 application 層的 Recorder。
type TokenMetrics struct {
	issued  *prometheus.CounterVec
	refresh *prometheus.CounterVec
}

func NewTokenMetrics(r *Registry) *TokenMetrics {
	m := &TokenMetrics{
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "issued_total",
			Help:      "Number of tokens issued by kind",
		}, []string{"kind"}),
		refresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "refresh_attempts_total",
			Help:      "Refresh attempts by outcome",
		}, []string{"outcome"}),
	}
	r.reg.MustRegister(m.issued, m.refresh)
	return m
}

func (m *TokenMetrics) TokenIssued(kind string) {
	m.issued.WithLabelValues(kind).Inc()
}

func (m *TokenMetrics) RefreshAttempt(outcome string) {
	m.refresh.WithLabelValues(outcome).Inc()
}
