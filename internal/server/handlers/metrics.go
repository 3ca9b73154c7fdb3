package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsHandler owns the Prometheus registry. It is also the recorder handed to the
// data source and its cache.
type MetricsHandler struct {
	logger   *zap.Logger
	registry *prometheus.Registry
	handler  http.Handler

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	serviceCalls    *prometheus.CounterVec
	serviceErrors   *prometheus.CounterVec
}

func NewMetricsHandler(logger *zap.Logger) *MetricsHandler {
	h := &MetricsHandler{
		logger:   logger,
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of active HTTP requests",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_cache_hits_total",
			Help: "Total cache hits",
		}, []string{"cache"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_cache_miss_total",
			Help: "Total cache misses",
		}, []string{"cache"}),
		serviceCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_service_calls_total",
			Help: "Total weather service calls",
		}, []string{"service"}),
		serviceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_service_errors_total",
			Help: "Total weather service errors",
		}, []string{"service"}),
	}

	h.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		h.requestsTotal,
		h.requestDuration,
		h.activeRequests,
		h.cacheHits,
		h.cacheMisses,
		h.serviceCalls,
		h.serviceErrors,
	)

	h.handler = promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logger),
	})

	return h
}

// RecordCacheHit records a cache hit metric
func (h *MetricsHandler) RecordCacheHit(ctx context.Context, cacheType string) {
	h.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss metric
func (h *MetricsHandler) RecordCacheMiss(ctx context.Context, cacheType string) {
	h.cacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordWeatherServiceCall records a weather service API call
func (h *MetricsHandler) RecordWeatherServiceCall(ctx context.Context, service string, success bool) {
	h.serviceCalls.WithLabelValues(service).Inc()
	if !success {
		h.serviceErrors.WithLabelValues(service).Inc()
	}
}

func (h *MetricsHandler) RequestStarted() {
	h.activeRequests.Inc()
}

func (h *MetricsHandler) RequestFinished(method, route string, status int, duration time.Duration) {
	h.activeRequests.Dec()
	if route == "" {
		route = "unmatched"
	}
	h.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ServeMetrics exposes the registry in Prometheus text format.
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	h.handler.ServeHTTP(c.Writer, c.Request)
}
