package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Chat requests by resolved decision branch (campsite_detail, weather_prompt,
	// multi_state_redirect, paid_redirect, no_matches, generated, error).
	ChatIntentTotal *prometheus.CounterVec

	// OpenWeather forecast call rate. Watch for: error vs success ratio.
	WeatherAPICallsTotal *prometheus.CounterVec

	// Forecast feed latency per call.
	WeatherAPIDuration *prometheus.HistogramVec

	// Text-generation call rate by outcome.
	GenerationCallsTotal *prometheus.CounterVec

	// Generation latency per call.
	GenerationDuration *prometheus.HistogramVec

	// Generation retry attempts. Watch for: high retries = unstable upstream.
	GenerationRetriesTotal prometheus.Counter

	// Replies served from the canned fallback after the retry budget ran out.
	GenerationFallbacksTotal prometheus.Counter

	// Campsite store query latency by operation (list_all, search).
	StoreQueryDuration *prometheus.HistogramVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ChatIntentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatIntentTotal",
			Help: "Chat requests by resolved decision branch",
		},
		[]string{"intent"},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total calls to the forecast feed by status",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "Forecast feed latency in seconds (per call)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	GenerationCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generationCallsTotal",
			Help: "Total calls to the text-generation API by status",
		},
		[]string{"status"},
	)
	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generationDurationSeconds",
			Help:    "Text-generation API latency in seconds (per call)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	GenerationRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "generationRetriesTotal",
			Help: "Total retry attempts against the text-generation API",
		},
	)
	GenerationFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "generationFallbacksTotal",
			Help: "Replies served from the canned fallback after generation failed",
		},
	)
	StoreQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storeQueryDurationSeconds",
			Help:    "Campsite store query latency in seconds by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Requests denied by the rate limiter",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		ChatIntentTotal,
		WeatherAPICallsTotal,
		WeatherAPIDuration,
		GenerationCallsTotal,
		GenerationDuration,
		GenerationRetriesTotal,
		GenerationFallbacksTotal,
		StoreQueryDuration,
		RateLimitDeniedTotal,
	)
}

// MetricsHandler returns the HTTP handler serving the /metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
