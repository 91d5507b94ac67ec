package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Web server metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_http_requests_total",
		Help: "Total HTTP requests by route, method, and status code",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "singlish_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route", "method"})

	RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "singlish_rate_limit_hits_total",
		Help: "Total rate limit rejections",
	})

	FeedbackSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_feedback_submissions_total",
		Help: "Conversion feedback submissions by source",
	}, []string{"source"})
)

// Conversion metrics.
var (
	ConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_conversions_total",
		Help: "Conversions by target script and caller",
	}, []string{"script", "caller"})

	TokensResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_tokens_resolved_total",
		Help: "Word tokens by resolution source",
	}, []string{"script", "source"})

	ConversionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "singlish_conversion_duration_seconds",
		Help:    "Time spent converting one input",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	CustomWordMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_custom_word_mutations_total",
		Help: "Custom word changes by operation and result",
	}, []string{"op", "result"})

	EngineReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "singlish_engine_reloads_total",
		Help: "Engine rebuilds by result",
	}, []string{"result"})

	DictionaryEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "singlish_dictionary_entries",
		Help: "Dictionary entries loaded in the active engine",
	}, []string{"script"})
)

// Database pool metrics (gauges updated periodically).
var (
	DBPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "singlish_db_pool_total_conns",
		Help: "Total number of connections in the pool",
	})

	DBPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "singlish_db_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})

	DBPoolAcquiredConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "singlish_db_pool_acquired_conns",
		Help: "Number of acquired connections in the pool",
	})

	DBPoolMaxConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "singlish_db_pool_max_conns",
		Help: "Max connections configured for the pool",
	})
)
