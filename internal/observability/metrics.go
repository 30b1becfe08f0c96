package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CapturesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dv",
		Name:      "captures_processed_total",
		Help:      "Total number of monitored captures processed",
	}, []string{"system_id"})

	CaptureFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dv",
		Name:      "capture_failures_total",
		Help:      "Total number of capture pipeline failures by error kind",
	}, []string{"kind"})

	FaceComparisons = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dv",
		Name:      "face_comparisons_total",
		Help:      "Total number of roster face comparisons by outcome",
	}, []string{"outcome"})

	CaptureStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dv",
		Name:      "capture_stage_duration_seconds",
		Help:      "Duration of capture pipeline stages",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"stage"})

	OracleRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dv",
		Name:      "oracle_request_duration_seconds",
		Help:      "Duration of external oracle calls",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"oracle"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dv",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dv",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
