package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Custom histogram buckets for page and proxy response times ranging from milliseconds to 30+ seconds.
	// The upper buckets cover the backend transport timeout.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Backend Client Metrics
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_client_operation_duration_seconds",
			Help:    "External backend operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	BackendRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_client_operation_total",
			Help: "Total number of external backend operations",
		},
		[]string{"operation", "status"},
	)

	BackendBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "backend_client_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	// Session Store Metrics
	HandoffOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorexpress_handoff_operations_total",
			Help: "Total number of hand-off record operations",
		},
		[]string{"key", "op"},
	)

	SessionStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorexpress_session_store_errors_total",
			Help: "Total number of session store failures",
		},
		[]string{"store", "op"},
	)

	// Business Metrics
	FallbackActivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorexpress_fallback_activations_total",
			Help: "Total number of mock responses served while the backend was unreachable",
		},
		[]string{"endpoint"},
	)

	TriageOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorexpress_triage_outcomes_total",
			Help: "Total number of help requests by triage tag",
		},
		[]string{"tipo"},
	)

	MentorSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorexpress_mentor_selections_total",
			Help: "Total mentor selection attempts",
		},
		[]string{"status"},
	)

	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorexpress_registrations_total",
			Help: "Total student and mentor registration attempts",
		},
		[]string{"kind", "status"},
	)

	StaleNavigations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mentorexpress_stale_navigations_total",
			Help: "Total number of guarded pages opened without their hand-off record",
		},
		[]string{"page"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

// StatusLabel buckets an outcome into the status label used by client metrics
func StatusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
