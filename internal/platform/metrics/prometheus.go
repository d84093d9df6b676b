package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	urgencyClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_classifications_total",
			Help: "Symptom reports classified, by urgency level",
		},
		[]string{"level"},
	)

	completionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_requests_total",
			Help: "Prompts submitted to the completion service, by feature and outcome",
		},
		[]string{"feature", "outcome"},
	)

	completionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "completion_request_duration_seconds",
			Help:    "Completion service latency in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"feature"},
	)

	reportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medical_reports_generated_total",
			Help: "Medical reports drafted, by report type",
		},
		[]string{"type"},
	)

	careTeamAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "care_team_alerts_total",
			Help: "Messages posted to the care team channel, by kind and status",
		},
		[]string{"kind", "status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency. Paths are reported by their
// chi route pattern so IDs in URLs do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// --- Business metric helpers ---

// RecordClassification records an urgency classification.
func RecordClassification(level string) {
	urgencyClassifications.WithLabelValues(level).Inc()
}

// RecordCompletion records a completion call. outcome is "ok" or "fallback".
func RecordCompletion(feature, outcome string, duration time.Duration) {
	completionRequests.WithLabelValues(feature, outcome).Inc()
	completionDuration.WithLabelValues(feature).Observe(duration.Seconds())
}

// RecordReportGenerated records a drafted medical report.
func RecordReportGenerated(reportType string) {
	reportsGenerated.WithLabelValues(reportType).Inc()
}

// RecordCareTeamAlert records a care team channel delivery attempt.
func RecordCareTeamAlert(kind string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	careTeamAlerts.WithLabelValues(kind, status).Inc()
}
