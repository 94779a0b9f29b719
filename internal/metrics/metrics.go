package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. Build one per process with New.
type Metrics struct {
	ResponsesGraded *prometheus.CounterVec
	Unsupported     *prometheus.CounterVec
	AttemptDuration prometheus.Histogram

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg uses a fresh registry,
// which keeps tests independent of the global one.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		ResponsesGraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grading_responses_total",
				Help: "Responses graded, by question type and answer status",
			},
			[]string{"type", "status"},
		),
		Unsupported: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grading_unsupported_total",
				Help: "Grading calls rejected for an unknown question type",
			},
			[]string{"type"},
		),
		AttemptDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "grading_attempt_duration_seconds",
				Help:    "Time to grade a whole attempt",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.ResponsesGraded, m.Unsupported, m.AttemptDuration, m.RequestCounter, m.RequestDuration)
	return m
}

// ObserveGraded counts one graded response.
func (m *Metrics) ObserveGraded(qtype, status string) {
	if m == nil {
		return
	}
	m.ResponsesGraded.WithLabelValues(qtype, status).Inc()
}

// ObserveUnsupported counts one response whose type had no strategy.
func (m *Metrics) ObserveUnsupported(qtype string) {
	if m == nil {
		return
	}
	m.Unsupported.WithLabelValues(qtype).Inc()
}

// ObserveAttempt records how long an attempt took to grade.
func (m *Metrics) ObserveAttempt(d time.Duration) {
	if m == nil {
		return
	}
	m.AttemptDuration.Observe(d.Seconds())
}

// UnmatchedRoute labels requests no chi route matched, so raw paths never
// become label values.
const UnmatchedRoute = "unmatched"

// Middleware records request counts and latency by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := UnmatchedRoute
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
