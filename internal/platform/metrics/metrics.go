// Package metrics exposes Prometheus instrumentation for diary generation
// and the HTTP API.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/diary-api/internal/generation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "diary"

// Outcome label values besides the failure kinds.
const (
	OutcomeSuccess = "success"
	OutcomeTimeout = "timeout"
)

const unmatchedRoute = "unmatched"

// Recorder records generation and HTTP metrics. It implements
// generation.Observer.
type Recorder struct {
	registry            *prometheus.Registry
	generations         *prometheus.CounterVec
	generationDurations *prometheus.HistogramVec
	requests            *prometheus.CounterVec
	requestDurations    *prometheus.HistogramVec
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewRecorder registers the diary collectors on registry.
func NewRecorder(registry *prometheus.Registry) (*Recorder, error) {
	if registry == nil {
		return nil, errors.New("prometheus registry is nil")
	}

	r := &Recorder{
		registry: registry,
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generation calls that reached a backend, by backend and outcome.",
		}, []string{"backend", "outcome"}),
		generationDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Backend generation latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"backend"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{r.generations, r.generationDurations, r.requests, r.requestDurations} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveGeneration records one backend call.
func (r *Recorder) ObserveGeneration(backend string, kind generation.Kind, timeout bool, elapsed time.Duration) {
	r.generations.WithLabelValues(backend, Outcome(kind, timeout)).Inc()
	r.generationDurations.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// Outcome is the outcome label for a generation result.
func Outcome(kind generation.Kind, timeout bool) string {
	switch {
	case timeout:
		return OutcomeTimeout
	case kind == generation.KindNone:
		return OutcomeSuccess
	default:
		return string(kind)
	}
}

// Middleware counts requests by method, chi route pattern and status code.
// Route patterns keep path parameters out of the label set.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, req)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(req)
		r.requests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.requestDurations.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func routePattern(req *http.Request) string {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" && pattern != "/*" {
		return pattern
	}
	return unmatchedRoute
}
