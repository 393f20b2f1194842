// Package metrics exports render and HTTP metrics in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alnah/go-md2img"
)

// Namespace prefixes every metric name.
const Namespace = "md2img"

// OutcomeSuccess labels renders that produced an image.
const OutcomeSuccess = "success"

// stageBuckets cover waits from a few milliseconds up to long CDN loads.
var stageBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Registry holds the service metrics on a dedicated Prometheus registry.
// It implements md2img.Observer.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Registry struct {
	registry *prometheus.Registry

	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	stageDuration  *prometheus.HistogramVec
	sessionsActive prometheus.Gauge
	sessionsTotal  prometheus.Counter
	admissionWait  prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ md2img.Observer = (*Registry)(nil)

// New creates a Registry with Go runtime and process collectors attached.
func New() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.rendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "renders_total",
		Help:      "Renders by outcome (success or failure kind).",
	}, []string{"outcome"})

	r.renderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "render_duration_seconds",
		Help:      "Wall time of a render, admission included.",
		Buckets:   stageBuckets,
	}, []string{"outcome"})

	r.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "stage_duration_seconds",
		Help:      "Time spent reaching each render stage.",
		Buckets:   stageBuckets,
	}, []string{"stage"})

	r.sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "browser_sessions_active",
		Help:      "Browser sessions currently open.",
	})

	r.sessionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "browser_sessions_total",
		Help:      "Browser sessions opened since start.",
	})

	r.admissionWait = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "admission_wait_seconds",
		Help:      "Time spent waiting for a render slot.",
		Buckets:   stageBuckets,
	})

	r.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	r.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.registry.MustRegister(
		r.rendersTotal,
		r.renderDuration,
		r.stageDuration,
		r.sessionsActive,
		r.sessionsTotal,
		r.admissionWait,
		r.httpRequests,
		r.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// WatchGate exposes the gate's capacity, in-flight and queued renders.
func (r *Registry) WatchGate(g *md2img.Gate) {
	r.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "gate_capacity",
			Help:      "Maximum concurrent renders.",
		}, func() float64 { return float64(g.Size()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "gate_in_flight",
			Help:      "Renders holding a slot.",
		}, func() float64 { return float64(g.InFlight()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "gate_waiting",
			Help:      "Renders queued for a slot.",
		}, func() float64 { return float64(g.Waiting()) }),
	)
}

// AdmissionWaited implements md2img.Observer.
func (r *Registry) AdmissionWaited(d time.Duration) {
	r.admissionWait.Observe(d.Seconds())
}

// SessionOpened implements md2img.Observer.
func (r *Registry) SessionOpened() {
	r.sessionsActive.Inc()
	r.sessionsTotal.Inc()
}

// SessionClosed implements md2img.Observer.
func (r *Registry) SessionClosed() {
	r.sessionsActive.Dec()
}

// StageCompleted implements md2img.Observer.
func (r *Registry) StageCompleted(stage md2img.Stage, d time.Duration) {
	r.stageDuration.WithLabelValues(stage.String()).Observe(d.Seconds())
}

// RenderFinished implements md2img.Observer.
func (r *Registry) RenderFinished(kind md2img.FailureKind, d time.Duration) {
	outcome := string(kind)
	if outcome == "" {
		outcome = OutcomeSuccess
	}
	r.rendersTotal.WithLabelValues(outcome).Inc()
	r.renderDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveRequest records one HTTP request. route is the matched route
// pattern, never the raw path.
func (r *Registry) ObserveRequest(method, route string, status int, d time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
