// Package metrics exposes Prometheus counters for item activity and HTTP
// request latency.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/recyclehub/internal/events"
)

const namespace = "recyclehub"

// Manager holds the registry and the metrics registered on it.
type Manager struct {
	Registry       *prometheus.Registry
	ItemsCreated   prometheus.Counter
	ItemsRecycled  prometheus.Counter
	ItemsDeleted   prometheus.Counter
	RequestLatency *prometheus.HistogramVec
}

// New registers all metrics on a fresh registry.
func New() *Manager {
	m := &Manager{
		Registry: prometheus.NewRegistry(),
		ItemsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Total number of items listed.",
		}),
		ItemsRecycled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_recycled_total",
			Help:      "Total number of items marked recycled.",
		}),
		ItemsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_deleted_total",
			Help:      "Total number of items deleted.",
		}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}

	m.Registry.MustRegister(
		m.ItemsCreated,
		m.ItemsRecycled,
		m.ItemsDeleted,
		m.RequestLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Publisher counts item events before passing them to next.
func (m *Manager) Publisher(next events.Publisher) events.Publisher {
	if next == nil {
		next = events.Nop{}
	}
	return &countingPublisher{m: m, next: next}
}

type countingPublisher struct {
	m    *Manager
	next events.Publisher
}

func (p *countingPublisher) Publish(ctx context.Context, subject string, e events.ItemEvent) error {
	switch subject {
	case events.SubjectItemCreated:
		p.m.ItemsCreated.Inc()
	case events.SubjectItemRecycled:
		p.m.ItemsRecycled.Inc()
	case events.SubjectItemDeleted:
		p.m.ItemsDeleted.Inc()
	}
	return p.next.Publish(ctx, subject, e)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware observes request latency labelled by the matched mux pattern.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.RequestLatency.WithLabelValues(route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
