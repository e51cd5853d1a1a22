package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storysync/internal/domain/sync"
)

// Metrics счетчики сервера синхронизации
type Metrics struct {
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	SyncChangesTotal           *prometheus.CounterVec
	PullChangesTotal           *prometheus.CounterVec
	PairingsTotal              *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New регистрирует метрики в собственном реестре вместе с метриками процесса и рантайма
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SyncChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_push_changes_total",
				Help: "Pushed entity changes by outcome.",
			},
			[]string{"entity_type", "operation", "outcome"},
		),
		PullChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_pull_changes_total",
				Help: "Entity changes served to devices.",
			},
			[]string{"entity_type"},
		),
		PairingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_pairings_total",
				Help: "Device pairing attempts.",
			},
			[]string{"result"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.SyncChangesTotal,
		m.PullChangesTotal,
		m.PairingsTotal,
	)
	return m
}

// Handler отдает метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, path string, status int, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDurationSeconds.WithLabelValues(method, path).Observe(seconds)
}

func (m *Metrics) ObserveChange(entityType string, op sync.Operation, outcome sync.Outcome) {
	m.SyncChangesTotal.WithLabelValues(entityType, string(op), string(outcome)).Inc()
}

func (m *Metrics) ObservePull(entityType string, n int) {
	m.PullChangesTotal.WithLabelValues(entityType).Add(float64(n))
}

func (m *Metrics) ObservePairing(result string) {
	m.PairingsTotal.WithLabelValues(result).Inc()
}
