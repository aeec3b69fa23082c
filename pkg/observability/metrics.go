package observability

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/kinder/internal/logging"
	"github.com/aretw0/kinder/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kinder"

// Metrics holds the collectors of one agent.
type Metrics struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	Transitions       *prometheus.CounterVec
	PipelineRuns      *prometheus.CounterVec
	Delivered         prometheus.Counter
	DirectoryDuration *prometheus.HistogramVec
	DirectoryErrors   *prometheus.CounterVec
	Events            *prometheus.CounterVec
	ActiveSessions    prometheus.GaugeFunc
}

// Option configures Metrics.
type Option func(*Metrics)

// WithLogger makes the hooks also log every event at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Metrics) {
		m.logger = logger
	}
}

// WithSessionCount exports the size of the session cache.
func WithSessionCount(count func() int) Option {
	return func(m *Metrics) {
		m.ActiveSessions = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of cached conversation sessions",
		}, func() float64 { return float64(count()) })
	}
}

// New creates and registers the collectors on a fresh registry.
func New(opts ...Option) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   logging.NewNop(),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialog_transitions_total",
			Help:      "Dialog inputs by source step, target step and validity",
		}, []string{"from", "to", "valid"}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Candidate pipeline runs by outcome",
		}, []string{"outcome"}),
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_delivered_total",
			Help:      "Candidates delivered to users",
		}),
		DirectoryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "directory_request_duration_seconds",
			Help:      "Latency of directory API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DirectoryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_errors_total",
			Help:      "Failed directory API calls",
		}, []string{"operation"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Inbound events by disposition",
		}, []string{"disposition"}),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Transitions,
		m.PipelineRuns,
		m.Delivered,
		m.DirectoryDuration,
		m.DirectoryErrors,
		m.Events,
	)
	if m.ActiveSessions != nil {
		m.registry.MustRegister(m.ActiveSessions)
	}
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Event counts an inbound event with the given disposition
// ("handled", "ignored", "failed", "panic").
func (m *Metrics) Event(disposition string) {
	m.Events.WithLabelValues(disposition).Inc()
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			m.logger.Debug("transition", "user_id", e.UserID, "from", e.From.String(), "to", e.To.String(), "valid", e.Valid)
			m.Transitions.WithLabelValues(e.From.String(), e.To.String(), strconv.FormatBool(e.Valid)).Inc()
		},
		OnPipeline: func(ctx context.Context, e *domain.PipelineEvent) {
			m.logger.Debug("pipeline", "user_id", e.UserID, "outcome", string(e.Outcome), "fetched", e.Fetched, "delivered", e.Delivered)
			m.PipelineRuns.WithLabelValues(string(e.Outcome)).Inc()
			m.Delivered.Add(float64(e.Delivered))
		},
		OnDirectory: func(ctx context.Context, e *domain.DirectoryEvent) {
			m.DirectoryDuration.WithLabelValues(e.Operation).Observe(e.Duration.Seconds())
			if e.IsError {
				m.DirectoryErrors.WithLabelValues(e.Operation).Inc()
			}
		},
	}
}
