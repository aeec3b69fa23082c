package kinder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/kinder/internal/logging"
	"github.com/aretw0/kinder/pkg/dialog"
	"github.com/aretw0/kinder/pkg/domain"
	"github.com/aretw0/kinder/pkg/messages"
	"github.com/aretw0/kinder/pkg/observability"
	"github.com/aretw0/kinder/pkg/pipeline"
	"github.com/aretw0/kinder/pkg/ports"
	"github.com/aretw0/kinder/pkg/runner"
	"github.com/aretw0/kinder/pkg/session"
)

// Agent is the high-level entry point: it owns the session cache and
// routes inbound events through the dialog.
type Agent struct {
	history    ports.HistoryStore
	sender     ports.Sender
	sessions   *session.Store
	pipeline   *pipeline.Pipeline
	dispatcher *dialog.Dispatcher

	messages   messages.Catalog
	searchCfg  pipeline.Config
	hooks      domain.LifecycleHooks
	metrics    *observability.Metrics
	logger     *slog.Logger
	runnerOpts []runner.Option
}

// Option defines a functional option for configuring the Agent.
type Option func(*Agent)

// WithLogger sets a custom structured logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithMessages overrides the user-facing texts. Empty fields keep the defaults.
func WithMessages(c messages.Catalog) Option {
	return func(a *Agent) {
		a.messages = c.Merge(messages.Default())
	}
}

// WithSearchConfig sets the pipeline limits.
func WithSearchConfig(cfg pipeline.Config) Option {
	return func(a *Agent) {
		a.searchCfg = cfg
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Agent) {
		a.hooks = hooks
	}
}

// WithMetrics records Prometheus metrics for dialog, pipeline and runner events.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Agent) {
		a.metrics = m
	}
}

// WithRunnerOptions configures the dispatch loop started by Run.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(a *Agent) {
		a.runnerOpts = append(a.runnerOpts, opts...)
	}
}

// New assembles an Agent.
func New(history ports.HistoryStore, directory ports.Directory, sender ports.Sender, opts ...Option) (*Agent, error) {
	a := &Agent{
		history:   history,
		sender:    sender,
		messages:  messages.Default(),
		searchCfg: pipeline.DefaultConfig(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	hooks := a.hooks
	if a.metrics != nil {
		hooks = domain.MergeHooks(a.metrics.Hooks(), a.hooks)
	}

	a.sessions = session.NewStore(session.WithLogger(a.logger))
	a.pipeline = pipeline.New(directory, history, sender,
		pipeline.WithConfig(a.searchCfg),
		pipeline.WithMessages(a.messages),
		pipeline.WithLifecycleHooks(hooks),
		pipeline.WithLogger(a.logger),
	)

	d, err := dialog.New(a.sessions, history, sender, a.pipeline,
		dialog.WithMessages(a.messages),
		dialog.WithLifecycleHooks(hooks),
		dialog.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("build dialog: %w", err)
	}
	a.dispatcher = d
	return a, nil
}

// CheckProvisioned returns domain.ErrNotProvisioned if the history storage
// has not been created yet.
func (a *Agent) CheckProvisioned(ctx context.Context) error {
	ok, err := a.history.Provisioned(ctx)
	if err != nil {
		return fmt.Errorf("check history storage: %w", err)
	}
	if !ok {
		return domain.ErrNotProvisioned
	}
	return nil
}

// Handle processes one text message from userID synchronously.
func (a *Agent) Handle(ctx context.Context, userID int64, text string) error {
	return a.dispatcher.Handle(ctx, userID, text)
}

// HandleEvent processes one inbound event synchronously.
func (a *Agent) HandleEvent(ctx context.Context, ev domain.Event) error {
	return a.dispatcher.HandleEvent(ctx, ev)
}

// Run consumes source until it stops or ctx is cancelled.
func (a *Agent) Run(ctx context.Context, source ports.EventSource) error {
	opts := []runner.Option{
		runner.WithLogger(a.logger),
		runner.WithPanicNotifier(a.sender, a.messages.Internal),
	}
	if a.metrics != nil {
		opts = append(opts, runner.WithEventRecorder(a.metrics.Event))
	}
	opts = append(opts, a.runnerOpts...)
	return runner.New(source, a.dispatcher, opts...).Run(ctx)
}

// Sessions exposes the session cache (admin endpoints, tests).
func (a *Agent) Sessions() *session.Store {
	return a.sessions
}

// SearchConfig returns the effective pipeline limits.
func (a *Agent) SearchConfig() pipeline.Config {
	return a.pipeline.Config()
}
