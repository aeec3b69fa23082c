package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aretw0/kinder/internal/logging"
	"github.com/aretw0/kinder/pkg/domain"
	"github.com/aretw0/kinder/pkg/messages"
	"github.com/aretw0/kinder/pkg/pipeline"
	"github.com/aretw0/kinder/pkg/ports"
	"github.com/aretw0/kinder/pkg/session"
)

// handler applies a validated input to the session.
type handler func(ctx context.Context, sess *domain.Session, input string)

type rule struct {
	validate func(string) bool
	handle   handler
}

// Dispatcher routes user input to the rule of the session's current step.
type Dispatcher struct {
	sessions *session.Store
	history  ports.HistoryStore
	sender   ports.Sender
	pipeline *pipeline.Pipeline
	messages messages.Catalog
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	rules    map[domain.Step]rule
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithMessages sets the user-facing texts.
func WithMessages(c messages.Catalog) Option {
	return func(d *Dispatcher) {
		d.messages = c
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Dispatcher) {
		d.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher. It fails if a step has no rule.
func New(sessions *session.Store, history ports.HistoryStore, sender ports.Sender, p *pipeline.Pipeline, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		sessions: sessions,
		history:  history,
		sender:   sender,
		pipeline: p,
		messages: messages.Default(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.rules = map[domain.Step]rule{
		domain.StepNone:   {validate: always, handle: d.handleNone},
		domain.StepAge:    {validate: validAge, handle: d.handleAge},
		domain.StepGender: {validate: validGender, handle: d.handleGender},
		domain.StepCity:   {validate: validCity, handle: d.handleCity},
		domain.StepStatus: {validate: validStatus, handle: d.handleStatus},
		domain.StepFinal:  {validate: validFinal, handle: d.handleFinal},
		domain.StepAgain:  {validate: validAgain, handle: d.handleAgain},
	}
	for _, step := range domain.Steps() {
		if _, ok := d.rules[step]; !ok {
			return nil, fmt.Errorf("no rule for step %q", step)
		}
	}
	return d, nil
}

// HandleEvent processes one inbound event. Events that are not private
// messages to the bot are ignored; non-text messages get a fixed reply.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev domain.Event) error {
	if !ev.Direct() {
		return nil
	}
	if !ev.HasText {
		d.send(ctx, ev.UserID, d.messages.TextOnly)
		return nil
	}
	return d.Handle(ctx, ev.UserID, ev.Text)
}

// Handle dispatches text from userID. The session is looked up once,
// mutated as an owned copy and written back at the end.
func (d *Dispatcher) Handle(ctx context.Context, userID int64, text string) error {
	sess, ok := d.sessions.Get(userID)
	if !ok {
		var err error
		sess, err = d.open(ctx, userID)
		if err != nil {
			return err
		}
	}
	defer d.sessions.Save(sess)

	from := sess.Step
	input := normalize(text)

	if messages.IsCommand(input, messages.CommandRestart) {
		sess.Restart()
		d.send(ctx, userID, d.messages.Restarted())
		d.transition(ctx, userID, from, sess.Step, true)
		return nil
	}

	r, ok := d.rules[sess.Step]
	if !ok {
		// Unreachable with a valid session; recover by restarting.
		d.logger.Error("session in unknown step", "user_id", userID, "step", int(sess.Step))
		sess.Restart()
		d.send(ctx, userID, d.messages.Internal)
		return nil
	}

	if !r.validate(input) {
		d.send(ctx, userID, d.messages.Invalid(sess.Step))
		d.transition(ctx, userID, from, sess.Step, false)
		return nil
	}

	r.handle(ctx, sess, input)
	d.transition(ctx, userID, from, sess.Step, true)
	return nil
}

// open creates the session of an unseen user from the persisted history.
// The history is read before taking any session lock.
func (d *Dispatcher) open(ctx context.Context, userID int64) (*domain.Session, error) {
	history, err := d.history.ReadHistory(ctx, userID)
	if err != nil {
		d.logger.Error("failed to read history", "user_id", userID, "err", err)
		d.send(ctx, userID, d.messages.Internal)
		return nil, fmt.Errorf("read history of user %d: %w", userID, err)
	}

	sess := d.sessions.Create(userID, history)
	if sess.Step == domain.StepNone {
		greeting := d.messages.GreetFirst
		if len(history) > 0 {
			greeting = d.messages.GreetAgain
		}
		d.send(ctx, userID, greeting)
	}
	return sess, nil
}

func (d *Dispatcher) handleNone(ctx context.Context, sess *domain.Session, _ string) {
	d.send(ctx, sess.UserID, d.messages.AskAge)
	sess.Step = domain.StepAge
}

func (d *Dispatcher) handleAge(ctx context.Context, sess *domain.Session, input string) {
	sess.Criteria.Age = atoi(input)
	d.send(ctx, sess.UserID, d.messages.AskGender)
	sess.Step = domain.StepGender
}

func (d *Dispatcher) handleGender(ctx context.Context, sess *domain.Session, input string) {
	sess.Criteria.Gender = atoi(input)
	d.send(ctx, sess.UserID, d.messages.AskCity)
	sess.Step = domain.StepCity
}

func (d *Dispatcher) handleCity(ctx context.Context, sess *domain.Session, input string) {
	sess.Criteria.City = atoi(input)
	d.send(ctx, sess.UserID, d.messages.AskStatus)
	sess.Step = domain.StepStatus
}

func (d *Dispatcher) handleStatus(ctx context.Context, sess *domain.Session, input string) {
	sess.Criteria.Status = atoi(input)
	d.search(ctx, sess)
}

func (d *Dispatcher) handleFinal(ctx context.Context, sess *domain.Session, input string) {
	// restart is consumed by the global override; only next reaches here.
	d.search(ctx, sess)
}

func (d *Dispatcher) handleAgain(ctx context.Context, sess *domain.Session, _ string) {
	sess.Restart()
	d.send(ctx, sess.UserID, d.messages.Restarted())
}

func (d *Dispatcher) search(ctx context.Context, sess *domain.Session) {
	start := time.Now()
	res, err := d.pipeline.Run(ctx, sess)
	if err != nil {
		d.logger.Error("pipeline rejected session", "user_id", sess.UserID, "step", sess.Step.String(), "err", err)
		sess.Restart()
		d.send(ctx, sess.UserID, d.messages.Internal)
		return
	}
	d.logger.Info("search finished",
		"user_id", sess.UserID,
		"outcome", string(res.Outcome),
		"delivered", len(res.Delivered),
		"offset", sess.Offset,
		"duration", time.Since(start),
	)
}

func (d *Dispatcher) send(ctx context.Context, userID int64, text string) {
	if err := d.sender.Send(ctx, userID, text, nil); err != nil {
		d.logger.Error("failed to send message", "user_id", userID, "err", err)
	}
}

func (d *Dispatcher) transition(ctx context.Context, userID int64, from, to domain.Step, valid bool) {
	d.logger.Debug("step", "user_id", userID, "from", from.String(), "to", to.String(), "valid", valid)
	d.hooks.Transition(ctx, &domain.TransitionEvent{
		Timestamp: time.Now(),
		UserID:    userID,
		From:      from,
		To:        to,
		Valid:     valid,
	})
}

func atoi(s string) *int {
	n, _ := strconv.Atoi(s)
	return domain.IntPtr(n)
}
