package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/kinder/internal/logging"
	"github.com/aretw0/kinder/pkg/domain"
	"github.com/aretw0/kinder/pkg/messages"
	"github.com/aretw0/kinder/pkg/ports"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Defaults mirror the limits of the directory API.
const (
	DefaultBatchSize        = 5
	DefaultPageSize         = 15
	DefaultMediaCount       = 3
	DefaultDeliveryDelay    = time.Second
	DefaultMediaConcurrency = 4
)

// Config holds the pipeline limits.
type Config struct {
	// BatchSize is the maximum number of candidates delivered per run
	// and the amount the offset advances by.
	BatchSize int
	// PageSize is the number of raw results requested from the directory.
	PageSize int
	// MediaCount is the number of top media attached to each candidate.
	MediaCount int
	// DeliveryDelay separates consecutive candidate messages (flood control).
	DeliveryDelay time.Duration
	// MediaConcurrency bounds parallel media lookups within one run.
	MediaConcurrency int
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		BatchSize:        DefaultBatchSize,
		PageSize:         DefaultPageSize,
		MediaCount:       DefaultMediaCount,
		DeliveryDelay:    DefaultDeliveryDelay,
		MediaConcurrency: DefaultMediaConcurrency,
	}
}

// Result describes a finished run.
type Result struct {
	Outcome   domain.PipelineOutcome
	Fetched   int
	Delivered []domain.Candidate
}

// Pipeline executes candidate searches for sessions.
type Pipeline struct {
	directory ports.Directory
	history   ports.HistoryStore
	sender    ports.Sender
	messages  messages.Catalog
	config    Config
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithConfig overrides the default limits. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) {
		def := DefaultConfig()
		if cfg.BatchSize <= 0 {
			cfg.BatchSize = def.BatchSize
		}
		if cfg.PageSize <= 0 {
			cfg.PageSize = def.PageSize
		}
		if cfg.MediaCount < 0 {
			cfg.MediaCount = def.MediaCount
		}
		if cfg.DeliveryDelay < 0 {
			cfg.DeliveryDelay = 0
		}
		if cfg.MediaConcurrency <= 0 {
			cfg.MediaConcurrency = def.MediaConcurrency
		}
		p.config = cfg
	}
}

// WithMessages sets the user-facing texts.
func WithMessages(c messages.Catalog) Option {
	return func(p *Pipeline) {
		p.messages = c
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline.
func New(directory ports.Directory, history ports.HistoryStore, sender ports.Sender, opts ...Option) *Pipeline {
	p := &Pipeline{
		directory: directory,
		history:   history,
		sender:    sender,
		messages:  messages.Default(),
		config:    DefaultConfig(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the effective limits.
func (p *Pipeline) Config() Config {
	return p.config
}

// Run executes one search for the session and mutates it in place.
// Directory and storage failures are reported to the user and leave the
// offset, the step and the history untouched; they are not returned as errors.
func (p *Pipeline) Run(ctx context.Context, sess *domain.Session) (Result, error) {
	if !sess.Criteria.Complete() {
		return Result{}, domain.ErrIncompleteCriteria
	}

	from := sess.Step
	res := Result{}
	defer func() {
		p.hooks.Pipeline(ctx, &domain.PipelineEvent{
			Timestamp: time.Now(),
			UserID:    sess.UserID,
			Outcome:   res.Outcome,
			Offset:    sess.Offset,
			Fetched:   res.Fetched,
			Delivered: len(res.Delivered),
		})
	}()

	page, err := p.search(ctx, sess)
	if err != nil {
		p.logger.Warn("candidate search failed", "user_id", sess.UserID, "offset", sess.Offset, "err", err)
		p.notify(ctx, sess.UserID, p.messages.DirectoryDown)
		res.Outcome = domain.OutcomeDirectoryError
		return res, nil
	}
	res.Fetched = len(page)

	if len(page) == 0 {
		if from == domain.StepFinal {
			p.notify(ctx, sess.UserID, p.messages.NoMoreResults)
			sess.Step = domain.StepAgain
		} else {
			p.notify(ctx, sess.UserID, p.messages.NotFound)
		}
		res.Outcome = domain.OutcomeNoResults
		return res, nil
	}

	batch := Select(page, sess, p.config.BatchSize)
	if len(batch) == 0 {
		// Move past a page made only of known or private profiles.
		sess.Offset += p.config.BatchSize
		sess.Step = domain.StepFinal
		p.notify(ctx, sess.UserID, p.messages.PageExhausted)
		res.Outcome = domain.OutcomeExhaustedPage
		return res, nil
	}

	ids := make([]int64, len(batch))
	for i, c := range batch {
		ids[i] = c.ID
	}

	// Persist before delivery: a delivered id is always in the history.
	if err := p.history.AppendHistory(ctx, sess.UserID, ids); err != nil {
		p.logger.Error("failed to persist shown candidates", "user_id", sess.UserID, "err", err)
		p.notify(ctx, sess.UserID, p.messages.Internal)
		res.Outcome = domain.OutcomeStorageError
		return res, nil
	}

	p.attachMedia(ctx, batch)

	// The first batch of a search carries the next/restart instructions,
	// even when earlier pages were exhausted.
	intro := p.messages.NextBatch
	if from == domain.StepStatus || len(sess.PendingBatch) == 0 {
		intro = p.messages.FirstBatch
	}
	p.notify(ctx, sess.UserID, intro)
	p.deliver(ctx, sess.UserID, batch)

	sess.MarkShown(ids...)
	sess.Offset += p.config.BatchSize
	sess.PendingBatch = batch
	sess.Step = domain.StepFinal

	res.Outcome = domain.OutcomeDelivered
	res.Delivered = batch
	return res, nil
}

func (p *Pipeline) search(ctx context.Context, sess *domain.Session) ([]domain.Candidate, error) {
	start := time.Now()
	page, err := p.directory.Search(ctx, sess.Criteria, sess.Offset, p.config.PageSize)
	p.hooks.Directory(ctx, &domain.DirectoryEvent{
		Operation: "search",
		Duration:  time.Since(start),
		IsError:   err != nil,
	})
	return page, err
}

// attachMedia fetches and ranks media for every candidate concurrently.
// A failed lookup leaves the candidate without media.
func (p *Pipeline) attachMedia(ctx context.Context, batch []domain.Candidate) {
	if p.config.MediaCount == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(p.config.MediaConcurrency)

	for i := range batch {
		g.Go(func() error {
			start := time.Now()
			media, err := p.topMedia(ctx, batch[i].ID)
			p.hooks.Directory(ctx, &domain.DirectoryEvent{
				Operation: "top_media",
				Duration:  time.Since(start),
				IsError:   err != nil,
			})
			if err != nil {
				p.logger.Warn("media lookup failed", "candidate_id", batch[i].ID, "err", err)
				return nil
			}
			batch[i].Media = RankMedia(media, p.config.MediaCount)
			return nil
		})
	}
	_ = g.Wait()
}

// topMedia runs outside the caller's goroutine, so a panic in the
// directory is turned into an error here instead of crashing the process.
func (p *Pipeline) topMedia(ctx context.Context, candidateID int64) (media []domain.MediaRef, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: top media of %d panicked: %v", domain.ErrDirectory, candidateID, r)
		}
	}()
	return p.directory.TopMedia(ctx, candidateID, p.config.MediaCount)
}

// deliver sends one message per candidate, in order, paced by DeliveryDelay.
func (p *Pipeline) deliver(ctx context.Context, userID int64, batch []domain.Candidate) {
	limit := rate.Inf
	if p.config.DeliveryDelay > 0 {
		limit = rate.Every(p.config.DeliveryDelay)
	}
	pacer := rate.NewLimiter(limit, 1)

	for _, c := range batch {
		if err := pacer.Wait(ctx); err != nil {
			p.logger.Warn("delivery interrupted", "user_id", userID, "err", err)
			return
		}
		if err := p.sender.Send(ctx, userID, c.ProfileURL(), c.Media); err != nil {
			p.logger.Error("failed to deliver candidate", "user_id", userID, "candidate_id", c.ID, "err", err)
		}
	}
}

func (p *Pipeline) notify(ctx context.Context, userID int64, text string) {
	if err := p.sender.Send(ctx, userID, text, nil); err != nil {
		p.logger.Error("failed to send message", "user_id", userID, "err", err)
	}
}
