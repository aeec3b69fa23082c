package domain

import (
	"context"
	"time"
)

// PipelineOutcome classifies how a candidate pipeline run ended.
type PipelineOutcome string

const (
	OutcomeDelivered      PipelineOutcome = "delivered"
	OutcomeExhaustedPage  PipelineOutcome = "exhausted_page" // Every candidate of the page was filtered out
	OutcomeNoResults      PipelineOutcome = "no_results"
	OutcomeDirectoryError PipelineOutcome = "directory_error"
	OutcomeStorageError   PipelineOutcome = "storage_error"
)

// TransitionEvent is emitted after a message has been dispatched.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	From      Step      `json:"from"`
	To        Step      `json:"to"`
	Valid     bool      `json:"valid"`
}

// PipelineEvent is emitted after every candidate pipeline run.
type PipelineEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	UserID    int64           `json:"user_id"`
	Outcome   PipelineOutcome `json:"outcome"`
	Offset    int             `json:"offset"`
	Fetched   int             `json:"fetched"`
	Delivered int             `json:"delivered"`
}

// DirectoryEvent is emitted after every directory call.
type DirectoryEvent struct {
	Operation string        `json:"operation"`
	Duration  time.Duration `json:"duration"`
	IsError   bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnPipeline   func(context.Context, *PipelineEvent)
	OnDirectory  func(context.Context, *DirectoryEvent)
}

// Transition invokes OnTransition if set.
func (h LifecycleHooks) Transition(ctx context.Context, e *TransitionEvent) {
	if h.OnTransition != nil {
		h.OnTransition(ctx, e)
	}
}

// Pipeline invokes OnPipeline if set.
func (h LifecycleHooks) Pipeline(ctx context.Context, e *PipelineEvent) {
	if h.OnPipeline != nil {
		h.OnPipeline(ctx, e)
	}
}

// Directory invokes OnDirectory if set.
func (h LifecycleHooks) Directory(ctx context.Context, e *DirectoryEvent) {
	if h.OnDirectory != nil {
		h.OnDirectory(ctx, e)
	}
}

// MergeHooks returns hooks that call every non-nil callback of hooks, in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			for _, h := range hooks {
				h.Transition(ctx, e)
			}
		},
		OnPipeline: func(ctx context.Context, e *PipelineEvent) {
			for _, h := range hooks {
				h.Pipeline(ctx, e)
			}
		},
		OnDirectory: func(ctx context.Context, e *DirectoryEvent) {
			for _, h := range hooks {
				h.Directory(ctx, e)
			}
		},
	}
}
