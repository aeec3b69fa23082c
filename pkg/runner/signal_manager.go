package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SignalManager ties a context to SIGINT and SIGTERM.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager creates a manager derived from parent and starts listening.
func NewSignalManager(parent context.Context) *SignalManager {
	sm := &SignalManager{}
	sm.ctx, sm.cancel = signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return sm
}

// Context is cancelled on the first signal or on Stop.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Stop releases the signal listener and cancels the context.
func (sm *SignalManager) Stop() {
	sm.cancel()
}

// CheckRace waits briefly to see if a context cancellation follows an error.
// On some terminals Ctrl+C closes stdin slightly before the signal is delivered,
// so an EOF right before shutdown should not be reported as a failure.
func (sm *SignalManager) CheckRace() bool {
	if sm.ctx.Err() != nil {
		return true
	}
	select {
	case <-sm.ctx.Done():
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}
