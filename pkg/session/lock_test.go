package session

import (
	"testing"

	"github.com/aretw0/kinder/pkg/domain"
)

func TestStore_LockLifecycle(t *testing.T) {
	store := NewStore()
	count := 10000

	// 1. Create, update and delete many sessions
	for i := 0; i < count; i++ {
		id := int64(i)
		store.Create(id, nil)
		_ = store.Update(id, func(s *domain.Session) { s.Step = domain.StepAge })
		store.Delete(id)
	}

	// 2. Every per-user lock must have been released
	store.mu.Lock()
	lockCount := len(store.locks)
	store.mu.Unlock()

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
