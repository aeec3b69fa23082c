package memory

import (
	"context"
	"sort"
	"sync"
)

// HistoryStore implements ports.HistoryStore in memory.
// Safe for concurrent use. Intended for tests and the local chat mode.
type HistoryStore struct {
	mu          sync.RWMutex
	data        map[int64]map[int64]struct{}
	provisioned bool
}

// NewHistoryStore creates an empty, provisioned in-memory store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		data:        make(map[int64]map[int64]struct{}),
		provisioned: true,
	}
}

// NewUnprovisionedHistoryStore creates a store that reports not provisioned until Provision is called.
func NewUnprovisionedHistoryStore() *HistoryStore {
	s := NewHistoryStore()
	s.provisioned = false
	return s
}

// ReadHistory returns the ids shown to the user, in ascending order.
func (s *HistoryStore) ReadHistory(ctx context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.data[userID]
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// AppendHistory merges ids into the user's history.
func (s *HistoryStore) AppendHistory(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.data[userID]
	if !ok {
		set = make(map[int64]struct{}, len(ids))
		s.data[userID] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return nil
}

// Provisioned reports whether Provision has been called (or the store was created provisioned).
func (s *HistoryStore) Provisioned(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provisioned, nil
}

// Provision marks the store as ready.
func (s *HistoryStore) Provision(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provisioned = true
	return nil
}

// ListUsers returns every user with a recorded history.
func (s *HistoryStore) ListUsers(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]int64, 0, len(s.data))
	for id := range s.data {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users, nil
}
