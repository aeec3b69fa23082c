package session

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/kinder/internal/logging"
	"github.com/aretw0/kinder/pkg/domain"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Store maps user ids to sessions.
// It uses Reference Counting to garbage collect unused per-user locks.
type Store struct {
	mu    sync.Mutex           // Guards the locks map only
	locks map[int64]*lockEntry // Active per-user locks

	dataMu   sync.RWMutex
	sessions map[int64]*domain.Session

	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty Session Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		locks:    make(map[int64]*lockEntry),
		sessions: make(map[int64]*domain.Session),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(userID) after unlocking.
func (s *Store) acquire(userID int64) *lockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.locks[userID]
	if !exists {
		entry = &lockEntry{}
		s.locks[userID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (s *Store) release(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.locks[userID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(s.locks, userID)
	}
}

// withLock executes fn while holding the lock for the user.
// fn must not perform network calls.
func (s *Store) withLock(userID int64, fn func()) {
	entry := s.acquire(userID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		s.release(userID)
	}()
	fn()
}

func (s *Store) lookup(userID int64) (*domain.Session, bool) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

func (s *Store) put(sess *domain.Session) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.sessions[sess.UserID] = sess
}

// Get returns a copy of the user's session.
func (s *Store) Get(userID int64) (*domain.Session, bool) {
	var (
		out *domain.Session
		ok  bool
	)
	s.withLock(userID, func() {
		var sess *domain.Session
		sess, ok = s.lookup(userID)
		if ok {
			out = sess.Clone()
		}
	})
	return out, ok
}

// Create initializes a session seeded with the persisted history and returns a copy.
// If a session already exists for the user, the existing one is kept and returned.
func (s *Store) Create(userID int64, history []int64) *domain.Session {
	var out *domain.Session
	s.withLock(userID, func() {
		if existing, ok := s.lookup(userID); ok {
			out = existing.Clone()
			return
		}
		sess := domain.NewSession(userID, history)
		s.put(sess)
		out = sess.Clone()
		s.logger.Debug("session created", "user_id", userID, "history", len(history))
	})
	return out
}

// Update applies mutator to the stored session in place.
// Returns domain.ErrSessionNotFound if the user has no session.
func (s *Store) Update(userID int64, mutator func(*domain.Session)) error {
	var err error
	s.withLock(userID, func() {
		sess, ok := s.lookup(userID)
		if !ok {
			err = domain.ErrSessionNotFound
			return
		}
		mutator(sess)
		sess.UserID = userID
	})
	return err
}

// Save replaces the stored session with a copy of sess.
func (s *Store) Save(sess *domain.Session) {
	c := sess.Clone()
	s.withLock(sess.UserID, func() {
		s.put(c)
	})
}

// Delete drops the user's session. The next message recreates it from history.
func (s *Store) Delete(userID int64) {
	s.withLock(userID, func() {
		s.dataMu.Lock()
		defer s.dataMu.Unlock()
		delete(s.sessions, userID)
	})
}

// List returns the ids of every cached session in ascending order.
func (s *Store) List() []int64 {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	ids := make([]int64, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of cached sessions.
func (s *Store) Len() int {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return len(s.sessions)
}
