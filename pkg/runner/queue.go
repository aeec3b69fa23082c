package runner

import (
	"sync"

	"github.com/aretw0/kinder/pkg/domain"
)

// userQueues holds the pending events of every user with a turn in flight.
// A user present in the map has exactly one draining goroutine.
type userQueues struct {
	mu      sync.Mutex
	pending map[int64][]domain.Event
	limit   int
	wg      sync.WaitGroup
}

func newUserQueues(limit int) *userQueues {
	return &userQueues{pending: make(map[int64][]domain.Event), limit: limit}
}

// push appends ev to its user's queue. It reports whether ev was accepted
// and whether the caller must start a drainer for the user.
func (q *userQueues) push(ev domain.Event) (accepted, start bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	events, active := q.pending[ev.UserID]
	if q.limit > 0 && len(events) >= q.limit {
		return false, false
	}
	q.pending[ev.UserID] = append(events, ev)
	if !active {
		q.wg.Add(1)
	}
	return true, !active
}

// pop takes the next event of userID. When the queue is empty the user is
// forgotten and ok is false; the drainer must exit.
func (q *userQueues) pop(userID int64) (ev domain.Event, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	events := q.pending[userID]
	if len(events) == 0 {
		delete(q.pending, userID)
		q.wg.Done()
		return domain.Event{}, false
	}
	ev = events[0]
	events[0] = domain.Event{}
	q.pending[userID] = events[1:]
	return ev, true
}

// active returns the number of users with a turn in flight.
func (q *userQueues) active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *userQueues) wait() {
	q.wg.Wait()
}
