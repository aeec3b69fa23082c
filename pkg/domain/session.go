package domain

// Session is the conversation snapshot of one user.
type Session struct {
	UserID   int64    `json:"user_id"`
	Step     Step     `json:"step"`
	Criteria Criteria `json:"criteria"`

	// Offset is the pagination cursor into the directory search results.
	Offset int `json:"offset"`

	// Shown holds every candidate id already delivered to the user,
	// including the history persisted by earlier processes.
	Shown map[int64]struct{} `json:"-"`

	// PendingBatch is the last delivered batch. Informational only.
	PendingBatch []Candidate `json:"pending_batch,omitempty"`
}

// NewSession creates a session at StepNone seeded with the persisted history.
func NewSession(userID int64, history []int64) *Session {
	s := &Session{
		UserID: userID,
		Step:   StepNone,
		Shown:  make(map[int64]struct{}, len(history)),
	}
	s.MarkShown(history...)
	return s
}

// HasShown reports whether the candidate was already delivered.
func (s *Session) HasShown(id int64) bool {
	_, ok := s.Shown[id]
	return ok
}

// MarkShown merges ids into the shown set.
func (s *Session) MarkShown(ids ...int64) {
	if s.Shown == nil {
		s.Shown = make(map[int64]struct{}, len(ids))
	}
	for _, id := range ids {
		s.Shown[id] = struct{}{}
	}
}

// Restart returns the session to the age question with empty criteria and a fresh cursor.
// The shown set is kept so restarts never repeat candidates.
func (s *Session) Restart() {
	s.Step = StepAge
	s.Criteria = Criteria{}
	s.Offset = 0
	s.PendingBatch = nil
}

// Clone returns a deep copy that can be mutated without affecting s.
func (s *Session) Clone() *Session {
	c := *s
	c.Criteria = s.Criteria.Clone()
	c.Shown = make(map[int64]struct{}, len(s.Shown))
	for id := range s.Shown {
		c.Shown[id] = struct{}{}
	}
	if s.PendingBatch != nil {
		c.PendingBatch = append([]Candidate(nil), s.PendingBatch...)
	}
	return &c
}
