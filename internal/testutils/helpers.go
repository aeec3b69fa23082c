package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/kinder/pkg/domain"
)

// SentMessage is a message captured by RecordingSender.
type SentMessage struct {
	UserID int64
	Text   string
	Media  []domain.MediaRef
}

// RecordingSender implements ports.Sender by capturing messages in memory.
type RecordingSender struct {
	mu   sync.Mutex
	sent []SentMessage
	err  error
}

// Send records the message.
func (s *RecordingSender) Send(ctx context.Context, userID int64, text string, media []domain.MediaRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, SentMessage{UserID: userID, Text: text, Media: media})
	return s.err
}

// Fail makes every following Send return err after recording the message.
func (s *RecordingSender) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Messages returns every captured message.
func (s *RecordingSender) Messages() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.sent...)
}

// Texts returns the texts sent to userID, in order.
func (s *RecordingSender) Texts(userID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, m := range s.sent {
		if m.UserID == userID {
			out = append(out, m.Text)
		}
	}
	return out
}

// Last returns the last text sent to userID, or "" if none.
func (s *RecordingSender) Last(userID int64) string {
	texts := s.Texts(userID)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// Reset drops captured messages.
func (s *RecordingSender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}

// ErrUnavailable is a canned transient failure.
var ErrUnavailable = errors.New("service unavailable")

// FailingHistory wraps a HistoryStore-like value and fails appends on demand.
type FailingHistory struct {
	ReadErr   error
	AppendErr error
	Appends   [][]int64
	mu        sync.Mutex
}

// ReadHistory returns ReadErr or an empty history.
func (f *FailingHistory) ReadHistory(ctx context.Context, userID int64) ([]int64, error) {
	return nil, f.ReadErr
}

// AppendHistory records the call and returns AppendErr.
func (f *FailingHistory) AppendHistory(ctx context.Context, userID int64, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Appends = append(f.Appends, ids)
	return f.AppendErr
}

// Provisioned always reports true.
func (f *FailingHistory) Provisioned(ctx context.Context) (bool, error) { return true, nil }

// Provision is a no-op.
func (f *FailingHistory) Provision(ctx context.Context) error { return nil }
