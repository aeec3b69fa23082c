package vk

import (
	"context"
	"fmt"
	"time"

	"github.com/SevereCloud/vksdk/v3/events"
	longpoll "github.com/SevereCloud/vksdk/v3/longpoll-bot"
	"github.com/aretw0/kinder/pkg/domain"
)

// DefaultWait is the long poll hold time in seconds.
const DefaultWait = 25

// LongPoll is an EventSource backed by the Bots Long Poll API.
type LongPoll struct {
	client  *Client
	groupID int64
	wait    int
	retry   time.Duration
}

// LongPollOption configures LongPoll.
type LongPollOption func(*LongPoll)

// WithWait sets the server hold time in seconds.
func WithWait(seconds int) LongPollOption {
	return func(lp *LongPoll) {
		if seconds > 0 {
			lp.wait = seconds
		}
	}
}

// WithRetryDelay sets the pause before reconnecting after a failed poll.
func WithRetryDelay(d time.Duration) LongPollOption {
	return func(lp *LongPoll) {
		lp.retry = d
	}
}

// NewLongPoll creates a LongPoll for the community groupID (group token).
func NewLongPoll(client *Client, groupID int64, opts ...LongPollOption) *LongPoll {
	lp := &LongPoll{
		client:  client,
		groupID: groupID,
		wait:    DefaultWait,
		retry:   3 * time.Second,
	}
	for _, opt := range opts {
		opt(lp)
	}
	return lp
}

// Listen polls until ctx is done. Expired keys and lost history
// (failed 2 and 3) are handled by the poller; a broken connection
// reconnects after the retry delay. Failing to obtain a poll server is
// returned, wrapped in domain.ErrDirectory.
func (l *LongPoll) Listen(ctx context.Context, out chan<- domain.Event) error {
	for {
		lp, err := l.connect(ctx, out)
		if err != nil {
			return err
		}

		l.client.logger.Info("long poll connected", "group_id", l.groupID)
		err = lp.RunWithContext(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.client.logger.Warn("long poll interrupted", "group_id", l.groupID, "err", err, "retry_in", l.retry)

		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *LongPoll) connect(ctx context.Context, out chan<- domain.Event) (*longpoll.LongPoll, error) {
	var lp *longpoll.LongPoll
	err := l.client.call("groups.getLongPollServer", func() (err error) {
		lp, err = longpoll.NewLongPoll(l.client.api, int(l.groupID))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("connect long poll: %w", err)
	}
	lp.Wait = l.wait

	lp.MessageNew(func(_ context.Context, obj events.MessageNewObject) {
		select {
		case out <- EventFromMessage(obj.Message):
		case <-ctx.Done():
		}
	})
	return lp, nil
}
