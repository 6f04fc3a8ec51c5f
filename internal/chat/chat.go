// Package chat is the client side of a conversation: it keeps a local view
// of the shared log and of the peer's typing flag in sync with a backend.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/pairchat/internal/conversation"
)

// Backend is the document store a client talks to. The daemon's engine
// satisfies it in process and the gRPC client satisfies it remotely.
type Backend interface {
	EnsureLog(ctx context.Context, id conversation.ID) error
	Append(ctx context.Context, id conversation.ID, m conversation.Message) (conversation.Message, error)
	WatchLog(ctx context.Context, id conversation.ID, fn func([]conversation.Message) error) error
	SetTyping(ctx context.Context, id conversation.ID, participant string, typing bool) error
	WatchTyping(ctx context.Context, id conversation.ID, fn func(conversation.TypingState) error) error
}

// Subscription is a live observation. It ends when Close is called or when
// the context it was opened with is cancelled.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newSubscription(ctx context.Context) (*Subscription, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Subscription{cancel: cancel, done: make(chan struct{})}, ctx
}

// Close stops the subscription and returns once no callback is running and
// none will run again. It may be called any number of times, but not from
// inside the subscription's own callback.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed when the subscription has ended.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Retry delays between attempts to re-open a broken watch.
const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
