package chat

import (
	"context"

	"github.com/matheus3301/pairchat/internal/conversation"
	"github.com/matheus3301/pairchat/internal/outbox"
	"go.uber.org/zap"
)

// Typing publishes the local participant's composing flag and observes the
// peer's.
type Typing struct {
	backend Backend
	writer  *outbox.TypingWriter
	logger  *zap.Logger
}

// NewTyping creates a typing channel. Writes go through writer, which must
// be started by the caller.
func NewTyping(backend Backend, writer *outbox.TypingWriter, logger *zap.Logger) *Typing {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Typing{backend: backend, writer: writer, logger: logger}
}

// SetTyping queues participant's flag for id. It never blocks and never
// fails; delivery is best effort.
func (t *Typing) SetTyping(id conversation.ID, participant string, typing bool) {
	t.writer.Set(id, participant, typing)
}

// SubscribeTyping calls onChange with peer's flag in id: once immediately,
// then whenever it changes. An absent key or document reads as false. Only
// peer's key is observed, so a participant never sees its own flag.
func (t *Typing) SubscribeTyping(ctx context.Context, id conversation.ID, peer string, onChange func(bool)) *Subscription {
	sub, ctx := newSubscription(ctx)

	go func() {
		defer close(sub.done)
		var (
			last      bool
			delivered bool
		)
		emit := func(typing bool) {
			if delivered && typing == last {
				return
			}
			delivered = true
			last = typing
			onChange(typing)
		}

		backoff := minBackoff
		for {
			err := t.backend.WatchTyping(ctx, id, func(state conversation.TypingState) error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				backoff = minBackoff
				emit(state[peer])
				return nil
			})
			if ctx.Err() != nil {
				return
			}
			t.logger.Warn("typing subscription interrupted", zap.Stringer("conversation", id), zap.Error(err))
			emit(false)
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
		}
	}()

	return sub
}
