package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/matheus3301/pairchat/internal/conversation"
	"go.uber.org/zap"
)

// Adapter maps a conversation id to its shared log.
type Adapter struct {
	backend Backend
	logger  *zap.Logger
}

// NewAdapter creates an adapter over backend.
func NewAdapter(backend Backend, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{backend: backend, logger: logger}
}

// EnsureLog creates the log for id if none exists yet.
func (a *Adapter) EnsureLog(ctx context.Context, id conversation.ID) error {
	if err := a.backend.EnsureLog(ctx, id); err != nil {
		return fmt.Errorf("ensure log %q: %w", id, err)
	}
	return nil
}

// Append adds m to the log of id. A backend that still requires the log to
// exist gets it created and the append retried once.
func (a *Adapter) Append(ctx context.Context, id conversation.ID, m conversation.Message) (conversation.Message, error) {
	stored, err := a.backend.Append(ctx, id, m)
	if errors.Is(err, conversation.ErrLogNotFound) {
		a.logger.Debug("log missing on append, creating", zap.Stringer("conversation", id))
		if err := a.EnsureLog(ctx, id); err != nil {
			return conversation.Message{}, err
		}
		stored, err = a.backend.Append(ctx, id, m)
	}
	if err != nil {
		return conversation.Message{}, fmt.Errorf("append to %q: %w", id, err)
	}
	return stored, nil
}

// Subscribe calls onUpdate with the current messages of id, then again after
// every append by either participant. Calls are serial and in backend
// acceptance order. An absent log reads as an empty slice. If the backend
// cannot be reached the failure is logged, onUpdate receives one empty slice
// and the watch is retried until the subscription ends.
func (a *Adapter) Subscribe(ctx context.Context, id conversation.ID, onUpdate func([]conversation.Message)) *Subscription {
	sub, ctx := newSubscription(ctx)

	go func() {
		defer close(sub.done)
		delivered := false
		backoff := minBackoff
		for {
			err := a.backend.WatchLog(ctx, id, func(msgs []conversation.Message) error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if msgs == nil {
					msgs = []conversation.Message{}
				}
				delivered = true
				backoff = minBackoff
				onUpdate(msgs)
				return nil
			})
			if ctx.Err() != nil {
				return
			}
			a.logger.Warn("log subscription interrupted", zap.Stringer("conversation", id), zap.Error(err))
			if !delivered {
				delivered = true
				onUpdate([]conversation.Message{})
			}
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
		}
	}()

	return sub
}
