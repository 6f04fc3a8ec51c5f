package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matheus3301/pairchat/internal/bus"
	"github.com/matheus3301/pairchat/internal/conversation"
	"github.com/matheus3301/pairchat/internal/presence"
	"github.com/matheus3301/pairchat/internal/store"
	"go.uber.org/zap"
)

// MaxClockSkew is how far a client timestamp may lie from the engine clock,
// in either direction, before the engine replaces it with its own.
const MaxClockSkew = 5 * time.Second

// Engine applies document operations to the store and announces every change
// on the bus, keyed by conversation id. It also subscribes to presence
// changes and lowers the typing flags of participants who disconnect.
type Engine struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
	now    func() time.Time
	cancel context.CancelFunc
}

// Stats summarizes the stored documents.
type Stats struct {
	Logs     int64
	Messages int64
	Profiles int64
}

// NewEngine creates a new sync engine.
func NewEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		db:     db,
		bus:    b,
		logger: logger,
		now:    time.Now,
	}
}

// Start subscribes to presence events on the bus.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe(bus.KindPresenceChanged, 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(ctx, evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) handleEvent(ctx context.Context, evt bus.Event) {
	status, ok := evt.Payload.(presence.Status)
	if !ok || status.Online() {
		return
	}
	ids, err := e.db.ClearTyping(ctx, status.ParticipantID)
	if err != nil {
		e.logger.Error("failed to clear typing flags", zap.Error(err), zap.String("participant", status.ParticipantID))
		return
	}
	for _, id := range ids {
		e.publish(bus.KindTypingChanged, id)
	}
}

// EnsureLog creates the log for id when absent. An existing log is never
// modified.
func (e *Engine) EnsureLog(ctx context.Context, id conversation.ID) error {
	created, err := e.db.EnsureLog(ctx, id)
	if err != nil {
		return err
	}
	if created {
		e.logger.Debug("log created", zap.Stringer("conversation", id))
		e.publish(bus.KindLogCreated, id)
	}
	return nil
}

// Append adds m to the log of id, creating the log when absent. The stored
// message is returned with its final timestamp.
func (e *Engine) Append(ctx context.Context, id conversation.ID, m conversation.Message) (conversation.Message, error) {
	if err := m.Validate(); err != nil {
		return conversation.Message{}, err
	}
	if conversation.NewID(m.SenderID, m.RecipientID) != id || m.SenderID == m.RecipientID {
		return conversation.Message{}, fmt.Errorf("%w: participants do not match conversation %q", conversation.ErrInvalidMessage, id)
	}
	m.Timestamp = e.stamp(m.Timestamp)

	res, err := e.db.AppendMessage(ctx, id, m, true)
	if errors.Is(err, store.ErrLogNotFound) {
		return conversation.Message{}, conversation.ErrLogNotFound
	}
	if err != nil {
		return conversation.Message{}, fmt.Errorf("append to %q: %w", id, err)
	}

	if res.Created {
		e.publish(bus.KindLogCreated, id)
	}
	if res.Appended {
		e.publish(bus.KindLogAppended, id)
	}
	return res.Message, nil
}

// stamp keeps a client timestamp only when it is within MaxClockSkew of the
// engine clock. Storage precision is milliseconds.
func (e *Engine) stamp(ts time.Time) time.Time {
	now := e.now()
	if ts.IsZero() || ts.After(now.Add(MaxClockSkew)) || ts.Before(now.Add(-MaxClockSkew)) {
		ts = now
	}
	return time.UnixMilli(ts.UnixMilli()).UTC()
}

// ReadLog returns the current messages of id; an absent log reads empty.
func (e *Engine) ReadLog(ctx context.Context, id conversation.ID) ([]conversation.Message, error) {
	msgs, _, err := e.db.ReadLog(ctx, id)
	return msgs, err
}

// WatchLog calls fn with the current log of id and again after every change,
// until ctx is done or fn returns an error. Calls are serial.
func (e *Engine) WatchLog(ctx context.Context, id conversation.ID, fn func([]conversation.Message) error) error {
	return e.watch(ctx, bus.NamespaceLog, id, func() error {
		msgs, err := e.ReadLog(ctx, id)
		if err != nil {
			return err
		}
		return fn(msgs)
	})
}

// SetTyping overwrites participant's flag in the typing document of id.
func (e *Engine) SetTyping(ctx context.Context, id conversation.ID, participant string, typing bool) error {
	if !id.Includes(participant) {
		return fmt.Errorf("%w: %q is not part of %q", conversation.ErrInvalidMessage, participant, id)
	}
	if err := e.db.MergeTyping(ctx, id, participant, typing); err != nil {
		return err
	}
	e.publish(bus.KindTypingChanged, id)
	return nil
}

// ReadTyping returns the typing document of id; an absent document reads
// empty.
func (e *Engine) ReadTyping(ctx context.Context, id conversation.ID) (conversation.TypingState, error) {
	return e.db.ReadTyping(ctx, id)
}

// WatchTyping is WatchLog for the typing document.
func (e *Engine) WatchTyping(ctx context.Context, id conversation.ID, fn func(conversation.TypingState) error) error {
	return e.watch(ctx, bus.KindTypingChanged, id, func() error {
		state, err := e.ReadTyping(ctx, id)
		if err != nil {
			return err
		}
		return fn(state)
	})
}

// Stats counts logs, messages and profiles.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.Logs, err = e.db.LogCount(ctx); err != nil {
		return s, err
	}
	if s.Messages, err = e.db.MessageCount(ctx); err != nil {
		return s, err
	}
	if s.Profiles, err = e.db.ProfileCount(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// watch subscribes before the first read so no change between the read and
// the subscription is missed. The one-slot buffer coalesces bursts into a
// single re-read of the latest document.
func (e *Engine) watch(ctx context.Context, namespace string, id conversation.ID, emit func() error) error {
	ch, unsub := e.bus.SubscribeKey(namespace, string(id), 1)
	defer unsub()

	if err := emit(); err != nil {
		return err
	}
	for {
		select {
		case <-ch:
			if err := emit(); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (e *Engine) publish(kind string, id conversation.ID) {
	e.bus.Publish(bus.Event{
		Kind:      kind,
		Key:       string(id),
		Timestamp: e.now(),
	})
}
