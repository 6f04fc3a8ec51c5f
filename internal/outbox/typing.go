package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/pairchat/internal/conversation"
	"go.uber.org/zap"
)

// TypingSetter is the backend write a TypingWriter drains into.
type TypingSetter interface {
	SetTyping(ctx context.Context, id conversation.ID, participant string, typing bool) error
}

type typingKey struct {
	id          conversation.ID
	participant string
}

// TypingWriter delivers typing flags in the background. Set never blocks:
// only the latest value per (conversation, participant) is kept, and values
// queued while a write is in flight are coalesced into one. Failed writes are
// logged and dropped.
type TypingWriter struct {
	setter  TypingSetter
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[typingKey]bool
	wake    chan struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

// NewTypingWriter creates a writer draining into setter.
func NewTypingWriter(setter TypingSetter, logger *zap.Logger) *TypingWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypingWriter{
		setter:  setter,
		logger:  logger,
		timeout: 5 * time.Second,
		pending: make(map[typingKey]bool),
		wake:    make(chan struct{}, 1),
	}
}

// Set queues participant's flag for id.
func (w *TypingWriter) Set(id conversation.ID, participant string, typing bool) {
	w.mu.Lock()
	w.pending[typingKey{id, participant}] = typing
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Start begins draining queued flags.
func (w *TypingWriter) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.loop(ctx)
}

// Stop stops the writer after one last attempt to deliver what is queued.
func (w *TypingWriter) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel = nil

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	w.drain(ctx)
}

// loop drains until ctx ends. A write in flight when Stop is called runs to
// completion, bounded by the write timeout.
func (w *TypingWriter) loop(ctx context.Context) {
	defer close(w.done)
	writeCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-w.wake:
			w.drain(writeCtx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *TypingWriter) drain(ctx context.Context) {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[typingKey]bool)
	w.mu.Unlock()

	for k, typing := range batch {
		if ctx.Err() != nil {
			w.requeue(k, typing)
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, w.timeout)
		err := w.setter.SetTyping(wctx, k.id, k.participant, typing)
		cancel()
		if err != nil {
			w.logger.Debug("typing write dropped",
				zap.Stringer("conversation", k.id),
				zap.String("participant", k.participant),
				zap.Bool("typing", typing),
				zap.Error(err))
		}
	}
}

// requeue puts back a value unless a newer one arrived meanwhile.
func (w *TypingWriter) requeue(k typingKey, typing bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, newer := w.pending[k]; !newer {
		w.pending[k] = typing
	}
}
