package presence

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tracker derives presence from live attachments. A participant is connected
// while at least one attachment is open; the last detach marks them
// disconnected and stamps LastActive.
type Tracker struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	conns map[string]int
}

// NewTracker creates a tracker writing to store.
func NewTracker(store Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		store:  store,
		logger: logger,
		now:    time.Now,
		conns:  make(map[string]int),
	}
}

// Attach marks participant connected and returns the on-disconnect hook.
// The hook is safe to call more than once.
func (t *Tracker) Attach(ctx context.Context, participant string) (func(), error) {
	t.mu.Lock()
	t.conns[participant]++
	first := t.conns[participant] == 1
	t.mu.Unlock()

	if first {
		err := t.store.Set(ctx, Status{ParticipantID: participant, State: StateConnected, LastActive: t.now().UTC()})
		if err != nil {
			t.release(participant)
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if !t.release(participant) {
				return
			}
			t.markDisconnected(participant)
		})
	}, nil
}

// Disconnect marks participant disconnected regardless of open attachments,
// as on logout.
func (t *Tracker) Disconnect(ctx context.Context, participant string) error {
	t.mu.Lock()
	delete(t.conns, participant)
	t.mu.Unlock()
	return t.store.Set(ctx, Status{ParticipantID: participant, State: StateDisconnected, LastActive: t.now().UTC()})
}

// Connected returns the number of participants with an open attachment.
func (t *Tracker) Connected() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

// release drops one attachment and reports whether it was the last.
func (t *Tracker) release(participant string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.conns[participant]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(t.conns, participant)
		return true
	}
	t.conns[participant] = n - 1
	return false
}

// markDisconnected runs detached from the attachment's context, which is
// usually already cancelled.
func (t *Tracker) markDisconnected(participant string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := t.store.Set(ctx, Status{ParticipantID: participant, State: StateDisconnected, LastActive: t.now().UTC()})
	if err != nil {
		t.logger.Warn("failed to mark participant disconnected", zap.String("participant", participant), zap.Error(err))
	}
}
