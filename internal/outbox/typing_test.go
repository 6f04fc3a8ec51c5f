package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/pairchat/internal/conversation"
	"go.uber.org/zap/zaptest"
)

// mockSetter records calls and returns configurable results.
type mockSetter struct {
	mu    sync.Mutex
	calls []setCall
	err   error

	// When gate is set, each call announces itself on entered and then
	// waits for a receive on gate.
	gate    chan struct{}
	entered chan struct{}
}

type setCall struct {
	ID          conversation.ID
	Participant string
	Typing      bool
}

func (m *mockSetter) SetTyping(_ context.Context, id conversation.ID, participant string, typing bool) error {
	if m.gate != nil {
		m.entered <- struct{}{}
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, setCall{id, participant, typing})
	return m.err
}

func (m *mockSetter) snapshot() []setCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]setCall(nil), m.calls...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestTypingWriterDelivers(t *testing.T) {
	mock := &mockSetter{}
	w := NewTypingWriter(mock, zaptest.NewLogger(t))
	w.Start(context.Background())
	defer w.Stop()

	id := conversation.NewID("u1", "u2")
	w.Set(id, "u1", true)

	waitFor(t, func() bool { return len(mock.snapshot()) == 1 })
	if got := mock.snapshot()[0]; got != (setCall{id, "u1", true}) {
		t.Errorf("call = %+v", got)
	}
}

func TestTypingWriterCoalescesWhileBusy(t *testing.T) {
	mock := &mockSetter{gate: make(chan struct{}), entered: make(chan struct{}, 4)}
	w := NewTypingWriter(mock, nil)
	w.Start(context.Background())
	defer w.Stop()

	id := conversation.NewID("u1", "u2")
	w.Set(id, "u1", true)

	<-mock.entered
	w.Set(id, "u1", false)
	w.Set(id, "u1", true)
	w.Set(id, "u1", false)

	mock.gate <- struct{}{}
	<-mock.entered
	mock.gate <- struct{}{}
	waitFor(t, func() bool { return len(mock.snapshot()) == 2 })

	calls := mock.snapshot()
	if calls[1].Typing {
		t.Errorf("last delivered = %+v, want the latest value false", calls[1])
	}
}

func TestTypingWriterSwallowsErrors(t *testing.T) {
	mock := &mockSetter{err: errors.New("backend down")}
	w := NewTypingWriter(mock, zaptest.NewLogger(t))
	w.Start(context.Background())
	defer w.Stop()

	id := conversation.NewID("u1", "u2")
	w.Set(id, "u1", true)
	waitFor(t, func() bool { return len(mock.snapshot()) == 1 })

	// A failure is not retried.
	time.Sleep(50 * time.Millisecond)
	if n := len(mock.snapshot()); n != 1 {
		t.Errorf("got %d calls, want 1", n)
	}
}

func TestTypingWriterStopFlushesQueued(t *testing.T) {
	mock := &mockSetter{}
	w := NewTypingWriter(mock, nil)

	id := conversation.NewID("u1", "u2")
	w.Set(id, "u1", false)

	w.Start(context.Background())
	w.Stop()
	w.Stop()

	if n := len(mock.snapshot()); n != 1 {
		t.Errorf("got %d calls after Stop, want 1", n)
	}
}

// slowSetter takes a while per write and gives up when its ctx ends.
type slowSetter struct {
	mu    sync.Mutex
	calls []setCall
	delay time.Duration
}

func (s *slowSetter) SetTyping(ctx context.Context, id conversation.ID, participant string, typing bool) error {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, setCall{id, participant, typing})
	return nil
}

func TestTypingWriterStopCompletesInFlightWrite(t *testing.T) {
	id := conversation.NewID("u1", "u2")
	for i := range 20 {
		setter := &slowSetter{delay: 5 * time.Millisecond}
		w := NewTypingWriter(setter, nil)
		w.Start(context.Background())

		w.Set(id, "u1", true)
		time.Sleep(time.Millisecond)
		w.Stop()

		setter.mu.Lock()
		calls := append([]setCall(nil), setter.calls...)
		setter.mu.Unlock()
		if len(calls) == 0 || calls[len(calls)-1] != (setCall{id, "u1", true}) {
			t.Fatalf("run %d: calls = %+v, want the flag written before Stop returns", i, calls)
		}
	}
}

func TestTypingWriterStopDeliversLatestAfterSend(t *testing.T) {
	setter := &slowSetter{delay: 5 * time.Millisecond}
	w := NewTypingWriter(setter, nil)
	w.Start(context.Background())

	id := conversation.NewID("u1", "u2")
	w.Set(id, "u1", true)
	time.Sleep(time.Millisecond)
	w.Set(id, "u1", false)
	w.Stop()

	setter.mu.Lock()
	defer setter.mu.Unlock()
	if n := len(setter.calls); n == 0 || setter.calls[n-1].Typing {
		t.Errorf("calls = %+v, want the last delivered flag to be false", setter.calls)
	}
}
