package presence

import (
	"context"
	"testing"
	"time"

	"github.com/matheus3301/pairchat/internal/bus"
	"go.uber.org/zap/zaptest"
)

func TestMemoryStoreUnknownIsDisconnected(t *testing.T) {
	s := NewMemoryStore(bus.New())

	got, err := s.Get(context.Background(), "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if got.Online() || !got.LastActive.IsZero() {
		t.Errorf("unknown participant = %+v, want disconnected with zero LastActive", got)
	}
}

func TestTrackerRefcountsAttachments(t *testing.T) {
	b := bus.New()
	store := NewMemoryStore(b)
	tr := NewTracker(store, zaptest.NewLogger(t))
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }
	ctx := context.Background()

	events, unsub := b.SubscribeKey(bus.KindPresenceChanged, "u1", 10)
	defer unsub()

	detach1, err := tr.Attach(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	detach2, err := tr.Attach(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	got, _ := store.Get(ctx, "u1")
	if !got.Online() {
		t.Fatalf("after attach = %+v, want connected", got)
	}

	detach1()
	detach1()
	got, _ = store.Get(ctx, "u1")
	if !got.Online() {
		t.Fatal("one attachment still open, want connected")
	}

	now = now.Add(time.Minute)
	detach2()
	got, _ = store.Get(ctx, "u1")
	if got.Online() {
		t.Fatal("all attachments closed, want disconnected")
	}
	if !got.LastActive.Equal(now) {
		t.Errorf("LastActive = %v, want %v", got.LastActive, now)
	}
	if tr.Connected() != 0 {
		t.Errorf("Connected() = %d, want 0", tr.Connected())
	}

	// connected once, disconnected once
	var states []State
	for len(events) > 0 {
		evt := <-events
		states = append(states, evt.Payload.(Status).State)
	}
	if len(states) != 2 || states[0] != StateConnected || states[1] != StateDisconnected {
		t.Errorf("announced states = %v", states)
	}
}

func TestTrackerDisconnectOverridesAttachments(t *testing.T) {
	store := NewMemoryStore(bus.New())
	tr := NewTracker(store, nil)
	ctx := context.Background()

	detach, err := tr.Attach(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Disconnect(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Get(ctx, "u1")
	if got.Online() {
		t.Error("after Disconnect, want disconnected")
	}

	// A late detach must not resurrect or double count.
	detach()
	if tr.Connected() != 0 {
		t.Errorf("Connected() = %d, want 0", tr.Connected())
	}
}
