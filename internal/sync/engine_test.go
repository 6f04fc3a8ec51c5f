package sync

import (
	"context"
	"errors"
	"path/filepath"
	gosync "sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/matheus3301/pairchat/internal/bus"
	"github.com/matheus3301/pairchat/internal/conversation"
	"github.com/matheus3301/pairchat/internal/presence"
	"github.com/matheus3301/pairchat/internal/store"
	"go.uber.org/zap/zaptest"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testEngine(t *testing.T) (*Engine, *bus.Bus) {
	t.Helper()
	b := bus.New()
	return NewEngine(testDB(t), b, zaptest.NewLogger(t)), b
}

func hi(ts time.Time) conversation.Message {
	return conversation.Message{SenderID: "u1", RecipientID: "u2", Text: "hi", Type: conversation.KindText, Timestamp: ts}
}

func TestEngineAppendScenario(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()
	id := conversation.NewID("u2", "u1")
	if id != "u1_u2" {
		t.Fatalf("id = %q, want u1_u2", id)
	}

	t1 := time.Now().Add(-time.Second).Truncate(time.Millisecond).UTC()
	stored, err := e.Append(ctx, id, hi(t1))
	if err != nil {
		t.Fatal(err)
	}

	got, err := e.ReadLog(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]conversation.Message{hi(t1)}, got); diff != "" {
		t.Errorf("log (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(hi(t1), stored); diff != "" {
		t.Errorf("returned message (-want +got):\n%s", diff)
	}
}

func TestEngineAppendLocationRoundTrip(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()
	id := conversation.NewID("u1", "u2")

	m := conversation.Message{
		SenderID:    "u1",
		RecipientID: "u2",
		Text:        "https://www.google.com/maps?q=1.29,103.85",
		Type:        conversation.KindLocation,
	}
	if _, err := e.Append(ctx, id, m); err != nil {
		t.Fatal(err)
	}
	got, _ := e.ReadLog(ctx, id)
	if len(got) != 1 || got[0].Text != m.Text || got[0].Type != conversation.KindLocation {
		t.Errorf("log = %+v", got)
	}
}

func TestEngineTimestampPolicy(t *testing.T) {
	e, _ := testEngine(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"zero is stamped", time.Time{}, now},
		{"small past skew is kept", now.Add(-2 * time.Second), now.Add(-2 * time.Second)},
		{"small future skew is kept", now.Add(2 * time.Second), now.Add(2 * time.Second)},
		{"back-dated is stamped", now.Add(-time.Hour), now},
		{"just past the skew is stamped", now.Add(-MaxClockSkew - time.Millisecond), now},
		{"far future is stamped", now.Add(time.Hour), now},
		{"sub-millisecond is truncated", now.Add(-time.Second + 1500*time.Microsecond), now.Add(-time.Second + time.Millisecond)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.stamp(tt.in); !got.Equal(tt.want) {
				t.Errorf("stamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEngineAppendRejectsMismatchedParticipants(t *testing.T) {
	e, _ := testEngine(t)

	_, err := e.Append(context.Background(), conversation.NewID("u1", "u3"), hi(time.Time{}))
	if !errors.Is(err, conversation.ErrInvalidMessage) {
		t.Errorf("err = %v, want ErrInvalidMessage", err)
	}
}

func TestEngineEnsureLogDoesNotTruncate(t *testing.T) {
	e, b := testEngine(t)
	ctx := context.Background()
	id := conversation.NewID("u1", "u2")

	created, unsub := b.Subscribe(bus.KindLogCreated, 10)
	defer unsub()

	if err := e.EnsureLog(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Append(ctx, id, hi(time.Time{})); err != nil {
		t.Fatal(err)
	}
	if err := e.EnsureLog(ctx, id); err != nil {
		t.Fatal(err)
	}

	got, _ := e.ReadLog(ctx, id)
	if len(got) != 1 {
		t.Errorf("log has %d messages after second EnsureLog, want 1", len(got))
	}
	if len(created) != 1 {
		t.Errorf("%d log.created events, want 1", len(created))
	}
}

func TestEngineConcurrentAppendsBothSurvive(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()
	id := conversation.NewID("u1", "u2")

	msgs := []conversation.Message{
		{SenderID: "u1", RecipientID: "u2", Text: "from one", Type: conversation.KindText},
		{SenderID: "u2", RecipientID: "u1", Text: "from two", Type: conversation.KindText},
	}
	var wg gosync.WaitGroup
	errs := make([]error, len(msgs))
	for i, m := range msgs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.Append(ctx, id, m)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	got, _ := e.ReadLog(ctx, id)
	texts := map[string]bool{}
	for _, m := range got {
		texts[m.Text] = true
	}
	if len(got) != 2 || !texts["from one"] || !texts["from two"] {
		t.Errorf("log = %+v, want both messages", got)
	}
}

func TestEngineWatchLog(t *testing.T) {
	e, _ := testEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	id := conversation.NewID("u1", "u2")

	snapshots := make(chan []conversation.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- e.WatchLog(ctx, id, func(msgs []conversation.Message) error {
			snapshots <- msgs
			return nil
		})
	}()

	select {
	case first := <-snapshots:
		if first == nil || len(first) != 0 {
			t.Fatalf("first snapshot = %#v, want empty", first)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	if _, err := e.Append(context.Background(), id, hi(time.Time{})); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case msgs := <-snapshots:
			if len(msgs) == 1 {
				cancel()
				if err := <-done; !errors.Is(err, context.Canceled) {
					t.Errorf("WatchLog returned %v, want context.Canceled", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("append not observed")
		}
	}
}

func TestEngineWatchStopsOnCallbackError(t *testing.T) {
	e, _ := testEngine(t)
	stop := errors.New("stream closed")

	err := e.WatchTyping(context.Background(), conversation.NewID("u1", "u2"), func(conversation.TypingState) error {
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want callback error", err)
	}
}

func TestEngineSetTyping(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()
	id := conversation.NewID("u1", "u2")

	if err := e.SetTyping(ctx, id, "u3", true); !errors.Is(err, conversation.ErrInvalidMessage) {
		t.Errorf("outsider write err = %v, want ErrInvalidMessage", err)
	}
	if err := e.SetTyping(ctx, id, "u1", true); err != nil {
		t.Fatal(err)
	}
	state, err := e.ReadTyping(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(conversation.TypingState{"u1": true}, state); diff != "" {
		t.Errorf("state (-want +got):\n%s", diff)
	}
}

// TestEngineClearsTypingOnDisconnect verifies the engine reacts to presence
// events published on the bus.
func TestEngineClearsTypingOnDisconnect(t *testing.T) {
	e, b := testEngine(t)
	ctx := context.Background()
	id := conversation.NewID("u1", "u2")

	e.Start(ctx)
	defer e.Stop()

	if err := e.SetTyping(ctx, id, "u1", true); err != nil {
		t.Fatal(err)
	}

	b.Publish(bus.Event{
		Kind:    bus.KindPresenceChanged,
		Key:     "u1",
		Payload: presence.Status{ParticipantID: "u1", State: presence.StateDisconnected},
	})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		state, err := e.ReadTyping(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if !state["u1"] {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("typing flag not cleared after disconnect")
}

func TestEngineStats(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()

	if _, err := e.Append(ctx, conversation.NewID("u1", "u2"), hi(time.Time{})); err != nil {
		t.Fatal(err)
	}
	s, err := e.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Stats{Logs: 1, Messages: 1}, s); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
}
