package chat

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/matheus3301/pairchat/internal/bus"
	"github.com/matheus3301/pairchat/internal/conversation"
	"github.com/matheus3301/pairchat/internal/store"
	intsync "github.com/matheus3301/pairchat/internal/sync"
	"go.uber.org/zap/zaptest"
)

func testEngine(t *testing.T) *intsync.Engine {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return intsync.NewEngine(db, bus.New(), zaptest.NewLogger(t))
}

// recorder collects callback values for later inspection.
type recorder[T any] struct {
	mu     sync.Mutex
	values []T
	notify chan struct{}
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{notify: make(chan struct{}, 100)}
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	r.notify <- struct{}{}
}

func (r *recorder[T]) all() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

// waitN waits until at least n values were recorded.
func (r *recorder[T]) waitN(t *testing.T, n int) []T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if got := r.all(); len(got) >= n {
			return got
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("got %d callbacks, want %d", len(r.all()), n)
		}
	}
}

func text(from, to, s string) conversation.Message {
	return conversation.Message{SenderID: from, RecipientID: to, Text: s, Type: conversation.KindText}
}

func TestSubscribeEmptyFirstThenAppends(t *testing.T) {
	a := NewAdapter(testEngine(t), zaptest.NewLogger(t))
	id := conversation.NewID("u1", "u2")
	rec := newRecorder[[]conversation.Message]()

	sub := a.Subscribe(context.Background(), id, rec.add)
	defer sub.Close()

	first := rec.waitN(t, 1)[0]
	if first == nil || len(first) != 0 {
		t.Fatalf("first snapshot = %#v, want empty", first)
	}

	if _, err := a.Append(context.Background(), id, text("u1", "u2", "hi")); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Append(context.Background(), id, text("u2", "u1", "hey")); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := rec.all()
		if last := got[len(got)-1]; len(last) == 2 {
			if last[0].Text != "hi" || last[1].Text != "hey" {
				t.Errorf("order = %q, %q", last[0].Text, last[1].Text)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("sender's own appends were not echoed")
}

func TestAppendWithoutEnsureCreatesLog(t *testing.T) {
	e := testEngine(t)
	a := NewAdapter(e, nil)
	ctx := context.Background()
	id := conversation.NewID("u1", "u2")

	if _, err := a.Append(ctx, id, text("u1", "u2", "first")); err != nil {
		t.Fatal(err)
	}
	msgs, err := e.ReadLog(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Errorf("got %d messages, want 1", len(msgs))
	}
}

func TestEnsureLogIdempotent(t *testing.T) {
	e := testEngine(t)
	a := NewAdapter(e, nil)
	ctx := context.Background()
	id := conversation.NewID("u1", "u2")

	if _, err := a.Append(ctx, id, text("u1", "u2", "keep me")); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		if err := a.EnsureLog(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	msgs, _ := e.ReadLog(ctx, id)
	if len(msgs) != 1 {
		t.Errorf("EnsureLog changed the log: %d messages", len(msgs))
	}
}

func TestSubscriptionCloseIdempotent(t *testing.T) {
	a := NewAdapter(testEngine(t), nil)
	id := conversation.NewID("u1", "u2")
	rec := newRecorder[[]conversation.Message]()

	sub := a.Subscribe(context.Background(), id, rec.add)
	rec.waitN(t, 1)
	sub.Close()
	sub.Close()

	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed after Close")
	}

	n := len(rec.all())
	if _, err := a.Append(context.Background(), id, text("u1", "u2", "late")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if got := len(rec.all()); got != n {
		t.Errorf("callback fired after Close: %d -> %d", n, got)
	}
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	a := NewAdapter(testEngine(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	rec := newRecorder[[]conversation.Message]()

	sub := a.Subscribe(ctx, conversation.NewID("u1", "u2"), rec.add)
	rec.waitN(t, 1)
	cancel()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription outlived its context")
	}
	sub.Close()
}

func TestSwitchingConversationsIsIndependent(t *testing.T) {
	a := NewAdapter(testEngine(t), nil)
	ctx := context.Background()
	first := conversation.NewID("u1", "u2")
	second := conversation.NewID("u1", "u3")

	rec1 := newRecorder[[]conversation.Message]()
	sub1 := a.Subscribe(ctx, first, rec1.add)
	rec1.waitN(t, 1)
	sub1.Close()

	rec2 := newRecorder[[]conversation.Message]()
	sub2 := a.Subscribe(ctx, second, rec2.add)
	defer sub2.Close()
	rec2.waitN(t, 1)

	if _, err := a.Append(ctx, second, text("u1", "u3", "x")); err != nil {
		t.Fatal(err)
	}
	rec2.waitN(t, 2)
	if n := len(rec1.all()); n != 1 {
		t.Errorf("closed subscription received %d callbacks, want 1", n)
	}
}

// fakeBackend fails in scripted ways.
type fakeBackend struct {
	mu        sync.Mutex
	ensured   int
	appends   int
	strict    bool
	watchErr  error
	appendErr error
}

func (f *fakeBackend) EnsureLog(context.Context, conversation.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured++
	return nil
}

func (f *fakeBackend) Append(_ context.Context, _ conversation.ID, m conversation.Message) (conversation.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends++
	if f.appendErr != nil {
		return conversation.Message{}, f.appendErr
	}
	if f.strict && f.ensured == 0 {
		return conversation.Message{}, conversation.ErrLogNotFound
	}
	return m, nil
}

func (f *fakeBackend) WatchLog(ctx context.Context, _ conversation.ID, fn func([]conversation.Message) error) error {
	if f.watchErr != nil {
		return f.watchErr
	}
	if err := fn(nil); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeBackend) SetTyping(context.Context, conversation.ID, string, bool) error {
	return nil
}

func (f *fakeBackend) WatchTyping(ctx context.Context, _ conversation.ID, fn func(conversation.TypingState) error) error {
	if f.watchErr != nil {
		return f.watchErr
	}
	if err := fn(conversation.TypingState{}); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestAppendRetriesOnceOnStrictBackend(t *testing.T) {
	f := &fakeBackend{strict: true}
	a := NewAdapter(f, nil)

	if _, err := a.Append(context.Background(), conversation.NewID("u1", "u2"), text("u1", "u2", "x")); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([2]int{1, 2}, [2]int{f.ensured, f.appends}); diff != "" {
		t.Errorf("[ensured appends] (-want +got):\n%s", diff)
	}
}

func TestAppendDoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeBackend{appendErr: boom}
	a := NewAdapter(f, nil)

	_, err := a.Append(context.Background(), conversation.NewID("u1", "u2"), text("u1", "u2", "x"))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if f.appends != 1 || f.ensured != 0 {
		t.Errorf("appends=%d ensured=%d, want 1 and 0", f.appends, f.ensured)
	}
}

func TestSubscribeSetupFailureDegradesToEmpty(t *testing.T) {
	f := &fakeBackend{watchErr: errors.New("unavailable")}
	a := NewAdapter(f, zaptest.NewLogger(t))
	rec := newRecorder[[]conversation.Message]()

	sub := a.Subscribe(context.Background(), conversation.NewID("u1", "u2"), rec.add)
	got := rec.waitN(t, 1)
	sub.Close()

	if got[0] == nil || len(got[0]) != 0 {
		t.Errorf("degraded snapshot = %#v, want empty", got[0])
	}
	if n := len(rec.all()); n != 1 {
		t.Errorf("got %d callbacks, want exactly one empty snapshot", n)
	}
}

func TestSubscribeNormalizesNilSnapshot(t *testing.T) {
	a := NewAdapter(&fakeBackend{}, nil)
	rec := newRecorder[[]conversation.Message]()

	sub := a.Subscribe(context.Background(), conversation.NewID("u1", "u2"), rec.add)
	defer sub.Close()

	if got := rec.waitN(t, 1)[0]; got == nil {
		t.Error("snapshot is nil, want empty slice")
	}
}
