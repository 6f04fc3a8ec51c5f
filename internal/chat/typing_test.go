package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/matheus3301/pairchat/internal/conversation"
	"github.com/matheus3301/pairchat/internal/outbox"
	"go.uber.org/zap/zaptest"
)

func testTyping(t *testing.T, backend Backend) *Typing {
	t.Helper()
	w := outbox.NewTypingWriter(backend, zaptest.NewLogger(t))
	w.Start(context.Background())
	t.Cleanup(w.Stop)
	return NewTyping(backend, w, zaptest.NewLogger(t))
}

func TestPeerSeesTypingWithoutWriting(t *testing.T) {
	e := testEngine(t)
	typing := testTyping(t, e)
	id := conversation.NewID("A", "B")

	// B watches A; A watches B.
	bView := newRecorder[bool]()
	aView := newRecorder[bool]()
	subB := typing.SubscribeTyping(context.Background(), id, "A", bView.add)
	defer subB.Close()
	subA := typing.SubscribeTyping(context.Background(), id, "B", aView.add)
	defer subA.Close()

	bView.waitN(t, 1)
	aView.waitN(t, 1)

	typing.SetTyping(id, "A", true)

	got := bView.waitN(t, 2)
	if diff := cmp.Diff([]bool{false, true}, got); diff != "" {
		t.Errorf("B's view (-want +got):\n%s", diff)
	}

	time.Sleep(50 * time.Millisecond)
	if diff := cmp.Diff([]bool{false}, aView.all()); diff != "" {
		t.Errorf("A observed its own flag (-want +got):\n%s", diff)
	}
}

func TestSubscribeTypingOnlyReportsChanges(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	id := conversation.NewID("A", "B")
	typing := NewTyping(e, nil, nil)

	view := newRecorder[bool]()
	sub := typing.SubscribeTyping(ctx, id, "A", view.add)
	defer sub.Close()
	view.waitN(t, 1)

	set := func(who string, v bool) {
		t.Helper()
		if err := e.SetTyping(ctx, id, who, v); err != nil {
			t.Fatal(err)
		}
	}

	// Writes of B and repeated values of A do not change A's flag.
	set("B", true)
	set("A", true)
	view.waitN(t, 2)
	set("A", true)
	set("B", false)
	set("A", false)
	view.waitN(t, 3)

	time.Sleep(50 * time.Millisecond)
	if diff := cmp.Diff([]bool{false, true, false}, view.all()); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
}

func TestSubscribeTypingSetupFailureReadsFalse(t *testing.T) {
	typing := NewTyping(&fakeBackend{watchErr: errors.New("unavailable")}, nil, zaptest.NewLogger(t))
	view := newRecorder[bool]()

	sub := typing.SubscribeTyping(context.Background(), conversation.NewID("A", "B"), "A", view.add)
	got := view.waitN(t, 1)
	sub.Close()
	sub.Close()

	if got[0] {
		t.Error("degraded typing flag = true, want false")
	}
}
