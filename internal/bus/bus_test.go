package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("log.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindLogAppended, Key: "u1_u2", Timestamp: time.Now()})

	select {
	case evt := <-ch:
		if evt.Kind != KindLogAppended || evt.Key != "u1_u2" {
			t.Errorf("got %q/%q, want %s/u1_u2", evt.Kind, evt.Key, KindLogAppended)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("typing.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindLogAppended})
	b.Publish(Event{Kind: KindTypingChanged})

	select {
	case evt := <-ch:
		if evt.Kind != KindTypingChanged {
			t.Errorf("got kind %q, want %s", evt.Kind, KindTypingChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestKeyFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.SubscribeKey("log.", "a_b", 10)
	defer unsub()

	b.Publish(Event{Kind: KindLogAppended, Key: "a_c"})
	b.Publish(Event{Kind: KindLogAppended, Key: "a_b"})

	select {
	case evt := <-ch:
		if evt.Key != "a_b" {
			t.Errorf("got key %q, want a_b", evt.Key)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	if len(ch) != 0 {
		t.Errorf("%d extra events delivered for other keys", len(ch))
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("log.", 10)
	unsub()
	unsub() // idempotent

	b.Publish(Event{Kind: KindLogAppended})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d after unsubscribe, want 0", b.Len())
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("test.", 1)
	defer unsub()

	b.Publish(Event{Kind: "test.one"})
	// Dropped: the buffer already holds test.one.
	b.Publish(Event{Kind: "test.two"})

	evt := <-ch
	if evt.Kind != "test.one" {
		t.Errorf("got %q, want test.one", evt.Kind)
	}
}
