package sse

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func testBroker() *Broker {
	return NewBroker(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := testBroker()
	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish(Event{Name: "note.updated", Data: map[string]string{"path": "daily/a.md"}})

	for _, ch := range []chan Event{a, c} {
		select {
		case ev := <-ch:
			if ev.Name != "note.updated" {
				t.Errorf("event = %q", ev.Name)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := testBroker()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}
	if n := b.SubscriberCount(); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}

	// Double unsubscribe must not panic.
	b.Unsubscribe(ch)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	b := testBroker()
	ch := b.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(Event{Name: "note.updated"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	_ = ch
}

func TestGraphUpdatedThrottled(t *testing.T) {
	b := testBroker()
	ch := b.Subscribe()

	b.PublishNoteEvent("updated", "daily/a.md")
	b.PublishNoteEvent("updated", "daily/b.md")

	var graphEvents int
	for {
		select {
		case ev := <-ch:
			if ev.Name == "graph.updated" {
				graphEvents++
			}
			continue
		default:
		}
		break
	}
	if graphEvents != 1 {
		t.Errorf("graph.updated events = %d, want 1", graphEvents)
	}
}
