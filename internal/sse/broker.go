// Package sse implements a small server-sent-events broker used to push
// vault change notifications to connected browsers.
package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Event is a single server-sent event.
type Event struct {
	Name string
	Data any
}

// Broker fans events out to all connected subscribers. Slow subscribers
// are skipped rather than blocking the publisher.
type Broker struct {
	logger *slog.Logger

	mu        sync.Mutex
	subs      map[chan Event]struct{}
	lastGraph time.Time
}

// graphThrottle limits how often graph.updated is broadcast during bursts
// of file events.
const graphThrottle = 2 * time.Second

// NewBroker creates a broker.
func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		logger: logger,
		subs:   make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber channel.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish broadcasts an event to every subscriber.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber buffer full, drop the event for it.
		}
	}
}

// PublishNoteEvent broadcasts a note lifecycle event (note.created,
// note.updated, note.deleted) followed by a throttled graph.updated.
func (b *Broker) PublishNoteEvent(kind, path string) {
	name := "note." + kind
	if path == "" {
		name = "vault.synced"
	}
	b.Publish(Event{Name: name, Data: map[string]string{"path": path}})

	b.mu.Lock()
	due := time.Since(b.lastGraph) >= graphThrottle
	if due {
		b.lastGraph = time.Now()
	}
	b.mu.Unlock()

	if due {
		b.Publish(Event{Name: "graph.updated", Data: map[string]string{}})
	}
}

// SubscriberCount returns the number of connected subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// ServeHTTP streams events to a client until it disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.logger.Debug("sse: client connected")

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			b.logger.Debug("sse: client disconnected")
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, payload)
			flusher.Flush()
		}
	}
}
