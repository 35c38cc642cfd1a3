// Package sse implements a Server-Sent Events broker that tells clients when
// the task list changed.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// EventUpdated is the coalesced "the list is now this" event.
const EventUpdated = "tasks.updated"

// Event is one SSE message as written to the stream.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Snapshot summarizes the list after a change. Checksum matches the ETag of
// GET /api/tasks, so a client can skip refetching a list it already has.
type Snapshot struct {
	Count    int    `json:"count"`
	Checksum string `json:"checksum"`
}

type changeReq struct {
	op   string
	snap Snapshot
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients, the latest snapshot and its throttle timer). Public methods
// communicate with this loop through channels, so no mutexes are required.
type Broker struct {
	snapshotMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	changeCh      chan changeReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. At most one tasks.updated event is sent
// per snapshotThrottle interval; changes inside the interval are folded into
// one event sent when it ends, carrying the latest snapshot.
func NewBroker(snapshotThrottle time.Duration) *Broker {
	if snapshotThrottle <= 0 {
		snapshotThrottle = time.Second
	}

	b := &Broker{
		snapshotMin:   snapshotThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		changeCh:      make(chan changeReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func encode(event Event) []byte {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))
}

// send never blocks the loop; a client with a full buffer misses the message.
func send(ch chan []byte, raw []byte) {
	select {
	case ch <- raw:
	default:
	}
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})

	var (
		latest   *Snapshot
		lastSent time.Time
		timer    *time.Timer
		flush    <-chan time.Time
	)

	broadcast := func(event Event) {
		raw := encode(event)
		if raw == nil {
			return
		}
		for ch := range clients {
			send(ch, raw)
		}
	}
	sendSnapshot := func(now time.Time) {
		lastSent = now
		broadcast(Event{Type: EventUpdated, Data: *latest})
	}

	for {
		select {
		case <-b.stopCh:
			if timer != nil {
				timer.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			// New clients start from the current list.
			if latest != nil {
				if raw := encode(Event{Type: EventUpdated, Data: *latest}); raw != nil {
					send(ch, raw)
				}
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case req := <-b.changeCh:
			broadcast(Event{Type: "task." + req.op, Data: req.snap})

			snap := req.snap
			latest = &snap
			if flush != nil {
				continue
			}
			now := time.Now()
			if wait := b.snapshotMin - now.Sub(lastSent); wait > 0 {
				if timer == nil {
					timer = time.NewTimer(wait)
				} else {
					timer.Reset(wait)
				}
				flush = timer.C
				continue
			}
			sendSnapshot(now)

		case now := <-flush:
			flush = nil
			sendSnapshot(now)

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishChange publishes a task.<op> event right away and schedules a
// tasks.updated event carrying snap.
func (b *Broker) PublishChange(op string, snap Snapshot) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- changeReq{op: op, snap: snap}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
