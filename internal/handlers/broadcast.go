package handlers

import (
	"sync"

	"github.com/jason-s-yu/chinchon/internal/game"
)

// subscriberBuffer is how many events a slow spectator may lag behind before it starts
// missing them.
const subscriberBuffer = 256

// eventHub fans a game's events out to its spectators. Broadcast is called while the game
// lock is held, so it never blocks: a full subscriber drops the event.
type eventHub struct {
	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	closed bool
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[chan []byte]struct{})}
}

// Broadcast is suitable for ChinchonGame.BroadcastFn.
func (h *eventHub) Broadcast(ev game.GameEvent) {
	data := game.EventBytes(ev)

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
		}
	}
}

// Subscribe returns a channel of encoded events and a func to stop receiving them. The
// channel is closed when the hub closes. ok is false once the hub is closed.
func (h *eventHub) Subscribe() (events <-chan []byte, cancel func(), ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, func() {}, false
	}
	ch := make(chan []byte, subscriberBuffer)
	h.subs[ch] = struct{}{}
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}, true
}

// Close ends every subscription. It is safe to call more than once.
func (h *eventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *eventHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
