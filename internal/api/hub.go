package api

import (
	"encoding/json"
	"sync"

	"agora/internal/debuglog"
	"agora/internal/model"
)

// newContentEvent is the payload pushed to subscribers when a refresh
// cycle discovers new posts. The preview is capped by the caller to bound
// payload size.
type newContentEvent struct {
	Count int           `json:"count"`
	Posts []*model.Post `json:"posts"`
}

// Hub fans new-content events out to connected SSE subscribers. Zero
// subscribers is the normal case, not an error.
type Hub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan []byte]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 8)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// NotifyNewContent broadcasts a new-content event. Slow subscribers whose
// buffers are full miss the event rather than blocking the refresh path.
func (h *Hub) NotifyNewContent(count int, preview []*model.Post) {
	payload, err := json.Marshal(newContentEvent{Count: count, Posts: preview})
	if err != nil {
		debuglog.Errorf("encoding new-content event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- payload:
		default:
		}
	}
}

// SubscriberCount reports connected listeners, for diagnostics.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
