package mockserver

import (
	"sync"

	"github.com/h0rv/feedboard/internal/domain"
)

// Hub fans published requests out to the streams of their landlord.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan domain.Request]struct{}
	buf  int
}

// NewHub creates a hub whose subscriber channels hold buf pending requests.
func NewHub(buf int) *Hub {
	return &Hub{
		subs: make(map[string]map[chan domain.Request]struct{}),
		buf:  buf,
	}
}

// Subscribe registers a stream for landlordID. The returned func
// unregisters it and must be called exactly once.
func (h *Hub) Subscribe(landlordID string) (<-chan domain.Request, func()) {
	ch := make(chan domain.Request, h.buf)

	h.mu.Lock()
	set, ok := h.subs[landlordID]
	if !ok {
		set = make(map[chan domain.Request]struct{})
		h.subs[landlordID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, landlordID)
		}
	}
}

// Publish delivers req to every stream of req.LandlordID. Slow streams whose
// buffer is full miss the request. It returns the delivered and dropped counts.
func (h *Hub) Publish(req domain.Request) (delivered, dropped int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[req.LandlordID] {
		select {
		case ch <- req:
			delivered++
		default:
			dropped++
		}
	}
	return delivered, dropped
}

// Subscribers returns the number of open streams for landlordID.
func (h *Hub) Subscribers(landlordID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[landlordID])
}
