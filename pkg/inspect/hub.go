package inspect

import (
	"sync"

	"github.com/ima-dev/ima/pkg/ima"
)

// hub fans tick snapshots out to websocket subscribers. Slow subscribers
// miss snapshots instead of blocking the engine.
type hub struct {
	mu   sync.Mutex
	subs map[chan ima.Stats]struct{}
	size int
}

func newHub(buffer int) *hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &hub{subs: make(map[chan ima.Stats]struct{}), size: buffer}
}

func (h *hub) subscribe() chan ima.Stats {
	ch := make(chan ima.Stats, h.size)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan ima.Stats) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (h *hub) publish(s ima.Stats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
