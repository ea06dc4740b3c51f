package monitor

import (
	"time"

	"github.com/HerbHall/netglance/internal/backend"
)

// Entry is one folded monitoring event with its arrival time.
type Entry struct {
	Kind      backend.Kind            `json:"kind"`
	Timestamp time.Time               `json:"timestamp"`
	Event     backend.MonitoringEvent `json:"event"`
}

// history is a fixed-capacity ring holding the most recent entries,
// newest first. Push and eviction are O(1); the capacity bound is a
// structural invariant, not a cleanup step.
type history struct {
	buf   []Entry
	head  int // index of the newest entry
	count int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = 1
	}
	return &history{buf: make([]Entry, capacity)}
}

// push prepends an entry, evicting the oldest when full. Reports whether
// an eviction happened.
func (h *history) push(e Entry) bool {
	size := len(h.buf)
	h.head = (h.head - 1 + size) % size
	h.buf[h.head] = e

	if h.count < size {
		h.count++
		return false
	}
	return true
}

// snapshot returns the entries newest first.
func (h *history) snapshot() []Entry {
	out := make([]Entry, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

func (h *history) clear() {
	h.count = 0
}

func (h *history) len() int {
	return h.count
}
