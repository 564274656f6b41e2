package realtime

import (
	"sync"

	"planboard/internal/models"
)

// EventWriter is the piece of a connection the hub needs; tests supply fakes.
type EventWriter interface {
	WriteEvent(ev models.AlertEvent) error
}

// AlertHub fans alert events out to every live connection of a user. A user
// may hold several connections (multiple tabs); each receives every event in
// the order the server emitted it.
type AlertHub struct {
	mu    sync.RWMutex
	users map[int64]map[EventWriter]struct{}
}

func NewAlertHub() *AlertHub {
	return &AlertHub{
		users: make(map[int64]map[EventWriter]struct{}),
	}
}

func (h *AlertHub) Register(userID int64, w EventWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[EventWriter]struct{})
	}
	h.users[userID][w] = struct{}{}
}

func (h *AlertHub) Unregister(userID int64, w EventWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[userID]; ok {
		delete(conns, w)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// Publish delivers the event to every connection the user currently holds
// and reports how many writes succeeded. A dead connection is the read
// loop's problem; publish never blocks on it beyond the write deadline.
func (h *AlertHub) Publish(userID int64, ev models.AlertEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for w := range h.users[userID] {
		if err := w.WriteEvent(ev); err == nil {
			delivered++
		}
	}
	return delivered
}

// Connected reports whether the user has at least one live connection.
func (h *AlertHub) Connected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}
