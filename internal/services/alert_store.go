package services

import (
	"sync"

	"planboard/internal/models"
)

// AlertStore is the single owner of the per-user in-app alert list. The
// deadline scan appends, realtime pushes prepend, and the UI removes by
// index; nothing else mutates the list.
type AlertStore struct {
	mu     sync.Mutex
	alerts map[int64][]models.Alert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{alerts: make(map[int64][]models.Alert)}
}

func (s *AlertStore) Append(userID int64, a models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[userID] = append(s.alerts[userID], a)
}

func (s *AlertStore) Prepend(userID int64, a models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[userID] = append([]models.Alert{a}, s.alerts[userID]...)
}

// RemoveAt drops the alert at the given position. Reports false when the
// index is out of range.
func (s *AlertStore) RemoveAt(userID int64, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.alerts[userID]
	if index < 0 || index >= len(list) {
		return false
	}
	s.alerts[userID] = append(list[:index], list[index+1:]...)
	return true
}

// List returns a copy of the user's alerts in display order.
func (s *AlertStore) List(userID int64) []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.alerts[userID]
	out := make([]models.Alert, len(list))
	copy(out, list)
	return out
}

// Clear drops all alerts for a user, used on session teardown.
func (s *AlertStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.alerts, userID)
}
