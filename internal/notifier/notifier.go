// Package notifier is the narrow capability behind OS/browser-level
// notifications. The scan logic only asks "may I?" and "notify"; what that
// means physically is the implementation's business.
package notifier

import (
	"sync"

	"github.com/sirupsen/logrus"

	"planboard/internal/models"
)

type Notifier interface {
	// RequestPermission records the user's opt-in. Asked once at session
	// start; until then Granted is false and Notify is a no-op.
	RequestPermission(userID int64)
	Granted(userID int64) bool
	// Notify raises a local notification. Never returns an error: a failed
	// or suppressed notification degrades to "in-app alert only".
	Notify(userID int64, title, body string)
}

// EventPublisher is the slice of the alert hub the notifier uses.
type EventPublisher interface {
	Publish(userID int64, ev models.AlertEvent) int
}

// HubNotifier pushes notification-kind events through the realtime channel;
// the client surfaces them via the browser Notification API. Permission is a
// per-session grant held in memory, mirroring the browser permission model.
type HubNotifier struct {
	hub EventPublisher

	mu      sync.RWMutex
	granted map[int64]bool
}

func NewHubNotifier(hub EventPublisher) *HubNotifier {
	return &HubNotifier{
		hub:     hub,
		granted: make(map[int64]bool),
	}
}

func (n *HubNotifier) RequestPermission(userID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.granted[userID] = true
}

// RevokePermission clears the grant, typically on session teardown.
func (n *HubNotifier) RevokePermission(userID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.granted, userID)
}

func (n *HubNotifier) Granted(userID int64) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.granted[userID]
}

func (n *HubNotifier) Notify(userID int64, title, body string) {
	if !n.Granted(userID) {
		return
	}
	delivered := n.hub.Publish(userID, models.AlertEvent{
		Kind:      models.EventNotification,
		Message:   body,
		TaskTitle: title,
	})
	if delivered == 0 {
		logrus.WithFields(logrus.Fields{
			"component": "notifier",
			"user_id":   userID,
		}).Debug("no live connection for notification")
	}
}
