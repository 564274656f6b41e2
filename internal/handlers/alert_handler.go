package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"planboard/internal/notifier"
	"planboard/internal/realtime"
	"planboard/internal/services"
)

type AlertHandler struct {
	alerts *services.AlertStore
	notif  notifier.Notifier
	hub    *realtime.AlertHub
	cycles *services.NotifyManager
}

func NewAlertHandler(
	alerts *services.AlertStore,
	notif notifier.Notifier,
	hub *realtime.AlertHub,
	cycles *services.NotifyManager,
) *AlertHandler {
	return &AlertHandler{alerts: alerts, notif: notif, hub: hub, cycles: cycles}
}

// GET /alerts
func (h *AlertHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, h.alerts.List(userID))
}

// DELETE /alerts/:index
func (h *AlertHandler) Remove(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}
	if !h.alerts.RemoveAt(userID, index) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no alert at index"})
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /alerts/permission — the session's one-time notification opt-in.
func (h *AlertHandler) RequestPermission(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	h.notif.RequestPermission(userID)
	c.JSON(http.StatusOK, gin.H{"granted": h.notif.Granted(userID)})
}

// GET /ws/alerts — the session's realtime alert channel. Opening it starts
// the user's notification cycle; the cycle stops when the last channel for
// the user closes.
func (h *AlertHandler) Stream(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("websocket upgrade failed")
		// past the hijack the response belongs to the raw conn, which
		// Upgrade has already closed
		if !errors.Is(err, realtime.ErrHandshake) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "websocket upgrade failed"})
		}
		return
	}

	h.hub.Register(userID, conn)
	h.cycles.SessionStarted(userID)
	defer func() {
		h.cycles.SessionEnded(userID)
		h.hub.Unregister(userID, conn)
		_ = conn.Close()
	}()

	if err := conn.WaitClose(); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Debug("alert channel closed")
	}
}
