package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"planboard/internal/repositories"
	"planboard/internal/services"
)

type IntegrationsHandler struct {
	users    repositories.UserRepository
	telegram *services.TelegramService
}

func NewIntegrationsHandler(users repositories.UserRepository, telegram *services.TelegramService) *IntegrationsHandler {
	return &IntegrationsHandler{users: users, telegram: telegram}
}

// POST /integrations/telegram/link — binds the caller's account to a Telegram
// chat so deadline and assignment alerts are mirrored there.
func (h *IntegrationsHandler) LinkTelegram(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	var req struct {
		ChatID int64 `json:"chat_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.SetTelegramChatID(c.Request.Context(), userID, req.ChatID); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Error("telegram link failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link telegram"})
		return
	}

	if err := h.telegram.SendMessage(req.ChatID, "Planboard linked: you will receive deadline alerts here."); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("telegram link confirmation failed")
	}

	c.JSON(http.StatusOK, gin.H{"linked": true})
}
