package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"planboard/internal/models"
	"planboard/internal/repositories"
	"planboard/internal/services"
)

type AuthHandler struct {
	users repositories.UserRepository
	auth  services.AuthService
	email services.EmailService
}

func NewAuthHandler(users repositories.UserRepository, auth services.AuthService, email services.EmailService) *AuthHandler {
	return &AuthHandler{users: users, auth: auth, email: email}
}

// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         "member",
		JoinedAt:     time.Now(),
		PasswordHash: hash,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		logrus.WithError(err).Warn("register failed")
		c.JSON(http.StatusConflict, gin.H{"error": "could not register user"})
		return
	}

	// warn but do not fail registration
	if err := h.email.SendWelcomeEmail(user.Email, user.Name); err != nil {
		logrus.WithField("email", user.Email).WithError(err).Warn("welcome email failed")
	}

	c.JSON(http.StatusCreated, user)
}

// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !h.auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
