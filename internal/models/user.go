package models

import "time"

type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	AvatarURL      string    `json:"avatar_url"`
	JoinedAt       time.Time `json:"joined_at"`
	PasswordHash   string    `json:"-"`
	TelegramChatID *int64    `json:"-"` // set once the user links the bot
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
