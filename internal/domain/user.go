package domain

import (
	"strings"
	"time"
)

type User struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
	Avatar   string    `json:"avatar"`
	Date     time.Time `json:"date"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"min=6" msg:"Please enter a password with 6 or more characters"`
}

// Sanitize trims the free-text fields before validation, so a blank name
// fails "required" instead of being stored empty. Passwords are kept as sent.
func (r *RegisterRequest) Sanitize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

func (r *LoginRequest) Sanitize() {
	r.Email = strings.TrimSpace(r.Email)
}

type TokenResponse struct {
	Token string `json:"token"`
}
