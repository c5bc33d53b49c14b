package dto

import (
	"time"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

// RegisterRequest payload for admin-created accounts.
type RegisterRequest struct {
	Name        string      `json:"name"`
	UserName    string      `json:"userName"`
	PhoneNumber string      `json:"phoneNumber"`
	Role        domain.Role `json:"role"`
	Password    string      `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	UserID      string      `json:"userId"`
	AccessToken string      `json:"accessToken"`
	Role        domain.Role `json:"role"`
	TokenType   string      `json:"tokenType"`
	ExpiresAt   time.Time   `json:"expiresAt"`
}

// UserResponse is the wire representation of an account. The password hash
// never leaves the service.
type UserResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	UserName    string      `json:"userName"`
	PhoneNumber string      `json:"phoneNumber"`
	Role        domain.Role `json:"role"`
	IsActive    bool        `json:"isActive"`
	IsSuperuser bool        `json:"isSuperuser"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// LeadOption feeds the public request form's lead selector.
type LeadOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
