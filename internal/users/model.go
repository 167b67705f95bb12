package users

import (
	"strings"
	"time"
)

// User is an account. PasswordHash and the OTP fields never leave the server.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsVerified   bool
	OTPCode      *string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public is the client-facing view of a user.
type Public struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

// Public returns the client view, attaching token when non-empty.
func (u User) Public(token string) Public {
	return Public{ID: u.ID, Name: u.Name, Email: u.Email, Token: token}
}

// NormalizeEmail lower-cases and trims an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
