package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user record in the credential store, keyed by email.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the view of a user that is safe to return to clients.
type PublicUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Public returns the client-facing view of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{Name: u.Name, Email: u.Email, Role: u.Role}
}
