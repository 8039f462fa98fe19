package identity

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered. The Postgres
	// unique constraint is the final authority; repositories translate the
	// violation into this error so a lost check-then-insert race still
	// surfaces as a duplicate registration.
	ErrEmailTaken = errors.New("email already registered")
)

// User represents a registered account. PasswordHash never leaves the auth
// boundary; handlers serialize users through PublicUser.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the externally visible projection of a User.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public strips credential material from the user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
