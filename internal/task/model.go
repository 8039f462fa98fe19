package task

import (
	"errors"
	"time"

	"github.com/taskloop/taskloop/internal/authz"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

var (
	// ErrNotFound aliases the authz sentinel so an absent task and a task
	// owned by someone else produce the same error value.
	ErrNotFound = authz.ErrNotFound

	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title exceeds 200 characters")
	ErrDescriptionTooLong = errors.New("description exceeds 1000 characters")
)

// Task represents a todo item owned by exactly one user.
type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Owner implements authz.Owned.
func (t Task) Owner() string { return t.OwnerID }
