package identity

import (
	"context"
	"time"
)

// User is an identity reference entity. Accounts are provisioned by an
// external issuer; this service only verifies that a customer exists.
type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserReader provides read access to user accounts.
type UserReader interface {
	// FindByID loads a user by ID.
	// Returns shared.ErrNotFound if no such user exists.
	FindByID(ctx context.Context, id int64) (*User, error)

	// Exists reports whether a user with the given ID exists.
	Exists(ctx context.Context, id int64) (bool, error)
}
