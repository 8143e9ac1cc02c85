// Package users implements the server-side password store: the account
// model, a Repository interface with Postgres and in-memory backends, and
// the Service that owns registration and credential checks.
package users

import (
	"context"
)

type Repository interface {
	// Create stores a new entry and returns it with its ID assigned.
	// It fails with common.ErrUsernameTaken if the username is present.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByUserName returns the entry for userName, or common.ErrorNotFound.
	GetByUserName(ctx context.Context, userName string) (*User, error)

	// Exists reports whether an entry for userName is stored.
	Exists(ctx context.Context, userName string) (bool, error)
}
