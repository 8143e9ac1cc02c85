// Package db selects and wires the password-store backend: Postgres when a
// DSN is configured, an in-memory store otherwise.
package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gochat/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
}
