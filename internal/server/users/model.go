package users

import "time"

// User is one password-store entry: the salt and Argon2id digest for a
// registered username. Entries are immutable once created.
type User struct {
	ID        string
	UserName  string
	Salt      []byte
	Digest    []byte
	CreatedAt time.Time
}
