// Package cryptox implements the salted password hashing used by the chat
// server: random salt generation, Argon2id digests and constant-time
// verification. The stored entry for an account is the (salt, digest) pair;
// plaintext passwords never leave this package's callers.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/gochat/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the number of random bytes generated for a new account's salt.
const SaltSize = 16

// Argon2id cost parameters. Every digest in the store uses the same profile,
// so there is no per-entry parameter encoding.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	digestLength = 32
)

// GenerateSalt returns a fresh random salt for a new account.
func GenerateSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// Hash derives the digest stored for a password and salt.
func Hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, digestLength)
}

// Verify reports whether password matches the stored salt/digest pair.
// The comparison is constant-time.
func Verify(password string, salt, digest []byte) bool {
	candidate := Hash(password, salt)
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}
