package users

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gochat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRepo returns a fixed error from every method.
type failingRepo struct {
	err error
}

func (f *failingRepo) Create(ctx context.Context, u *User) (*User, error) {
	return nil, f.err
}
func (f *failingRepo) GetByUserName(ctx context.Context, userName string) (*User, error) {
	return nil, f.err
}
func (f *failingRepo) Exists(ctx context.Context, userName string) (bool, error) {
	return false, f.err
}

func TestService_RegisterThenAuthenticate(t *testing.T) {
	s := NewService(NewMemoryRepository())
	ctx := context.Background()

	created, err := s.Register(ctx, "bob", "secret1")
	require.NoError(t, err)
	require.Equal(t, "bob", created.UserName)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.Salt)
	require.NotEmpty(t, created.Digest)

	got, err := s.Authenticate(ctx, "bob", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestService_Authenticate_WrongPassword(t *testing.T) {
	s := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := s.Register(ctx, "bob", "secret1")
	require.NoError(t, err)

	// any single wrong character must fail
	for _, pw := range []string{"secret2", "Secret1", "secret1 ", "ecret1"} {
		_, err := s.Authenticate(ctx, "bob", pw)
		assert.ErrorIs(t, err, common.ErrorUnauthorized, "password %q", pw)
	}
}

func TestService_Authenticate_UnknownUser(t *testing.T) {
	s := NewService(NewMemoryRepository())

	_, err := s.Authenticate(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestService_Register_DuplicateKeepsFirstAccount(t *testing.T) {
	s := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = s.Register(ctx, "alice", "other2")
	require.ErrorIs(t, err, common.ErrUsernameTaken)

	// first account's credentials remain authoritative
	_, err = s.Authenticate(ctx, "alice", "secret1")
	assert.NoError(t, err)
	_, err = s.Authenticate(ctx, "alice", "other2")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestService_Authenticate_RepoError(t *testing.T) {
	s := NewService(&failingRepo{err: errors.New("db down")})

	_, err := s.Authenticate(context.Background(), "bob", "secret1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestService_Exists(t *testing.T) {
	s := NewService(NewMemoryRepository())
	ctx := context.Background()

	ok, err := s.Exists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Register(ctx, "bob", "secret1")
	require.NoError(t, err)

	ok, err = s.Exists(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)
}
