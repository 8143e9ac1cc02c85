package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gochat/internal/common"
	"github.com/dmitrijs2005/gochat/internal/cryptox"
)

// Service implements account registration and credential checks on top of
// a Repository. Salting and digest generation live here; repositories only
// store what they are given.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account for userName. Length and confirmation checks
// belong to the caller; Register only guards against duplicates.
func (s *Service) Register(ctx context.Context, userName, password string) (*User, error) {

	salt := cryptox.GenerateSalt()

	user := &User{
		UserName: userName,
		Salt:     salt,
		Digest:   cryptox.Hash(password, salt),
	}

	user, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, common.ErrUsernameTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate verifies userName's password against the stored salt/digest
// pair. It returns common.ErrorNotFound for an unknown username and
// common.ErrorUnauthorized for a wrong password, so the caller can report
// the two cases separately.
func (s *Service) Authenticate(ctx context.Context, userName, password string) (*User, error) {

	user, err := s.repo.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if !cryptox.Verify(password, user.Salt, user.Digest) {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// Exists reports whether an account for userName is stored.
func (s *Service) Exists(ctx context.Context, userName string) (bool, error) {
	return s.repo.Exists(ctx, userName)
}
