package user

import (
	"context"
	"fmt"

	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/config"
	"vergissmeinnicht/internal/dbmysql"
)

// Service covers registration and login. Registration provisions the coin
// account alongside the user row so the first send always finds a balance.
type Service interface {
	Register(ctx context.Context, handle, password string) (*dbmysql.User, error)
	Login(ctx context.Context, handle, password string) (string, error)
}

type userService struct {
	repo          Repository
	startingCoins int64
}

func NewService(repo Repository, cfg *config.Config) Service {
	return &userService{
		repo:          repo,
		startingCoins: cfg.Chat.StartingCoins,
	}
}

func (s *userService) Register(ctx context.Context, handle, password string) (*dbmysql.User, error) {
	if err := common.ValidateHandle(handle); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := common.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &dbmysql.User{Handle: handle, PasswordHash: hash}
	if err := s.repo.CreateWithAccount(ctx, u, s.startingCoins); err != nil {
		return nil, err
	}
	return u, nil
}

// Login returns a signed token for the websocket and HTTP APIs. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, handle, password string) (string, error) {
	u, err := s.repo.ByHandle(ctx, handle)
	if err != nil {
		return "", common.ErrUnauthenticated
	}
	if err := common.CheckPassword(password, u.PasswordHash); err != nil {
		return "", common.ErrUnauthenticated
	}
	return common.GenerateToken(u.UserID, u.Handle)
}
