package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/dbmysql"
)

type Repository interface {
	// CreateWithAccount inserts the user and its coin account as one unit.
	CreateWithAccount(ctx context.Context, u *dbmysql.User, startingCoins int64) error
	ByHandle(ctx context.Context, handle string) (*dbmysql.User, error)
	ByID(ctx context.Context, userID uint64) (*dbmysql.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateWithAccount(ctx context.Context, u *dbmysql.User, startingCoins int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		account := &dbmysql.Account{UserID: u.UserID, Coins: startingCoins}
		if err := tx.Create(account).Error; err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		return nil
	})
}

func (r *userRepo) ByHandle(ctx context.Context, handle string) (*dbmysql.User, error) {
	var u dbmysql.User
	err := r.db.WithContext(ctx).First(&u, "handle = ?", handle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %q", common.ErrNotFound, handle)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ByID(ctx context.Context, userID uint64) (*dbmysql.User, error) {
	var u dbmysql.User
	err := r.db.WithContext(ctx).First(&u, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", common.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
