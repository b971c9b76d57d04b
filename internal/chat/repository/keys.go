package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/dbmysql"
)

// KeyRegistry stores one opaque public-key blob per user. Set once or
// overwritten; the server never inspects the key material.
type KeyRegistry interface {
	SetPublicKey(ctx context.Context, userID uint64, keyData, algorithm string) error
	PublicKeyOf(ctx context.Context, userID uint64) (*dbmysql.PublicKey, error)
}

type keyRegistry struct {
	db *gorm.DB
}

func NewKeyRegistry(db *gorm.DB) KeyRegistry {
	return &keyRegistry{db: db}
}

func (r *keyRegistry) SetPublicKey(ctx context.Context, userID uint64, keyData, algorithm string) error {
	record := &dbmysql.PublicKey{UserID: userID, KeyData: keyData, Algorithm: algorithm}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"key_data", "algorithm"}),
		}).
		Create(record).Error
}

func (r *keyRegistry) PublicKeyOf(ctx context.Context, userID uint64) (*dbmysql.PublicKey, error) {
	var record dbmysql.PublicKey
	err := r.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no public key for user %d", common.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
