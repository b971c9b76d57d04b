// Package repository owns all relational state touched by the chat core and
// the single transaction that makes a send atomic.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/dbmysql"
)

// Effect is the economic outcome CreateMessage must apply atomically with
// the insert. Exactly one of Debit/Credit is non-zero for text and paid
// media; both are zero for plain media.
type Effect struct {
	Debit      int64
	Credit     int64
	QuotaClass dbmysql.QuotaClass
	QuotaLimit int64
}

// Store is the persistence contract of the chat core. CreateMessage is the
// atomic unit: membership, quota, ledger and insert commit together or not
// at all.
type Store interface {
	CreateConversation(ctx context.Context, user1, user2 uint64) (*dbmysql.Conversation, error)
	ConversationByID(ctx context.Context, id string) (*dbmysql.Conversation, error)
	ConversationBetween(ctx context.Context, a, b uint64) (*dbmysql.Conversation, error)
	ActivateConversation(ctx context.Context, id string, userID uint64) error
	ConversationsOf(ctx context.Context, userID uint64) ([]*dbmysql.Conversation, error)

	// CreateMessage runs the send transaction and returns the stored message
	// and the sender's post-transaction balance.
	CreateMessage(ctx context.Context, msg *dbmysql.Message, effect Effect) (*dbmysql.Message, int64, error)

	// MessagesPage returns page (1-based) of a conversation's messages,
	// newest first, and whether older pages remain.
	MessagesPage(ctx context.Context, conversationID string, page, pageSize int) ([]*dbmysql.Message, bool, error)

	// QuotaCount reads the authoritative counter for cache warming. Advisory
	// only; enforcement happens inside CreateMessage.
	QuotaCount(ctx context.Context, userID uint64, day string, class dbmysql.QuotaClass) (int64, error)

	Balance(ctx context.Context, userID uint64) (int64, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateConversation(ctx context.Context, user1, user2 uint64) (*dbmysql.Conversation, error) {
	if user1 == user2 {
		return nil, fmt.Errorf("%w: conversation needs two distinct participants", common.ErrForbidden)
	}

	// A pair has at most one conversation regardless of ordering, so return
	// the existing one instead of inserting a mirror row.
	if existing, err := s.ConversationBetween(ctx, user1, user2); err == nil {
		return existing, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	// Stored lower id first so idx_conversation_pair collides for mirrored
	// concurrent creates; reads still check both orderings.
	if user1 > user2 {
		user1, user2 = user2, user1
	}
	conv := &dbmysql.Conversation{
		ID:      uuid.NewString(),
		User1ID: user1,
		User2ID: user2,
	}
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		// lost the race with a concurrent create for the same pair
		if existing, lookupErr := s.ConversationBetween(ctx, user1, user2); lookupErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (s *gormStore) ConversationByID(ctx context.Context, id string) (*dbmysql.Conversation, error) {
	var conv dbmysql.Conversation
	err := s.db.WithContext(ctx).First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: conversation %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *gormStore) ConversationBetween(ctx context.Context, a, b uint64) (*dbmysql.Conversation, error) {
	var conv dbmysql.Conversation
	err := s.db.WithContext(ctx).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", a, b, b, a).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no conversation between %d and %d", common.ErrNotFound, a, b)
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *gormStore) ActivateConversation(ctx context.Context, id string, userID uint64) error {
	conv, err := s.ConversationByID(ctx, id)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return fmt.Errorf("%w: user %d is not a participant", common.ErrForbidden, userID)
	}
	return s.db.WithContext(ctx).
		Model(&dbmysql.Conversation{}).
		Where("id = ?", id).
		Update("activated", true).Error
}

func (s *gormStore) ConversationsOf(ctx context.Context, userID uint64) ([]*dbmysql.Conversation, error) {
	var convs []*dbmysql.Conversation
	err := s.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&convs).Error
	return convs, err
}

// CreateMessage is the atomic send unit. Inside one transaction it locks the
// conversation row and checks activation and membership, locks and bumps the
// sender's daily quota row, locks the sender's account and applies the
// ledger effect, then inserts the message. Visibility order of messages is
// the commit order of these transactions.
func (s *gormStore) CreateMessage(ctx context.Context, msg *dbmysql.Message, effect Effect) (*dbmysql.Message, int64, error) {
	var balance int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv dbmysql.Conversation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&conv, "id = ?", msg.ConversationID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: conversation %s", common.ErrNotFound, msg.ConversationID)
		}
		if err != nil {
			return err
		}

		if !conv.Activated {
			return fmt.Errorf("%w: conversation not activated", common.ErrForbidden)
		}
		if !conv.HasParticipant(msg.SenderID) {
			return fmt.Errorf("%w: sender %d is not a participant", common.ErrForbidden, msg.SenderID)
		}

		now := time.Now().UTC()
		if err := s.reserveQuota(tx, msg.SenderID, dbmysql.QuotaDay(now), effect); err != nil {
			return err
		}

		newBalance, err := s.applyLedger(tx, msg.SenderID, effect)
		if err != nil {
			return err
		}
		balance = newBalance

		msg.SentAt = now
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return msg, balance, nil
}

// reserveQuota upserts the (user, day, class) counter row, re-reads it under
// a row lock and increments it, failing when the pre-increment count has
// already reached the limit. The lock serializes concurrent senders so two
// in-flight sends cannot both pass a stale check.
func (s *gormStore) reserveQuota(tx *gorm.DB, userID uint64, day string, effect Effect) error {
	seed := &dbmysql.DailyQuota{UserID: userID, Day: day, Class: effect.QuotaClass, Count: 0}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return fmt.Errorf("seed quota row: %w", err)
	}

	var quota dbmysql.DailyQuota
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND day = ? AND class = ?", userID, day, effect.QuotaClass).
		First(&quota).Error
	if err != nil {
		return fmt.Errorf("lock quota row: %w", err)
	}

	if quota.Count >= effect.QuotaLimit {
		if effect.QuotaClass == dbmysql.QuotaClassText {
			return common.ErrQuotaExceededText
		}
		return common.ErrQuotaExceededMedia
	}

	return tx.Model(&dbmysql.DailyQuota{}).
		Where("user_id = ? AND day = ? AND class = ?", userID, day, effect.QuotaClass).
		Update("count", gorm.Expr("count + ?", 1)).Error
}

// applyLedger locks the sender's account row and applies the effect. A debit
// larger than the balance fails the whole transaction; nothing is recorded.
func (s *gormStore) applyLedger(tx *gorm.DB, userID uint64, effect Effect) (int64, error) {
	var account dbmysql.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: account %d", common.ErrNotFound, userID)
	}
	if err != nil {
		return 0, err
	}

	if effect.Debit == 0 && effect.Credit == 0 {
		return account.Coins, nil
	}

	if effect.Debit > account.Coins {
		return 0, fmt.Errorf("%w: price %d, balance %d", common.ErrInsufficientFunds, effect.Debit, account.Coins)
	}

	newBalance := account.Coins - effect.Debit + effect.Credit
	err = tx.Model(&dbmysql.Account{}).
		Where("user_id = ?", userID).
		Update("coins", newBalance).Error
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (s *gormStore) MessagesPage(ctx context.Context, conversationID string, page, pageSize int) ([]*dbmysql.Message, bool, error) {
	if page < 1 {
		page = 1
	}

	var messages []*dbmysql.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize + 1). // one extra row decides has_more
		Find(&messages).Error
	if err != nil {
		return nil, false, err
	}

	hasMore := len(messages) > pageSize
	if hasMore {
		messages = messages[:pageSize]
	}
	return messages, hasMore, nil
}

func (s *gormStore) QuotaCount(ctx context.Context, userID uint64, day string, class dbmysql.QuotaClass) (int64, error) {
	var quota dbmysql.DailyQuota
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND day = ? AND class = ?", userID, day, class).
		First(&quota).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return quota.Count, nil
}

func (s *gormStore) Balance(ctx context.Context, userID uint64) (int64, error) {
	var account dbmysql.Account
	err := s.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: account %d", common.ErrNotFound, userID)
	}
	if err != nil {
		return 0, err
	}
	return account.Coins, nil
}
