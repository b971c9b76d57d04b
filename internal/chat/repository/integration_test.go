//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/config"
	"vergissmeinnicht/internal/dbmysql"
)

// These tests need a real MySQL because the serialization they assert lives
// in row locks: run with `go test -tags integration ./internal/chat/repository`
// against the docker-compose database (DB_* env vars as in config).

func setupIntegrationDB(t *testing.T) *gorm.DB {
	cfg := config.LoadConfig()
	db, err := dbmysql.NewMySQL(cfg)
	require.NoError(t, err, "Failed to connect to MySQL - ensure docker-compose is running")
	require.NoError(t, dbmysql.Migrate(db))
	return db
}

// seedConversation provisions two fresh users with an activated conversation
// and funded accounts. Ids are derived from the clock so runs don't collide.
func seedConversation(t *testing.T, db *gorm.DB, coins int64) (string, uint64, uint64) {
	base := uint64(time.Now().UnixNano())
	user1, user2 := base, base+1

	store := NewStore(db)
	conv, err := store.CreateConversation(context.Background(), user1, user2)
	require.NoError(t, err)
	require.NoError(t, store.ActivateConversation(context.Background(), conv.ID, user1))

	for _, id := range []uint64{user1, user2} {
		require.NoError(t, db.Create(&dbmysql.Account{UserID: id, Coins: coins}).Error)
	}
	return conv.ID, user1, user2
}

func TestCreateMessage_ConcurrentSendsRespectQuota(t *testing.T) {
	db := setupIntegrationDB(t)
	convID, sender, _ := seedConversation(t, db, 1000)
	store := NewStore(db)

	const limit = int64(5)
	attempts := int(limit) + 5

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := &dbmysql.Message{
				ConversationID: convID,
				SenderID:       sender,
				Category:       dbmysql.CategoryText,
				Ciphertext:     "opaque",
			}
			_, _, err := store.CreateMessage(context.Background(), msg, Effect{
				Credit:     1,
				QuotaClass: dbmysql.QuotaClassText,
				QuotaLimit: limit,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var accepted, rejected int64
	for err := range results {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, common.ErrQuotaExceededText):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, limit, accepted, "exactly the quota limit must commit")
	assert.Equal(t, int64(attempts)-limit, rejected)

	count, err := store.QuotaCount(context.Background(), sender, dbmysql.QuotaDay(time.Now()), dbmysql.QuotaClassText)
	require.NoError(t, err)
	assert.Equal(t, limit, count, "counter must match accepted sends")

	var stored int64
	require.NoError(t, db.Model(&dbmysql.Message{}).Where("conversation_id = ?", convID).Count(&stored).Error)
	assert.Equal(t, limit, stored, "one row per accepted send")
}

func TestCreateMessage_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	db := setupIntegrationDB(t)
	const startingCoins = int64(5)
	convID, sender, _ := seedConversation(t, db, startingCoins)
	store := NewStore(db)

	attempts := int(startingCoins) + 5

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := &dbmysql.Message{
				ConversationID: convID,
				SenderID:       sender,
				Category:       dbmysql.CategoryPaidMedia,
				MediaURL:       "http://localhost:8080/media/abc",
			}
			_, _, err := store.CreateMessage(context.Background(), msg, Effect{
				Debit:      1,
				QuotaClass: dbmysql.QuotaClassMedia,
				QuotaLimit: 1000,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var accepted, rejected int64
	for err := range results {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, common.ErrInsufficientFunds):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, startingCoins, accepted, "debits stop exactly when the balance is spent")
	assert.Equal(t, int64(attempts)-startingCoins, rejected)

	balance, err := store.Balance(context.Background(), sender)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance, "balance must never go negative")
}

func TestCreateConversation_MirroredConcurrentCreates(t *testing.T) {
	db := setupIntegrationDB(t)
	store := NewStore(db)

	base := uint64(time.Now().UnixNano())
	a, b := base, base+1

	var wg sync.WaitGroup
	ids := make(chan string, 2)
	for _, pair := range [][2]uint64{{a, b}, {b, a}} {
		wg.Add(1)
		go func(u1, u2 uint64) {
			defer wg.Done()
			conv, err := store.CreateConversation(context.Background(), u1, u2)
			require.NoError(t, err)
			ids <- conv.ID
		}(pair[0], pair[1])
	}
	wg.Wait()
	close(ids)

	first := <-ids
	second := <-ids
	assert.Equal(t, first, second, "mirrored creates must resolve to one conversation")

	var count int64
	require.NoError(t, db.Model(&dbmysql.Conversation{}).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", a, b, b, a).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
