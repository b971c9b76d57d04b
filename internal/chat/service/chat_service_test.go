package service

import (
	"context"
	"encoding/base64"
	"errors"
	"html"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vergissmeinnicht/internal/chat/repository"
	"vergissmeinnicht/internal/chat/service/mocks"
	"vergissmeinnicht/internal/chat/validator"
	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/config"
	"vergissmeinnicht/internal/dbmysql"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			MediaBaseURL: "http://localhost:8080/media/",
		},
		Chat: config.ChatConfig{
			TextDailyLimit:  100,
			MediaDailyLimit: 100,
			TextReward:      1,
			MaxMediaBytes:   5 * 1024 * 1024,
			HistoryPageSize: 20,
		},
	}
}

func newTestService(t *testing.T) (ChatService, *mocks.MockStore, *mocks.MockMediaStore) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	media := mocks.NewMockMediaStore(ctrl)
	cfg := testConfig()
	svc := NewChatService(store, media, validator.New(cfg.Chat.MaxMediaBytes), cfg)
	return svc, store, media
}

func gifDataURI(blob []byte) string {
	return "data:image/gif;base64," + base64.StdEncoding.EncodeToString(blob)
}

func TestSend_TextCreditsReward(t *testing.T) {
	svc, store, _ := newTestService(t)

	sentAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store.EXPECT().
		CreateMessage(gomock.Any(), gomock.Any(), repository.Effect{
			Credit:     1,
			QuotaClass: dbmysql.QuotaClassText,
			QuotaLimit: 100,
		}).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message, effect repository.Effect) (*dbmysql.Message, int64, error) {
			assert.Equal(t, dbmysql.CategoryText, msg.Category)
			assert.Equal(t, "ct==", msg.Ciphertext)
			assert.Empty(t, msg.MediaFileID)
			msg.ID = 1
			msg.SentAt = sentAt
			return msg, 11, nil
		}).
		Times(1)

	payload, balance, err := svc.Send(context.Background(), 7, "alice", "conv-1", &validator.Event{
		EncryptedMessage:      "ct==",
		EncryptedKeyRecipient: "kr==",
		EncryptedKeySender:    "ks==",
		IV:                    "iv==",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), balance)
	assert.Equal(t, "alice", payload.Sender)
	assert.Equal(t, "ct==", payload.EncryptedMessage)
	assert.Nil(t, payload.Media)
	assert.Equal(t, sentAt.Format(time.RFC3339Nano), payload.Timestamp)
}

func TestSend_OpaqueFieldsOnlyEscaped(t *testing.T) {
	svc, store, _ := newTestService(t)

	store.EXPECT().
		CreateMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message, effect repository.Effect) (*dbmysql.Message, int64, error) {
			return msg, 1, nil
		})

	ciphertext := `abc+/<>&"123=`
	payload, _, err := svc.Send(context.Background(), 7, "<script>bob</script>", "conv-1", &validator.Event{
		EncryptedMessage:      ciphertext,
		EncryptedKeyRecipient: "k<r>",
		EncryptedKeySender:    "k<s>",
		IV:                    "i<v>",
	})
	require.NoError(t, err)

	// escaping is reversible; the underlying bytes are untouched
	assert.Equal(t, html.EscapeString(ciphertext), payload.EncryptedMessage)
	assert.Equal(t, ciphertext, html.UnescapeString(payload.EncryptedMessage))
	assert.Equal(t, "k<r>", html.UnescapeString(payload.EncryptedKeyRecipient))
	assert.Equal(t, "k<s>", html.UnescapeString(payload.EncryptedKeySender))
	assert.Equal(t, "i<v>", html.UnescapeString(payload.IV))
	assert.Equal(t, html.EscapeString("<script>bob</script>"), payload.Sender)
}

func TestSend_MediaUploadsBlob(t *testing.T) {
	svc, store, media := newTestService(t)
	blob := []byte{1, 2, 3}

	media.EXPECT().
		UploadBlob(gomock.Any(), gomock.Any(), "image/png", "7", blob).
		Return("fid123", nil).
		Times(1)
	store.EXPECT().
		CreateMessage(gomock.Any(), gomock.Any(), repository.Effect{
			QuotaClass: dbmysql.QuotaClassMedia,
			QuotaLimit: 100,
		}).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message, effect repository.Effect) (*dbmysql.Message, int64, error) {
			assert.Equal(t, dbmysql.CategoryMedia, msg.Category)
			assert.Equal(t, "fid123", msg.MediaFileID)
			assert.Equal(t, "http://localhost:8080/media/fid123", msg.MediaURL)
			return msg, 5, nil
		})

	payload, _, err := svc.Send(context.Background(), 7, "alice", "conv-1", &validator.Event{
		Media: "data:image/png;base64," + base64.StdEncoding.EncodeToString(blob),
	})

	require.NoError(t, err)
	require.NotNil(t, payload.Media)
	assert.Equal(t, "http://localhost:8080/media/fid123", *payload.Media)
}

func TestSend_PaidMediaDebitsPrice(t *testing.T) {
	svc, store, media := newTestService(t)

	media.EXPECT().UploadBlob(gomock.Any(), gomock.Any(), "image/gif", "7", gomock.Any()).Return("fid9", nil)
	store.EXPECT().
		CreateMessage(gomock.Any(), gomock.Any(), repository.Effect{
			Debit:      25,
			QuotaClass: dbmysql.QuotaClassMedia,
			QuotaLimit: 100,
		}).
		DoAndReturn(func(ctx context.Context, msg *dbmysql.Message, effect repository.Effect) (*dbmysql.Message, int64, error) {
			return msg, 25, nil
		})

	_, balance, err := svc.Send(context.Background(), 7, "alice", "conv-1", &validator.Event{
		Media:     gifDataURI([]byte{9}),
		MediaType: "gif",
		Price:     25,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(25), balance)
}

func TestSend_FailedTransactionDeletesOrphanBlob(t *testing.T) {
	svc, store, media := newTestService(t)

	media.EXPECT().UploadBlob(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("fid-orphan", nil)
	store.EXPECT().
		CreateMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, int64(0), common.ErrInsufficientFunds)
	media.EXPECT().DeleteBlob(gomock.Any(), "fid-orphan").Return(nil).Times(1)

	_, _, err := svc.Send(context.Background(), 7, "alice", "conv-1", &validator.Event{
		Media:     gifDataURI([]byte{9}),
		MediaType: "gif",
		Price:     1000,
	})

	assert.ErrorIs(t, err, common.ErrInsufficientFunds)
}

func TestSend_RejectedEventTouchesNothing(t *testing.T) {
	svc, _, _ := newTestService(t)
	// no EXPECT on store or media: any call would fail the test

	tests := []struct {
		name  string
		event *validator.Event
		want  error
	}{
		{"empty event", &validator.Event{}, common.ErrEmptyMessage},
		{"octet-stream media", &validator.Event{Media: "data:application/octet-stream;base64,AQID"}, common.ErrBadMedia},
		{"negative price", &validator.Event{Media: gifDataURI([]byte{1}), MediaType: "gif", Price: -1}, common.ErrBadMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Send(context.Background(), 7, "alice", "conv-1", tt.event)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSend_StoreFailureIsReported(t *testing.T) {
	svc, store, _ := newTestService(t)

	store.EXPECT().
		CreateMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, int64(0), errors.New("lock wait timeout"))

	_, _, err := svc.Send(context.Background(), 7, "alice", "conv-1", &validator.Event{EncryptedMessage: "ct"})
	assert.Error(t, err)
	assert.Equal(t, "internal", common.ErrorCode(err))
}

func TestHistory_MembershipEnforced(t *testing.T) {
	svc, store, _ := newTestService(t)

	store.EXPECT().
		ConversationByID(gomock.Any(), "conv-1").
		Return(&dbmysql.Conversation{ID: "conv-1", User1ID: 1, User2ID: 2, Activated: true}, nil)

	_, _, err := svc.History(context.Background(), 7, "conv-1", 1)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestHistory_ReturnsPage(t *testing.T) {
	svc, store, _ := newTestService(t)

	store.EXPECT().
		ConversationByID(gomock.Any(), "conv-1").
		Return(&dbmysql.Conversation{ID: "conv-1", User1ID: 7, User2ID: 8, Activated: true}, nil)
	store.EXPECT().
		MessagesPage(gomock.Any(), "conv-1", 2, 20).
		Return([]*dbmysql.Message{{ID: 5}}, true, nil)

	messages, hasMore, err := svc.History(context.Background(), 7, "conv-1", 2)
	require.NoError(t, err)
	assert.True(t, hasMore)
	assert.Len(t, messages, 1)
}

func TestDailyLimit(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.Equal(t, int64(100), svc.DailyLimit(dbmysql.QuotaClassText))
	assert.Equal(t, int64(100), svc.DailyLimit(dbmysql.QuotaClassMedia))
}
