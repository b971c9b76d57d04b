package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	"vergissmeinnicht/internal/chat/repository"
	"vergissmeinnicht/internal/chat/validator"
	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/config"
	"vergissmeinnicht/internal/dbmysql"
)

// MediaStore persists decoded media blobs and hands back the id used to
// build the fetchable URL. Backed by GridFS in production.
type MediaStore interface {
	UploadBlob(ctx context.Context, filename, mimeType, uploaderID string, blob []byte) (string, error)
	DeleteBlob(ctx context.Context, fileID string) error
}

// Broadcast is the public-safe payload fanned out to every subscriber of a
// conversation, the sender included. Opaque fields are HTML-escaped copies
// of what was submitted; nothing else about them is altered.
type Broadcast struct {
	Sender                string  `json:"sender"`
	EncryptedMessage      string  `json:"encrypted_message"`
	Media                 *string `json:"media"`
	EncryptedKeyRecipient string  `json:"encrypted_key_recipient"`
	EncryptedKeySender    string  `json:"encrypted_key_sender"`
	IV                    string  `json:"iv"`
	Timestamp             string  `json:"timestamp"`
}

// ChatService defines the interface exposed to the broker and HTTP layer.
type ChatService interface {
	// Send runs the full pipeline for one inbound event and returns the
	// rendered broadcast plus the sender's post-send balance.
	Send(ctx context.Context, senderID uint64, senderHandle, conversationID string, ev *validator.Event) (*Broadcast, int64, error)

	// History returns one page of a conversation's messages, newest first,
	// after checking the caller is a participant.
	History(ctx context.Context, userID uint64, conversationID string, page int) ([]*dbmysql.Message, bool, error)

	// QuotaUsed reads today's authoritative counter, for warming the
	// broker's advisory cache.
	QuotaUsed(ctx context.Context, userID uint64, class dbmysql.QuotaClass) (int64, error)

	// DailyLimit exposes the configured cap for a class so the broker can
	// fast-fail from its cache.
	DailyLimit(class dbmysql.QuotaClass) int64
}

type chatService struct {
	store        repository.Store
	media        MediaStore
	validator    *validator.Validator
	cfg          *config.ChatConfig
	mediaBaseURL string
}

// Constructor used in DI/wire
func NewChatService(store repository.Store, media MediaStore, v *validator.Validator, cfg *config.Config) ChatService {
	return &chatService{
		store:        store,
		media:        media,
		validator:    v,
		cfg:          &cfg.Chat,
		mediaBaseURL: cfg.Server.MediaBaseURL,
	}
}

func (s *chatService) Send(ctx context.Context, senderID uint64, senderHandle, conversationID string, ev *validator.Event) (*Broadcast, int64, error) {
	if conversationID == "" {
		return nil, 0, fmt.Errorf("%w: conversation id required", common.ErrNotFound)
	}

	res, err := s.validator.Classify(ev)
	if err != nil {
		return nil, 0, err
	}

	msg := &dbmysql.Message{
		ConversationID:        conversationID,
		SenderID:              senderID,
		Category:              res.Category,
		Ciphertext:            ev.EncryptedMessage,
		EncryptedKeyRecipient: ev.EncryptedKeyRecipient,
		EncryptedKeySender:    ev.EncryptedKeySender,
		IV:                    ev.IV,
	}

	// Media blobs are stored before the transaction; on a failed commit the
	// orphan is deleted best-effort so no charged-but-undelivered or
	// stored-but-unrecorded blob survives.
	if res.Category.HasMedia() {
		filename := fmt.Sprintf("msg_%d_%d%s", senderID, time.Now().UnixNano(), res.MediaMIME.Ext())
		fileID, err := s.media.UploadBlob(ctx, filename, res.MediaMIME.String(), fmt.Sprintf("%d", senderID), res.MediaBytes)
		if err != nil {
			return nil, 0, fmt.Errorf("store media: %w", err)
		}
		msg.MediaFileID = fileID
		msg.MediaURL = s.mediaBaseURL + fileID
	}

	saved, balance, err := s.store.CreateMessage(ctx, msg, s.effectFor(res))
	if err != nil {
		if msg.MediaFileID != "" {
			if delErr := s.media.DeleteBlob(ctx, msg.MediaFileID); delErr != nil {
				log.Printf("orphan media %s not deleted: %v", msg.MediaFileID, delErr)
			}
		}
		return nil, 0, err
	}

	return renderBroadcast(senderHandle, saved), balance, nil
}

// effectFor maps a classified event to its quota class and ledger effect:
// text credits the flat reward, paid media debits its price, plain media
// moves no coins.
func (s *chatService) effectFor(res *validator.Result) repository.Effect {
	effect := repository.Effect{
		QuotaClass: res.Category.QuotaClass(),
		QuotaLimit: s.DailyLimit(res.Category.QuotaClass()),
	}
	switch res.Category {
	case dbmysql.CategoryText:
		effect.Credit = s.cfg.TextReward
	case dbmysql.CategoryPaidMedia:
		effect.Debit = res.Price
	}
	return effect
}

func (s *chatService) History(ctx context.Context, userID uint64, conversationID string, page int) ([]*dbmysql.Message, bool, error) {
	conv, err := s.store.ConversationByID(ctx, conversationID)
	if err != nil {
		return nil, false, err
	}
	if !conv.HasParticipant(userID) {
		return nil, false, fmt.Errorf("%w: user %d is not a participant", common.ErrForbidden, userID)
	}
	return s.store.MessagesPage(ctx, conversationID, page, s.cfg.HistoryPageSize)
}

func (s *chatService) QuotaUsed(ctx context.Context, userID uint64, class dbmysql.QuotaClass) (int64, error) {
	return s.store.QuotaCount(ctx, userID, dbmysql.QuotaDay(time.Now()), class)
}

func (s *chatService) DailyLimit(class dbmysql.QuotaClass) int64 {
	if class == dbmysql.QuotaClassText {
		return s.cfg.TextDailyLimit
	}
	return s.cfg.MediaDailyLimit
}

// renderBroadcast builds the payload every subscriber receives. Opaque
// fields are escaped for safe rendering and otherwise untouched; media
// becomes the fetchable URL or JSON null.
func renderBroadcast(senderHandle string, msg *dbmysql.Message) *Broadcast {
	b := &Broadcast{
		Sender:                html.EscapeString(senderHandle),
		EncryptedMessage:      html.EscapeString(msg.Ciphertext),
		EncryptedKeyRecipient: html.EscapeString(msg.EncryptedKeyRecipient),
		EncryptedKeySender:    html.EscapeString(msg.EncryptedKeySender),
		IV:                    html.EscapeString(msg.IV),
		Timestamp:             msg.SentAt.UTC().Format(time.RFC3339Nano),
	}
	if msg.MediaURL != "" {
		url := msg.MediaURL
		b.Media = &url
	}
	return b
}
