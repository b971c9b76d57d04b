package dbmysql

import (
	"time"
)

// Category classifies a message and drives its quota class and ledger effect.
type Category string

const (
	CategoryText      Category = "text"
	CategoryMedia     Category = "media"
	CategoryPaidMedia Category = "paid_media"
)

// QuotaClass returns the daily-quota class the category counts against.
// Media and paid media share one counter.
func (c Category) QuotaClass() QuotaClass {
	if c == CategoryText {
		return QuotaClassText
	}
	return QuotaClassMedia
}

// HasMedia reports whether the category requires a stored attachment.
func (c Category) HasMedia() bool {
	return c == CategoryMedia || c == CategoryPaidMedia
}

// Message is one sent message. Ciphertext, key wrappers and IV are opaque to
// the server and stored exactly as submitted. SentAt is server-assigned and,
// together with the auto-increment ID, is the pagination sort key.
type Message struct {
	ID                    uint64   `gorm:"primaryKey;autoIncrement"`
	ConversationID        string   `gorm:"index;size:36;not null"`
	SenderID              uint64   `gorm:"index;not null"`
	Category              Category `gorm:"size:16;not null"`
	Ciphertext            string   `gorm:"type:text"`
	EncryptedKeyRecipient string   `gorm:"type:text"`
	EncryptedKeySender    string   `gorm:"type:text"`
	IV                    string   `gorm:"type:text"`
	MediaFileID           string   `gorm:"size:24"`  // GridFS ObjectID hex, empty for text
	MediaURL              string   `gorm:"size:500"` // fetchable URL, empty for text
	SentAt                time.Time
	CreatedAt             time.Time
}
