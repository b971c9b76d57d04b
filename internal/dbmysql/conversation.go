package dbmysql

import (
	"time"
)

// Conversation is a two-party messaging context. A pair of users has at most
// one conversation regardless of who initiated it; lookups must check both
// column orderings. Messaging is disabled until Activated is set.
type Conversation struct {
	ID        string `gorm:"primaryKey;size:36"`
	User1ID   uint64 `gorm:"uniqueIndex:idx_conversation_pair;not null"`
	User2ID   uint64 `gorm:"uniqueIndex:idx_conversation_pair;not null"`
	Activated bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID uint64) bool {
	return c.User1ID == userID || c.User2ID == userID
}
