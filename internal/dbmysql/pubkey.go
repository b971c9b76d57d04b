package dbmysql

import (
	"time"
)

// PublicKey is one opaque public-key blob per user, published for peers.
// The server stores and serves it but never validates or uses it.
type PublicKey struct {
	UserID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	KeyData   string `gorm:"type:text;not null"`
	Algorithm string `gorm:"size:64"` // e.g. RSA-OAEP-2048-SHA256, client-declared
	UpdatedAt time.Time
}
