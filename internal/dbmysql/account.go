package dbmysql

import (
	"time"
)

// Account holds a user's coin balance. The balance is only ever mutated
// inside the send transaction (or at registration) with the row locked, and
// must never go negative.
type Account struct {
	UserID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	Coins     int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
