package dbmysql

import (
	"time"
)

// QuotaClass is the per-day counter bucket a message counts against.
type QuotaClass string

const (
	QuotaClassText  QuotaClass = "text"
	QuotaClassMedia QuotaClass = "media"
)

// DailyQuota counts accepted messages per user, calendar day and class.
// Rows are upserted and re-checked under a row lock inside the send
// transaction; any connection-local copy of the count is advisory only.
type DailyQuota struct {
	UserID    uint64     `gorm:"primaryKey;autoIncrement:false"`
	Day       string     `gorm:"primaryKey;size:10"` // UTC, YYYY-MM-DD
	Class     QuotaClass `gorm:"primaryKey;size:8"`
	Count     int64      `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// QuotaDay formats t as the UTC calendar-day key used by DailyQuota.
func QuotaDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
