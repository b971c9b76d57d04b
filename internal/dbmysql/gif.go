package dbmysql

import (
	"time"
)

// Gif is a purchasable catalog entry. Sending one is a paid-media message
// debited at its price.
type Gif struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	URL       string `gorm:"size:500;not null" json:"url"`
	Price     int64  `gorm:"not null;default:0" json:"price"`
	CreatedAt time.Time `json:"-"`
}

func (Gif) TableName() string {
	return "gifs"
}
