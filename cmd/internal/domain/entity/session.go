package entity

import "time"

// Session is a server-side record of an authenticated identity. The client
// only ever holds the opaque ID (wrapped in a signed cookie).
type Session struct {
	ID           string `gorm:"primaryKey"`
	UserID       int    `gorm:"not null;index"`
	Username     string `gorm:"not null"`
	FlashSuccess *string
	FlashError   *string
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time
}
