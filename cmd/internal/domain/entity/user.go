package entity

import "time"

type User struct {
	ID                int    `gorm:"primaryKey"`
	Username          string `gorm:"uniqueIndex;not null"`
	Email             string `gorm:"uniqueIndex;not null"`
	Password          string `gorm:"not null"` // bcrypt hash
	CreatedAt         time.Time
	PasswordChangedAt *time.Time
}
