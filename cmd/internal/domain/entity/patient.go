package entity

import "time"

type Patient struct {
	ID             int    `gorm:"primaryKey"`
	UserID         int    `gorm:"not null;index"` // References: users(id)
	FirstName      string `gorm:"not null"`
	LastName       string `gorm:"not null"`
	DateOfBirth    *time.Time
	Gender         *string
	ContactNumber  *string
	Email          *string
	Address        *string
	MedicalHistory *string
	CreatedAt      time.Time

	// Relations
	Owner User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}
