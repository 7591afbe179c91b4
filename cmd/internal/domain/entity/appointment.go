package entity

import "time"

const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Statuses lists the known appointment statuses in display order.
var Statuses = []string{StatusScheduled, StatusCompleted, StatusCancelled}

type Appointment struct {
	ID              int       `gorm:"primaryKey"`
	UserID          int       `gorm:"not null;index"` // References: users(id)
	PatientID       int       `gorm:"not null;index"` // References: patients(id)
	AppointmentDate time.Time `gorm:"not null"`
	Reason          *string
	Status          string `gorm:"not null;default:Scheduled"`
	CreatedAt       time.Time

	// Relations. Patient deletion is blocked by the service-level guard;
	// the RESTRICT constraint backs that up at the schema level.
	Owner   User    `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Patient Patient `gorm:"foreignKey:PatientID;references:ID;constraint:OnDelete:RESTRICT"`
}
