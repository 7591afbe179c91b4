package repository

import (
	"time"

	"clinicdesk/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

// ScheduleRow is one entry of the dashboard's daily schedule.
type ScheduleRow struct {
	ID              int
	PatientID       int
	PatientName     string
	AppointmentDate time.Time
	Reason          *string
	Status          string
}

// PastDueRow is a still-Scheduled appointment whose date has passed.
type PastDueRow struct {
	ID              int
	PatientID       int
	PatientName     string
	AppointmentDate time.Time
}

// UpcomingRow is a Scheduled appointment inside the report's 7-day window.
type UpcomingRow struct {
	ID              int
	PatientName     string
	AppointmentDate time.Time
	Reason          *string
}

type statusCount struct {
	Status string
	Count  int
}

type genderCount struct {
	Gender string
	Count  int
}

// DefaultReportRepository holds the read-only queries the dashboard and
// reports pages fan out to. Every query is scoped to one user and has no
// ordering dependency on any other.
type DefaultReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *DefaultReportRepository {
	return &DefaultReportRepository{db: db}
}

func (r *DefaultReportRepository) CountAppointmentsBetween(userID int, from, to time.Time) (int, error) {
	var count int64
	err := r.db.Model(&entity.Appointment{}).
		Where("user_id = ?", userID).
		Where("appointment_date >= ? AND appointment_date < ?", from, to).
		Count(&count).Error
	return int(count), err
}

func (r *DefaultReportRepository) CountAppointmentsBetweenWithStatus(userID int, from, to time.Time, status string) (int, error) {
	var count int64
	err := r.db.Model(&entity.Appointment{}).
		Where("user_id = ? AND status = ?", userID, status).
		Where("appointment_date >= ? AND appointment_date < ?", from, to).
		Count(&count).Error
	return int(count), err
}

func (r *DefaultReportRepository) CountPatients(userID int) (int, error) {
	var count int64
	err := r.db.Model(&entity.Patient{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return int(count), err
}

func (r *DefaultReportRepository) CountPatientsCreatedSince(userID int, since time.Time) (int, error) {
	var count int64
	err := r.db.Model(&entity.Patient{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return int(count), err
}

// CountScheduledFrom counts Scheduled appointments dated from the given
// instant onwards.
func (r *DefaultReportRepository) CountScheduledFrom(userID int, from time.Time) (int, error) {
	var count int64
	err := r.db.Model(&entity.Appointment{}).
		Where("user_id = ? AND status = ?", userID, entity.StatusScheduled).
		Where("appointment_date >= ?", from).
		Count(&count).Error
	return int(count), err
}

func (r *DefaultReportRepository) CountScheduledBetween(userID int, from, to time.Time) (int, error) {
	var count int64
	err := r.db.Model(&entity.Appointment{}).
		Where("user_id = ? AND status = ?", userID, entity.StatusScheduled).
		Where("appointment_date >= ? AND appointment_date < ?", from, to).
		Count(&count).Error
	return int(count), err
}

// ScheduleBetween lists the appointments inside a window in ascending
// order, joined with the patient name.
func (r *DefaultReportRepository) ScheduleBetween(userID int, from, to time.Time, limit int) ([]*ScheduleRow, error) {
	var rows []*ScheduleRow
	err := r.db.Model(&entity.Appointment{}).
		Select("appointments.id, appointments.patient_id, patients.first_name || ' ' || patients.last_name AS patient_name, appointments.appointment_date, appointments.reason, appointments.status").
		Joins("LEFT JOIN patients ON appointments.patient_id = patients.id AND appointments.user_id = patients.user_id").
		Where("appointments.user_id = ?", userID).
		Where("appointments.appointment_date >= ? AND appointments.appointment_date < ?", from, to).
		Order("appointments.appointment_date ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ScheduledDatesBetween returns the dates of Scheduled appointments in a
// window. The caller buckets them into per-day counts.
func (r *DefaultReportRepository) ScheduledDatesBetween(userID int, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.Model(&entity.Appointment{}).
		Where("user_id = ? AND status = ?", userID, entity.StatusScheduled).
		Where("appointment_date >= ? AND appointment_date < ?", from, to).
		Pluck("appointment_date", &dates).Error
	return dates, err
}

// PastDueScheduled lists still-Scheduled appointments dated before the
// given instant, newest first.
func (r *DefaultReportRepository) PastDueScheduled(userID int, before time.Time, limit int) ([]*PastDueRow, error) {
	var rows []*PastDueRow
	err := r.db.Model(&entity.Appointment{}).
		Select("appointments.id, appointments.patient_id, patients.first_name || ' ' || patients.last_name AS patient_name, appointments.appointment_date").
		Joins("JOIN patients ON appointments.patient_id = patients.id AND appointments.user_id = patients.user_id").
		Where("appointments.user_id = ? AND appointments.status = ?", userID, entity.StatusScheduled).
		Where("appointments.appointment_date < ?", before).
		Order("appointments.appointment_date DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// StatusCounts groups the user's appointments by status.
func (r *DefaultReportRepository) StatusCounts(userID int) (map[string]int, error) {
	var rows []statusCount
	err := r.db.Model(&entity.Appointment{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// GenderCounts groups the user's patients by their non-empty gender values.
func (r *DefaultReportRepository) GenderCounts(userID int) (map[string]int, error) {
	var rows []genderCount
	err := r.db.Model(&entity.Patient{}).
		Select("gender, COUNT(*) AS count").
		Where("user_id = ? AND gender IS NOT NULL AND gender <> ''", userID).
		Group("gender").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Gender] = row.Count
	}
	return counts, nil
}

// AppointmentsCreatedSince returns creation timestamps of appointments for
// trend bucketing.
func (r *DefaultReportRepository) AppointmentsCreatedSince(userID int, since time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.Model(&entity.Appointment{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Pluck("created_at", &dates).Error
	return dates, err
}

// PatientsCreatedSince returns creation timestamps of patients for trend
// bucketing.
func (r *DefaultReportRepository) PatientsCreatedSince(userID int, since time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.Model(&entity.Patient{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Pluck("created_at", &dates).Error
	return dates, err
}

// PatientBirthDates returns every patient's date of birth, nil included, so
// the age histogram can count unknowns.
func (r *DefaultReportRepository) PatientBirthDates(userID int) ([]*time.Time, error) {
	var dates []*time.Time
	err := r.db.Model(&entity.Patient{}).
		Where("user_id = ?", userID).
		Pluck("date_of_birth", &dates).Error
	return dates, err
}

// UpcomingScheduled lists Scheduled appointments inside a window, earliest
// first, joined with the patient name.
func (r *DefaultReportRepository) UpcomingScheduled(userID int, from, to time.Time) ([]*UpcomingRow, error) {
	var rows []*UpcomingRow
	err := r.db.Model(&entity.Appointment{}).
		Select("appointments.id, patients.first_name || ' ' || patients.last_name AS patient_name, appointments.appointment_date, appointments.reason").
		Joins("JOIN patients ON appointments.patient_id = patients.id AND appointments.user_id = patients.user_id").
		Where("appointments.user_id = ? AND appointments.status = ?", userID, entity.StatusScheduled).
		Where("appointments.appointment_date >= ? AND appointments.appointment_date < ?", from, to).
		Order("appointments.appointment_date ASC").
		Scan(&rows).Error
	return rows, err
}
