package repository

import (
	"errors"
	"strings"
	"time"

	"clinicdesk/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

// AppointmentListRow is an appointment joined with its patient's display
// name, as shown on list pages.
type AppointmentListRow struct {
	ID              int
	PatientID       int
	PatientName     string
	AppointmentDate time.Time
	Reason          *string
	Status          string
}

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) FindByID(id, userID int) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.Where("id = ? AND user_id = ?", id, userID).First(&appt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (a *DefaultAppointmentRepository) listScope(userID int, searchPatient, status string) *gorm.DB {
	q := a.db.Model(&entity.Appointment{}).
		Joins("LEFT JOIN patients ON appointments.patient_id = patients.id AND appointments.user_id = patients.user_id").
		Where("appointments.user_id = ?", userID)
	if searchPatient != "" {
		term := "%" + strings.ToLower(searchPatient) + "%"
		q = q.Where("LOWER(patients.first_name) LIKE ? OR LOWER(patients.last_name) LIKE ?", term, term)
	}
	if status != "" {
		q = q.Where("appointments.status = ?", status)
	}
	return q
}

// Search returns one page of the user's appointments, newest first, with
// the patient name joined in.
func (a *DefaultAppointmentRepository) Search(userID int, searchPatient, status string, limit, offset int) ([]*AppointmentListRow, error) {
	var rows []*AppointmentListRow
	err := a.listScope(userID, searchPatient, status).
		Select("appointments.id, appointments.patient_id, patients.first_name || ' ' || patients.last_name AS patient_name, appointments.appointment_date, appointments.reason, appointments.status").
		Order("appointments.appointment_date DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

// AllForUser returns every appointment of the user with patient names
// joined in, newest first. The data export reads through this.
func (a *DefaultAppointmentRepository) AllForUser(userID int) ([]*AppointmentListRow, error) {
	var rows []*AppointmentListRow
	err := a.listScope(userID, "", "").
		Select("appointments.id, appointments.patient_id, patients.first_name || ' ' || patients.last_name AS patient_name, appointments.appointment_date, appointments.reason, appointments.status").
		Order("appointments.appointment_date DESC").
		Scan(&rows).Error
	return rows, err
}

func (a *DefaultAppointmentRepository) CountSearch(userID int, searchPatient, status string) (int64, error) {
	var count int64
	err := a.listScope(userID, searchPatient, status).Count(&count).Error
	return count, err
}

// FindByPatient returns a patient's full appointment history, newest first.
func (a *DefaultAppointmentRepository) FindByPatient(patientID, userID int) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Where("patient_id = ? AND user_id = ?", patientID, userID).
		Order("appointment_date DESC").
		Find(&appts).Error
	return appts, err
}

// CountByPatient counts the appointments still referencing a patient. The
// patient delete guard runs on this.
func (a *DefaultAppointmentRepository) CountByPatient(patientID, userID int) (int64, error) {
	var count int64
	err := a.db.Model(&entity.Appointment{}).
		Where("patient_id = ? AND user_id = ?", patientID, userID).
		Count(&count).Error
	return count, err
}

func (a *DefaultAppointmentRepository) Save(appt *entity.Appointment) error {
	return a.db.Save(appt).Error
}

func (a *DefaultAppointmentRepository) Update(appt *entity.Appointment) (int64, error) {
	res := a.db.Model(&entity.Appointment{}).
		Where("id = ? AND user_id = ?", appt.ID, appt.UserID).
		Updates(map[string]any{
			"patient_id":       appt.PatientID,
			"appointment_date": appt.AppointmentDate,
			"reason":           appt.Reason,
			"status":           appt.Status,
		})
	return res.RowsAffected, res.Error
}

// UpdateStatus flips the status of an owned appointment. Rows already in
// the target status are excluded, so a zero row count covers "not found"
// and "already updated" alike.
func (a *DefaultAppointmentRepository) UpdateStatus(id, userID int, status string) (int64, error) {
	res := a.db.Model(&entity.Appointment{}).
		Where("id = ? AND user_id = ? AND status <> ?", id, userID, status).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (a *DefaultAppointmentRepository) Delete(id, userID int) (int64, error) {
	res := a.db.Where("user_id = ?", userID).Delete(&entity.Appointment{}, id)
	return res.RowsAffected, res.Error
}

func (a *DefaultAppointmentRepository) DeleteAllForUser(userID int) error {
	return a.db.Where("user_id = ?", userID).Delete(&entity.Appointment{}).Error
}
