package repository

import (
	"errors"
	"strings"

	"clinicdesk/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

type DefaultPatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *DefaultPatientRepository {
	return &DefaultPatientRepository{db: db}
}

func (p *DefaultPatientRepository) FindByID(id, userID int) (*entity.Patient, error) {
	var patient entity.Patient
	err := p.db.Where("id = ? AND user_id = ?", id, userID).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

func (p *DefaultPatientRepository) searchScope(userID int, search string) *gorm.DB {
	q := p.db.Model(&entity.Patient{}).Where("user_id = ?", userID)
	if search != "" {
		term := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", term, term)
	}
	return q
}

// Search returns one page of the user's patients matching the optional
// name filter, ordered by last name then first name.
func (p *DefaultPatientRepository) Search(userID int, search string, limit, offset int) ([]*entity.Patient, error) {
	var patients []*entity.Patient
	err := p.searchScope(userID, search).
		Order("last_name, first_name").
		Limit(limit).
		Offset(offset).
		Find(&patients).Error
	return patients, err
}

func (p *DefaultPatientRepository) CountSearch(userID int, search string) (int64, error) {
	var count int64
	err := p.searchScope(userID, search).Count(&count).Error
	return count, err
}

// FindAllForUser returns every patient of the user, for dropdowns.
func (p *DefaultPatientRepository) FindAllForUser(userID int) ([]*entity.Patient, error) {
	var patients []*entity.Patient
	err := p.db.Where("user_id = ?", userID).
		Order("last_name, first_name").
		Find(&patients).Error
	return patients, err
}

func (p *DefaultPatientRepository) Save(patient *entity.Patient) error {
	return p.db.Save(patient).Error
}

// Update writes all editable columns and reports the affected row count, so
// callers can tell "not found" from a successful write.
func (p *DefaultPatientRepository) Update(patient *entity.Patient) (int64, error) {
	res := p.db.Model(&entity.Patient{}).
		Where("id = ? AND user_id = ?", patient.ID, patient.UserID).
		Updates(map[string]any{
			"first_name":      patient.FirstName,
			"last_name":       patient.LastName,
			"date_of_birth":   patient.DateOfBirth,
			"gender":          patient.Gender,
			"contact_number":  patient.ContactNumber,
			"email":           patient.Email,
			"address":         patient.Address,
			"medical_history": patient.MedicalHistory,
		})
	return res.RowsAffected, res.Error
}

func (p *DefaultPatientRepository) Delete(id, userID int) (int64, error) {
	res := p.db.Where("user_id = ?", userID).Delete(&entity.Patient{}, id)
	return res.RowsAffected, res.Error
}

func (p *DefaultPatientRepository) DeleteAllForUser(userID int) error {
	return p.db.Where("user_id = ?", userID).Delete(&entity.Patient{}).Error
}
