package repository

import (
	"errors"

	"clinicdesk/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

type DefaultSessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *DefaultSessionRepository {
	return &DefaultSessionRepository{db: db}
}

func (s *DefaultSessionRepository) FindByID(id string) (*entity.Session, error) {
	var sess entity.Session
	err := s.db.Where("id = ?", id).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *DefaultSessionRepository) Save(sess *entity.Session) error {
	return s.db.Save(sess).Error
}

func (s *DefaultSessionRepository) Delete(id string) error {
	return s.db.Where("id = ?", id).Delete(&entity.Session{}).Error
}

// DeleteForUser drops every session of a user, for account deletion.
func (s *DefaultSessionRepository) DeleteForUser(userID int) error {
	return s.db.Where("user_id = ?", userID).Delete(&entity.Session{}).Error
}

func (s *DefaultSessionRepository) UpdateUsername(id, username string) error {
	return s.db.Model(&entity.Session{}).
		Where("id = ?", id).
		Update("username", username).Error
}

// SetFlash writes the one-shot message slot. Passing nil clears a side.
func (s *DefaultSessionRepository) SetFlash(id string, success, failure *string) error {
	return s.db.Model(&entity.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"flash_success": success,
			"flash_error":   failure,
		}).Error
}

// PopFlash clears the flash slot only while it still holds the given
// values, and reports whether this call did the clearing. A lost
// conditional update means another request already rendered the message.
func (s *DefaultSessionRepository) PopFlash(id string, success, failure *string) (bool, error) {
	res := s.db.Model(&entity.Session{}).
		Where("id = ? AND flash_success IS ? AND flash_error IS ?", id, success, failure).
		Updates(map[string]any{
			"flash_success": nil,
			"flash_error":   nil,
		})
	return res.RowsAffected > 0, res.Error
}
