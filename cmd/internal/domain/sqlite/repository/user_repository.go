package repository

import (
	"errors"
	"time"

	"clinicdesk/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(id int) (*entity.User, error) {
	var user entity.User
	err := u.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *DefaultUserRepository) FindByUsername(username string) (*entity.User, error) {
	var user entity.User
	err := u.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether any user already holds the given
// username or email.
func (u *DefaultUserRepository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var count int64
	err := u.db.Model(&entity.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// TakenByOther reports whether a different user already holds the given
// username or email.
func (u *DefaultUserRepository) TakenByOther(id int, username, email string) (bool, error) {
	var count int64
	err := u.db.Model(&entity.User{}).
		Where("id <> ?", id).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (u *DefaultUserRepository) Save(user *entity.User) error {
	return u.db.Save(user).Error
}

func (u *DefaultUserRepository) UpdatePassword(id int, hash string, changedAt time.Time) error {
	return u.db.Model(&entity.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password":            hash,
			"password_changed_at": changedAt,
		}).Error
}

func (u *DefaultUserRepository) UpdateProfile(id int, username, email string) (int64, error) {
	res := u.db.Model(&entity.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"username": username,
			"email":    email,
		})
	return res.RowsAffected, res.Error
}

// Delete removes the user row. Owned patients and appointments go with it
// through the ON DELETE CASCADE constraints.
func (u *DefaultUserRepository) Delete(id int) (int64, error) {
	res := u.db.Delete(&entity.User{}, id)
	return res.RowsAffected, res.Error
}
