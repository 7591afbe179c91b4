package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"clinicdesk/cmd/internal/domain/entity"
	"clinicdesk/cmd/internal/domain/sqlite/repository"
	"clinicdesk/cmd/internal/utils"
	"clinicdesk/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

type SettingsProfileView struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	MemberSince string `json:"member_since"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"required,max=64"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required"`
}

type UpdateInfoRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=80"`
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
}

var (
	errUserGone            = apierror.NewSimple(404, "User not found.")
	errPasswordAllRequired = apierror.NewSimple(400, "All password fields are required.")
	errNewPasswordMismatch = apierror.NewSimple(400, "New passwords do not match.")
	errCurrentPassword     = apierror.NewSimple(400, "Incorrect current password.")
	errNewPasswordTooShort = apierror.NewSimple(400, "New password must be at least 8 characters long.")
)

type DefaultSettingsService struct {
	UserRepo        UserRepository
	PatientRepo     PatientRepository
	AppointmentRepo AppointmentRepository
	Validate        *validator.Validate
}

func NewSettingsService(userRepo UserRepository, patientRepo PatientRepository, apptRepo AppointmentRepository, validate *validator.Validate) *DefaultSettingsService {
	return &DefaultSettingsService{
		UserRepo:        userRepo,
		PatientRepo:     patientRepo,
		AppointmentRepo: apptRepo,
		Validate:        validate,
	}
}

func (s *DefaultSettingsService) Overview(userID int) (*SettingsProfileView, apierror.ErrorResponse) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		log.Errorf("failed to fetch settings profile for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, errUserGone
	}
	return &SettingsProfileView{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		MemberSince: user.CreatedAt.Format(utils.DateLayout),
	}, nil
}

// ChangePassword verifies the current password before replacing the hash.
// The minimum-length rule applies to the new password only; accounts
// registered with a weaker one keep working until they change it.
func (s *DefaultSettingsService) ChangePassword(userID int, req *ChangePasswordRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return errPasswordAllRequired
	}
	if req.NewPassword != req.ConfirmPassword {
		return errNewPasswordMismatch
	}
	if len(req.NewPassword) < 8 {
		return errNewPasswordTooShort
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		log.Errorf("failed to fetch user %d for password change: %v", userID, err)
		return apierror.InternalServerError
	}
	if user == nil {
		return errUserGone
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
		return errCurrentPassword
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		log.Errorf("failed to hash new password for user %d: %v", userID, err)
		return apierror.InternalServerError
	}
	if err := s.UserRepo.UpdatePassword(userID, hash, time.Now()); err != nil {
		log.Errorf("failed to update password for user %d: %v", userID, err)
		return apierror.NewSimple(500, "Failed to update password. Please try again.")
	}
	return nil
}

// UpdateInfo changes the username and email unless another account already
// holds either. The caller refreshes the session's cached username.
func (s *DefaultSettingsService) UpdateInfo(userID int, req *UpdateInfoRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if req.Username == "" || req.Email == "" {
		return apierror.NewSimple(400, "Username and Email are required.")
	}
	if err := s.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	taken, err := s.UserRepo.TakenByOther(userID, req.Username, req.Email)
	if err != nil {
		log.Errorf("failed to check name availability for user %d: %v", userID, err)
		return apierror.InternalServerError
	}
	if taken {
		return errUserExists
	}

	rows, err := s.UserRepo.UpdateProfile(userID, req.Username, req.Email)
	if err != nil {
		log.Errorf("failed to update profile for user %d: %v", userID, err)
		return apierror.NewSimple(500, "Failed to update information. Please try again.")
	}
	if rows == 0 {
		return errUserGone
	}
	return nil
}

// DeleteAccount removes the user row. Patients and appointments go with it
// through the cascading foreign keys.
func (s *DefaultSettingsService) DeleteAccount(userID int) apierror.ErrorResponse {
	rows, err := s.UserRepo.Delete(userID)
	if err != nil {
		log.Errorf("failed to delete account %d: %v", userID, err)
		return apierror.NewSimple(500, "Failed to delete account. Please try again.")
	}
	if rows == 0 {
		return errUserGone
	}
	return nil
}

// FactoryReset wipes the user's appointments, then their patients. The two
// deletes are separate statements; a failure on the first aborts before the
// second so the reference order is never violated.
func (s *DefaultSettingsService) FactoryReset(userID int) apierror.ErrorResponse {
	if err := s.AppointmentRepo.DeleteAllForUser(userID); err != nil {
		log.Errorf("failed to clear appointments for user %d: %v", userID, err)
		return apierror.NewSimple(500, "Failed to reset data. Please try again.")
	}
	if err := s.PatientRepo.DeleteAllForUser(userID); err != nil {
		log.Errorf("failed to clear patients for user %d: %v", userID, err)
		return apierror.NewSimple(500, "Failed to reset data. Please try again.")
	}
	return nil
}

// Export renders the account's data as one CSV document with a labeled
// section per area. The three reads run concurrently.
func (s *DefaultSettingsService) Export(userID int) ([]byte, string, apierror.ErrorResponse) {
	var (
		g        errgroup.Group
		user     *entity.User
		appts    []*repository.AppointmentListRow
		patients []*entity.Patient
	)
	g.Go(func() error {
		var err error
		user, err = s.UserRepo.FindByID(userID)
		return err
	})
	g.Go(func() error {
		var err error
		appts, err = s.AppointmentRepo.AllForUser(userID)
		return err
	})
	g.Go(func() error {
		var err error
		patients, err = s.PatientRepo.FindAllForUser(userID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("failed to collect export data for user %d: %v", userID, err)
		return nil, "", apierror.NewSimple(500, "Failed to export data. Please try again.")
	}
	if user == nil {
		return nil, "", errUserGone
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	write := func(record ...string) {
		// csv.Writer only fails on the underlying writer, and
		// bytes.Buffer never does.
		_ = w.Write(record)
	}

	write("Profile")
	write("ID", "Username", "Email", "Member Since")
	write(fmt.Sprint(user.ID), user.Username, user.Email, user.CreatedAt.Format(utils.DateLayout))

	write()
	write("Appointments")
	write("ID", "Patient", "Date", "Reason", "Status")
	for _, appt := range appts {
		write(fmt.Sprint(appt.ID), appt.PatientName, appt.AppointmentDate.Format(utils.DisplayLayout), strValue(appt.Reason), appt.Status)
	}

	write()
	write("Patients")
	write("ID", "First Name", "Last Name", "Date of Birth", "Gender", "Contact", "Email", "Address", "Medical History")
	for _, patient := range patients {
		dob := ""
		if patient.DateOfBirth != nil {
			dob = patient.DateOfBirth.Format(utils.DateLayout)
		}
		write(fmt.Sprint(patient.ID), patient.FirstName, patient.LastName, dob,
			strValue(patient.Gender), strValue(patient.ContactNumber), strValue(patient.Email),
			strValue(patient.Address), strValue(patient.MedicalHistory))
	}
	w.Flush()

	filename := fmt.Sprintf("clinicdesk-export-%s.csv", time.Now().Format(utils.DateLayout))
	return buf.Bytes(), filename, nil
}
