package service_test

import (
	"fmt"
	"testing"
	"time"

	"clinicdesk/cmd/internal/domain/sqlite"
	"clinicdesk/cmd/internal/domain/sqlite/repository"
	"clinicdesk/cmd/internal/service"
	"clinicdesk/cmd/internal/utils"
	"clinicdesk/cmd/internal/utils/validators"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	users    *repository.DefaultUserRepository
	auth     *service.DefaultAuthService
	patients *service.DefaultPatientService
	appts    *service.DefaultAppointmentService
	reports  *service.DefaultReportService
	settings *service.DefaultSettingsService
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.Init(":memory:")
	if err != nil {
		t.Fatalf("init db: %v", err)
	}

	validate := validator.New()
	_ = validate.RegisterValidation("dateonly", validators.IsDateOnly)
	_ = validate.RegisterValidation("datetimelocal", validators.IsDateTimeLocal)

	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	return &testEnv{
		db:       db,
		users:    userRepo,
		auth:     service.NewAuthService(userRepo, validate),
		patients: service.NewPatientService(patientRepo, apptRepo, validate),
		appts:    service.NewAppointmentService(apptRepo, patientRepo, validate),
		reports:  service.NewReportService(reportRepo),
		settings: service.NewSettingsService(userRepo, patientRepo, apptRepo, validate),
	}
}

func registerUser(t *testing.T, env *testEnv, username, password string) int {
	t.Helper()

	apierr := env.auth.Register(&service.RegisterRequest{
		Username:        username,
		Email:           username + "@test.com",
		Password:        password,
		ConfirmPassword: password,
	})
	if apierr != nil {
		t.Fatalf("register %s: %v", username, apierr)
	}

	user, err := env.users.FindByUsername(username)
	if err != nil || user == nil {
		t.Fatalf("fetch %s after register: %v", username, err)
	}
	return user.ID
}

func createPatient(t *testing.T, env *testEnv, userID int, first, last string) int {
	t.Helper()

	if apierr := env.patients.Create(userID, &service.PatientRequest{
		FirstName: first,
		LastName:  last,
	}); apierr != nil {
		t.Fatalf("create patient %s %s: %v", first, last, apierr)
	}

	options, apierr := env.patients.Options(userID)
	if apierr != nil {
		t.Fatalf("patient options: %v", apierr)
	}
	for _, opt := range options {
		if opt.Name == first+" "+last {
			return opt.ID
		}
	}
	t.Fatalf("patient %s %s not found after create", first, last)
	return 0
}

func createAppointment(t *testing.T, env *testEnv, userID, patientID int, date time.Time) {
	t.Helper()

	if apierr := env.appts.Create(userID, &service.AppointmentRequest{
		PatientID:       patientID,
		AppointmentDate: date.Format(utils.DateTimeLayout),
	}); apierr != nil {
		t.Fatalf("create appointment at %v: %v", date, apierr)
	}
}

// listedAppointmentIDs reads the first list page, newest first.
func listedAppointmentIDs(t *testing.T, env *testEnv, userID int) []int {
	t.Helper()

	view, apierr := env.appts.List(userID, "", "", 1)
	if apierr != nil {
		t.Fatalf("list appointments: %v", apierr)
	}

	ids := make([]int, len(view.Appointments))
	for i, appt := range view.Appointments {
		ids[i] = appt.ID
	}
	return ids
}

func uniqueName(prefix string, n int) string {
	return fmt.Sprintf("%s%02d", prefix, n)
}
