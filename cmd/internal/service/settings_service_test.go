package service_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"clinicdesk/cmd/internal/service"
)

func TestChangePasswordRules(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "oldpassword")

	tests := []struct {
		name string
		req  *service.ChangePasswordRequest
		want string
	}{
		{"missing fields",
			&service.ChangePasswordRequest{CurrentPassword: "oldpassword"},
			"All password fields are required."},
		{"confirmation mismatch",
			&service.ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword1", ConfirmPassword: "newpassword2"},
			"New passwords do not match."},
		{"too short",
			&service.ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "short", ConfirmPassword: "short"},
			"New password must be at least 8 characters long."},
		{"wrong current",
			&service.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpassword1", ConfirmPassword: "newpassword1"},
			"Incorrect current password."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apierr := env.settings.ChangePassword(userID, tt.req)
			if apierr == nil {
				t.Fatal("expected error")
			}
			if apierr.Error() != tt.want {
				t.Errorf("message = %q, want %q", apierr.Error(), tt.want)
			}
		})
	}
}

func TestChangePasswordSuccess(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "oldpassword")

	if apierr := env.settings.ChangePassword(userID, &service.ChangePasswordRequest{
		CurrentPassword: "oldpassword",
		NewPassword:     "newpassword1",
		ConfirmPassword: "newpassword1",
	}); apierr != nil {
		t.Fatalf("change password: %v", apierr)
	}

	if _, apierr := env.auth.Login(&service.LoginRequest{Username: "doc", Password: "newpassword1"}); apierr != nil {
		t.Errorf("login with new password: %v", apierr)
	}
	if _, apierr := env.auth.Login(&service.LoginRequest{Username: "doc", Password: "oldpassword"}); apierr == nil {
		t.Error("old password still accepted")
	}
}

func TestUpdateInfo(t *testing.T) {
	env := setup(t)
	user1 := registerUser(t, env, "doc1", "pw")
	registerUser(t, env, "doc2", "pw")

	// another account already holds the name
	apierr := env.settings.UpdateInfo(user1, &service.UpdateInfoRequest{
		Username: "doc2",
		Email:    "doc1@test.com",
	})
	if apierr == nil || apierr.Error() != "Username or Email already exists." {
		t.Errorf("got %v", apierr)
	}

	// keeping your own values is not a conflict
	if apierr := env.settings.UpdateInfo(user1, &service.UpdateInfoRequest{
		Username: "doc1",
		Email:    "doc1@test.com",
	}); apierr != nil {
		t.Errorf("self update: %v", apierr)
	}

	if apierr := env.settings.UpdateInfo(user1, &service.UpdateInfoRequest{
		Username: "renamed",
		Email:    "renamed@test.com",
	}); apierr != nil {
		t.Fatalf("rename: %v", apierr)
	}

	profile, apierr := env.settings.Overview(user1)
	if apierr != nil {
		t.Fatalf("overview: %v", apierr)
	}
	if profile.Username != "renamed" || profile.Email != "renamed@test.com" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestFactoryResetKeepsAccount(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")
	patientID := createPatient(t, env, userID, "Amy", "Stone")
	createAppointment(t, env, userID, patientID, time.Now().AddDate(0, 0, 1))

	if apierr := env.settings.FactoryReset(userID); apierr != nil {
		t.Fatalf("factory reset: %v", apierr)
	}

	patients, _ := env.patients.List(userID, "", 1)
	if patients.TotalItems != 0 {
		t.Errorf("patients left after reset: %d", patients.TotalItems)
	}
	appts, _ := env.appts.List(userID, "", "", 1)
	if appts.TotalItems != 0 {
		t.Errorf("appointments left after reset: %d", appts.TotalItems)
	}

	if _, apierr := env.auth.Login(&service.LoginRequest{Username: "doc", Password: "pw"}); apierr != nil {
		t.Errorf("account gone after factory reset: %v", apierr)
	}
}

func TestFactoryResetIsScopedToUser(t *testing.T) {
	env := setup(t)
	user1 := registerUser(t, env, "doc1", "pw")
	user2 := registerUser(t, env, "doc2", "pw")
	createPatient(t, env, user1, "Amy", "Stone")
	createPatient(t, env, user2, "Bruno", "Keller")

	if apierr := env.settings.FactoryReset(user1); apierr != nil {
		t.Fatalf("factory reset: %v", apierr)
	}

	other, _ := env.patients.List(user2, "", 1)
	if other.TotalItems != 1 {
		t.Errorf("user2 lost data in user1's reset: %d patients left", other.TotalItems)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")
	patientID := createPatient(t, env, userID, "Amy", "Stone")
	createAppointment(t, env, userID, patientID, time.Now().AddDate(0, 0, 1))

	if apierr := env.settings.DeleteAccount(userID); apierr != nil {
		t.Fatalf("delete account: %v", apierr)
	}

	if _, apierr := env.auth.Login(&service.LoginRequest{Username: "doc", Password: "pw"}); apierr == nil {
		t.Error("login still works after account deletion")
	}

	var patients, appts int64
	env.db.Table("patients").Count(&patients)
	env.db.Table("appointments").Count(&appts)
	if patients != 0 || appts != 0 {
		t.Errorf("orphaned rows: %d patients, %d appointments", patients, appts)
	}
}

func TestExportSections(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")

	// a comma in a field must survive the CSV round trip
	if apierr := env.patients.Create(userID, &service.PatientRequest{
		FirstName: "Amy",
		LastName:  "Stone",
		Address:   "12 Main St, Springfield",
	}); apierr != nil {
		t.Fatalf("create patient: %v", apierr)
	}
	patientID := listedPatientID(t, env, userID, "Amy Stone")
	createAppointment(t, env, userID, patientID, time.Now().AddDate(0, 0, 1))

	data, filename, apierr := env.settings.Export(userID)
	if apierr != nil {
		t.Fatalf("export: %v", apierr)
	}
	if !strings.HasSuffix(filename, ".csv") {
		t.Errorf("filename = %q", filename)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}

	var sections []string
	var address string
	for _, rec := range records {
		if len(rec) == 1 {
			sections = append(sections, rec[0])
		}
		if len(rec) > 7 && rec[1] == "Amy" {
			address = rec[7]
		}
	}

	want := []string{"Profile", "Appointments", "Patients"}
	if len(sections) != 3 {
		t.Fatalf("sections = %v, want %v", sections, want)
	}
	for i := range want {
		if sections[i] != want[i] {
			t.Errorf("section[%d] = %q, want %q", i, sections[i], want[i])
		}
	}
	if address != "12 Main St, Springfield" {
		t.Errorf("address after round trip = %q", address)
	}
}

func listedPatientID(t *testing.T, env *testEnv, userID int, name string) int {
	t.Helper()

	options, apierr := env.patients.Options(userID)
	if apierr != nil {
		t.Fatalf("options: %v", apierr)
	}
	for _, opt := range options {
		if opt.Name == name {
			return opt.ID
		}
	}
	t.Fatalf("patient %q not found", name)
	return 0
}
