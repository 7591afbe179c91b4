package service_test

import (
	"testing"

	"clinicdesk/cmd/internal/service"
)

func TestRegisterThenLogin(t *testing.T) {
	env := setup(t)

	// registration has no strength rule, a short password is accepted
	if apierr := env.auth.Register(&service.RegisterRequest{
		Username:        "ahmad",
		Email:           "ahmad@test.com",
		Password:        "123",
		ConfirmPassword: "123",
	}); apierr != nil {
		t.Fatalf("register: %v", apierr)
	}

	user, apierr := env.auth.Login(&service.LoginRequest{Username: "ahmad", Password: "123"})
	if apierr != nil {
		t.Fatalf("login: %v", apierr)
	}
	if user.Username != "ahmad" {
		t.Errorf("username = %q, want ahmad", user.Username)
	}
	if user.Password == "123" {
		t.Error("password stored in plain text")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := setup(t)
	registerUser(t, env, "ahmad", "123")

	_, apierr := env.auth.Login(&service.LoginRequest{Username: "ahmad", Password: "wrong"})
	if apierr == nil {
		t.Fatal("expected error")
	}
	if apierr.Code() != 401 {
		t.Errorf("code = %d, want 401", apierr.Code())
	}
	if apierr.Error() != "Invalid username or password." {
		t.Errorf("message = %q", apierr.Error())
	}
}

func TestLoginUnknownUser(t *testing.T) {
	env := setup(t)

	_, apierr := env.auth.Login(&service.LoginRequest{Username: "nobody", Password: "123"})
	if apierr == nil {
		t.Fatal("expected error")
	}

	// same message as a wrong password, so usernames cannot be probed
	if apierr.Error() != "Invalid username or password." {
		t.Errorf("message = %q", apierr.Error())
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	env := setup(t)

	apierr := env.auth.Register(&service.RegisterRequest{
		Username:        "ahmad",
		Email:           "ahmad@test.com",
		Password:        "123",
		ConfirmPassword: "456",
	})
	if apierr == nil {
		t.Fatal("expected error")
	}
	if apierr.Error() != "Passwords do not match" {
		t.Errorf("message = %q", apierr.Error())
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := setup(t)
	registerUser(t, env, "ahmad", "123")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same username", "ahmad", "other@test.com"},
		{"same email", "other", "ahmad@test.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apierr := env.auth.Register(&service.RegisterRequest{
				Username:        tt.username,
				Email:           tt.email,
				Password:        "pw",
				ConfirmPassword: "pw",
			})
			if apierr == nil {
				t.Fatal("expected error")
			}
			if apierr.Error() != "Username or Email already exists." {
				t.Errorf("message = %q", apierr.Error())
			}
		})
	}
}
