package utils_test

import (
	"testing"
	"time"

	"clinicdesk/cmd/internal/utils"
)

func TestAgeAt(t *testing.T) {
	dob := time.Date(1990, time.March, 15, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		on   time.Time
		want int
	}{
		{"day before anniversary", time.Date(2020, time.March, 14, 0, 0, 0, 0, time.Local), 29},
		{"on anniversary", time.Date(2020, time.March, 15, 0, 0, 0, 0, time.Local), 30},
		{"day after anniversary", time.Date(2020, time.March, 16, 0, 0, 0, 0, time.Local), 30},
		{"end of year", time.Date(2020, time.December, 31, 0, 0, 0, 0, time.Local), 30},
		{"start of year", time.Date(2020, time.January, 1, 0, 0, 0, 0, time.Local), 29},
		{"first weeks of life", time.Date(1990, time.April, 1, 0, 0, 0, 0, time.Local), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := utils.AgeAt(dob, tt.on); got != tt.want {
				t.Errorf("AgeAt(%v, %v) = %d, want %d", dob, tt.on, got, tt.want)
			}
		})
	}
}

func TestAgeAtIgnoresTimeOfDay(t *testing.T) {
	dob := time.Date(2000, time.June, 10, 0, 0, 0, 0, time.Local)
	lateEvening := time.Date(2024, time.June, 10, 23, 59, 0, 0, time.Local)

	if got := utils.AgeAt(dob, lateEvening); got != 24 {
		t.Errorf("age on anniversary evening = %d, want 24", got)
	}
}

func TestDayStart(t *testing.T) {
	instant := time.Date(2024, time.May, 3, 17, 45, 12, 999, time.Local)
	want := time.Date(2024, time.May, 3, 0, 0, 0, 0, time.Local)

	if got := utils.DayStart(instant); !got.Equal(want) {
		t.Errorf("DayStart = %v, want %v", got, want)
	}
}

func TestSanitizeTrimsStringFields(t *testing.T) {
	type form struct {
		Name  string
		Email string
		Tags  []string
	}

	f := &form{Name: "  Ada  ", Email: "\tada@test.com\n", Tags: []string{" a ", "b "}}
	utils.Sanitize(f)

	if f.Name != "Ada" {
		t.Errorf("Name = %q", f.Name)
	}
	if f.Email != "ada@test.com" {
		t.Errorf("Email = %q", f.Email)
	}
	if f.Tags[0] != "a" || f.Tags[1] != "b" {
		t.Errorf("Tags = %v", f.Tags)
	}
}
