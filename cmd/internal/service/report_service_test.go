package service_test

import (
	"testing"
	"time"

	"clinicdesk/cmd/internal/service"
	"clinicdesk/cmd/internal/utils"
)

func TestDashboardEmptyIsZeroFilled(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")

	view, apierr := env.reports.Dashboard(userID)
	if apierr != nil {
		t.Fatalf("dashboard: %v", apierr)
	}

	if view.Stats != (service.DashboardStats{}) {
		t.Errorf("stats = %+v, want all zero", view.Stats)
	}
	if len(view.ForecastLabels) != 5 || len(view.ForecastData) != 5 {
		t.Fatalf("forecast lengths = %d / %d, want 5 / 5", len(view.ForecastLabels), len(view.ForecastData))
	}
	for i, n := range view.ForecastData {
		if n != 0 {
			t.Errorf("forecast[%d] = %d, want 0", i, n)
		}
	}
	if len(view.TodaysSchedule) != 0 || len(view.PastDueAppointments) != 0 {
		t.Errorf("schedule/past-due not empty: %d / %d", len(view.TodaysSchedule), len(view.PastDueAppointments))
	}
}

func TestDashboardCountsToday(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")
	patientID := createPatient(t, env, userID, "Amy", "Stone")

	today := utils.DayStart(time.Now()).Add(12 * time.Hour)
	tomorrow := utils.DayStart(time.Now()).AddDate(0, 0, 1).Add(9 * time.Hour)
	createAppointment(t, env, userID, patientID, today)
	createAppointment(t, env, userID, patientID, tomorrow)

	view, apierr := env.reports.Dashboard(userID)
	if apierr != nil {
		t.Fatalf("dashboard: %v", apierr)
	}

	if view.Stats.TodayAppointments != 1 {
		t.Errorf("today count = %d, want 1", view.Stats.TodayAppointments)
	}
	if view.Stats.ScheduledAppointments != 2 {
		t.Errorf("scheduled count = %d, want 2", view.Stats.ScheduledAppointments)
	}
	// the upcoming window starts strictly after today
	if view.Stats.UpcomingAppointments != 1 {
		t.Errorf("upcoming count = %d, want 1", view.Stats.UpcomingAppointments)
	}
	if view.Stats.TotalPatients != 1 || view.Stats.NewPatientsWeek != 1 {
		t.Errorf("patient stats = %+v", view.Stats)
	}

	if len(view.TodaysSchedule) != 1 {
		t.Fatalf("schedule size = %d, want 1", len(view.TodaysSchedule))
	}
	if view.TodaysSchedule[0].Time != "12:00" {
		t.Errorf("schedule time = %q, want 12:00", view.TodaysSchedule[0].Time)
	}
	if view.ForecastData[0] != 1 || view.ForecastData[1] != 1 {
		t.Errorf("forecast = %v, want 1 today and 1 tomorrow", view.ForecastData)
	}
}

func TestDashboardPastDue(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")
	patientID := createPatient(t, env, userID, "Amy", "Stone")

	createAppointment(t, env, userID, patientID, time.Now().AddDate(0, 0, -3))
	createAppointment(t, env, userID, patientID, time.Now().AddDate(0, 0, -1))

	view, apierr := env.reports.Dashboard(userID)
	if apierr != nil {
		t.Fatalf("dashboard: %v", apierr)
	}
	if len(view.PastDueAppointments) != 2 {
		t.Fatalf("past due size = %d, want 2", len(view.PastDueAppointments))
	}

	// completing one removes it from the past-due list
	id := listedAppointmentIDs(t, env, userID)[0]
	if apierr := env.appts.MarkComplete(userID, id); apierr != nil {
		t.Fatalf("complete: %v", apierr)
	}
	view, _ = env.reports.Dashboard(userID)
	if len(view.PastDueAppointments) != 1 {
		t.Errorf("past due after complete = %d, want 1", len(view.PastDueAppointments))
	}
}

func TestReportsCancellationRate(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")
	patientID := createPatient(t, env, userID, "Amy", "Stone")

	for i := 0; i < 10; i++ {
		createAppointment(t, env, userID, patientID, time.Now().AddDate(0, 0, i+1))
	}
	ids := listedAppointmentIDs(t, env, userID)
	for _, id := range ids[:3] {
		if apierr := env.appts.Cancel(userID, id); apierr != nil {
			t.Fatalf("cancel %d: %v", id, apierr)
		}
	}

	view, apierr := env.reports.Reports(userID)
	if apierr != nil {
		t.Fatalf("reports: %v", apierr)
	}

	if view.CancellationRate != "30.0" {
		t.Errorf("cancellation rate = %q, want 30.0", view.CancellationRate)
	}
	if view.TotalAppointments != 10 {
		t.Errorf("total appointments = %d, want 10", view.TotalAppointments)
	}

	// status data stays aligned with [Scheduled, Completed, Cancelled]
	if view.StatusData[0] != 7 || view.StatusData[1] != 0 || view.StatusData[2] != 3 {
		t.Errorf("status data = %v, want [7 0 3]", view.StatusData)
	}
}

func TestReportsZeroFill(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")

	view, apierr := env.reports.Reports(userID)
	if apierr != nil {
		t.Fatalf("reports: %v", apierr)
	}

	if view.CancellationRate != "0.0" {
		t.Errorf("cancellation rate = %q, want 0.0", view.CancellationRate)
	}
	if len(view.TrendLabels) != 7 || len(view.AppointmentTrendData) != 7 || len(view.NewPatientTrendData) != 7 {
		t.Fatalf("trend lengths = %d / %d / %d, want 7 each",
			len(view.TrendLabels), len(view.AppointmentTrendData), len(view.NewPatientTrendData))
	}

	today := utils.DayStart(time.Now())
	if view.TrendLabels[6] != today.Format(utils.DateLayout) {
		t.Errorf("last trend label = %s, want today", view.TrendLabels[6])
	}
	if view.TrendLabels[0] != today.AddDate(0, 0, -6).Format(utils.DateLayout) {
		t.Errorf("first trend label = %s, want six days back", view.TrendLabels[0])
	}

	if len(view.StatusData) != 3 {
		t.Errorf("status data length = %d, want 3", len(view.StatusData))
	}
	if len(view.AgeLabels) != 8 || len(view.AgeData) != 8 {
		t.Errorf("age histogram lengths = %d / %d, want 8 / 8", len(view.AgeLabels), len(view.AgeData))
	}
}

func TestReportsTrendsCountCreations(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")
	patientID := createPatient(t, env, userID, "Amy", "Stone")
	createPatient(t, env, userID, "Bruno", "Keller")
	createAppointment(t, env, userID, patientID, time.Now().AddDate(0, 0, 30))

	view, apierr := env.reports.Reports(userID)
	if apierr != nil {
		t.Fatalf("reports: %v", apierr)
	}

	// trends bucket by creation time, not appointment time
	if view.NewPatientTrendData[6] != 2 {
		t.Errorf("patient trend today = %d, want 2", view.NewPatientTrendData[6])
	}
	if view.AppointmentTrendData[6] != 1 {
		t.Errorf("appointment trend today = %d, want 1", view.AppointmentTrendData[6])
	}
}

func TestReportsAgeHistogram(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")

	addPatient := func(last string, dob *time.Time) {
		req := &service.PatientRequest{FirstName: "P", LastName: last}
		if dob != nil {
			req.DateOfBirth = dob.Format(utils.DateLayout)
		}
		if apierr := env.patients.Create(userID, req); apierr != nil {
			t.Fatalf("create %s: %v", last, apierr)
		}
	}
	yearsAgo := func(n int) *time.Time {
		d := time.Now().AddDate(-n, 0, 0)
		return &d
	}

	addPatient("NoDOB", nil)
	addPatient("Child", yearsAgo(5))
	addPatient("TenExactly", yearsAgo(10)) // upper bound of the first bracket
	addPatient("Teen", yearsAgo(15))
	addPatient("Senior", yearsAgo(65))

	view, apierr := env.reports.Reports(userID)
	if apierr != nil {
		t.Fatalf("reports: %v", apierr)
	}

	want := []int{2, 1, 0, 0, 0, 0, 1, 1} // 0-10, 11-20, ..., 60+, Unknown
	for i, n := range want {
		if view.AgeData[i] != n {
			t.Errorf("age bracket %s = %d, want %d", view.AgeLabels[i], view.AgeData[i], n)
		}
	}
}

func TestReportsGenderBreakdownSorted(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")

	add := func(last, gender string) {
		if apierr := env.patients.Create(userID, &service.PatientRequest{
			FirstName: "P", LastName: last, Gender: gender,
		}); apierr != nil {
			t.Fatalf("create %s: %v", last, apierr)
		}
	}
	add("A", "Male")
	add("B", "Female")
	add("C", "Female")
	add("D", "") // unset gender stays out of the chart

	view, apierr := env.reports.Reports(userID)
	if apierr != nil {
		t.Fatalf("reports: %v", apierr)
	}

	if len(view.GenderLabels) != 2 || view.GenderLabels[0] != "Female" || view.GenderLabels[1] != "Male" {
		t.Fatalf("gender labels = %v, want [Female Male]", view.GenderLabels)
	}
	if view.GenderData[0] != 2 || view.GenderData[1] != 1 {
		t.Errorf("gender data = %v, want [2 1]", view.GenderData)
	}
	if view.TotalPatients != 4 {
		t.Errorf("total patients = %d, want 4", view.TotalPatients)
	}
}

func TestReportsUpcomingWindow(t *testing.T) {
	env := setup(t)
	userID := registerUser(t, env, "doc", "pw")
	patientID := createPatient(t, env, userID, "Amy", "Stone")

	createAppointment(t, env, userID, patientID, time.Now().AddDate(0, 0, 3))
	createAppointment(t, env, userID, patientID, time.Now().AddDate(0, 0, 10)) // outside the window

	view, apierr := env.reports.Reports(userID)
	if apierr != nil {
		t.Fatalf("reports: %v", apierr)
	}
	if len(view.UpcomingAppointments) != 1 {
		t.Fatalf("upcoming size = %d, want 1", len(view.UpcomingAppointments))
	}
	if view.UpcomingAppointments[0].PatientName != "Amy Stone" {
		t.Errorf("upcoming patient = %q", view.UpcomingAppointments[0].PatientName)
	}
}
