package service

import (
	"fmt"
	"sort"
	"time"

	"clinicdesk/cmd/internal/domain/entity"
	"clinicdesk/cmd/internal/domain/sqlite/repository"
	"clinicdesk/cmd/internal/utils"
	"clinicdesk/cmd/internal/utils/apierror"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

const (
	trendDays    = 7
	forecastDays = 5
	scheduleMax  = 10
	pastDueMax   = 5
)

// ageBrackets is the fixed histogram order; Unknown collects patients
// without a date of birth.
var ageBrackets = []string{"0-10", "11-20", "21-30", "31-40", "41-50", "51-60", "60+", "Unknown"}

type ReportRepository interface {
	CountAppointmentsBetween(userID int, from, to time.Time) (int, error)
	CountAppointmentsBetweenWithStatus(userID int, from, to time.Time, status string) (int, error)
	CountPatients(userID int) (int, error)
	CountPatientsCreatedSince(userID int, since time.Time) (int, error)
	CountScheduledFrom(userID int, from time.Time) (int, error)
	CountScheduledBetween(userID int, from, to time.Time) (int, error)
	ScheduleBetween(userID int, from, to time.Time, limit int) ([]*repository.ScheduleRow, error)
	ScheduledDatesBetween(userID int, from, to time.Time) ([]time.Time, error)
	PastDueScheduled(userID int, before time.Time, limit int) ([]*repository.PastDueRow, error)
	StatusCounts(userID int) (map[string]int, error)
	GenderCounts(userID int) (map[string]int, error)
	AppointmentsCreatedSince(userID int, since time.Time) ([]time.Time, error)
	PatientsCreatedSince(userID int, since time.Time) ([]time.Time, error)
	PatientBirthDates(userID int) ([]*time.Time, error)
	UpcomingScheduled(userID int, from, to time.Time) ([]*repository.UpcomingRow, error)
}

type DashboardStats struct {
	TodayAppointments     int `json:"today_appointments"`
	CompletedToday        int `json:"completed_today"`
	TotalPatients         int `json:"total_patients"`
	NewPatientsWeek       int `json:"new_patients_week"`
	ScheduledAppointments int `json:"scheduled_appointments"`
	UpcomingAppointments  int `json:"upcoming_appointments"`
}

type ScheduleEntry struct {
	ID          int    `json:"id"`
	PatientID   int    `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Time        string `json:"time"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status"`
}

type PastDueEntry struct {
	ID          int    `json:"id"`
	PatientID   int    `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Date        string `json:"date"`
}

type DashboardView struct {
	Stats               DashboardStats   `json:"stats"`
	TodaysSchedule      []*ScheduleEntry `json:"todays_schedule"`
	ForecastLabels      []string         `json:"forecast_labels"`
	ForecastData        []int            `json:"forecast_data"`
	PastDueAppointments []*PastDueEntry  `json:"past_due_appointments"`
}

type UpcomingEntry struct {
	ID          int    `json:"id"`
	PatientName string `json:"patient_name"`
	Date        string `json:"date"`
	Reason      string `json:"reason,omitempty"`
}

type ReportsView struct {
	TotalAppointments    int              `json:"total_appointments"`
	TotalPatients        int              `json:"total_patients"`
	CancellationRate     string           `json:"cancellation_rate"`
	StatusLabels         []string         `json:"status_labels"`
	StatusData           []int            `json:"status_data"`
	GenderLabels         []string         `json:"gender_labels"`
	GenderData           []int            `json:"gender_data"`
	TrendLabels          []string         `json:"trend_labels"`
	AppointmentTrendData []int            `json:"appointment_trend_data"`
	NewPatientTrendData  []int            `json:"new_patient_trend_data"`
	AgeLabels            []string         `json:"age_labels"`
	AgeData              []int            `json:"age_data"`
	UpcomingAppointments []*UpcomingEntry `json:"upcoming_appointments"`
}

var (
	// ErrDashboardUnavailable and ErrReportsUnavailable are the single
	// banners shown when any query of the batch fails. No partial data
	// leaves the service.
	ErrDashboardUnavailable = apierror.NewSimple(500, "Could not load dashboard statistics.")
	ErrReportsUnavailable   = apierror.NewSimple(500, "Could not load report data.")
)

// DefaultReportService assembles the dashboard and reports pages by fanning
// out independent read queries concurrently and joining at the end.
type DefaultReportService struct {
	ReportRepo ReportRepository
}

func NewReportService(reportRepo ReportRepository) *DefaultReportService {
	return &DefaultReportService{ReportRepo: reportRepo}
}

// Dashboard runs the nine dashboard reads concurrently. Any failure aborts
// the whole batch.
func (r *DefaultReportService) Dashboard(userID int) (*DashboardView, apierror.ErrorResponse) {
	now := time.Now()
	today := utils.DayStart(now)
	tomorrow := today.AddDate(0, 0, 1)
	weekAgo := today.AddDate(0, 0, -(trendDays - 1))
	weekAhead := today.AddDate(0, 0, 8)
	forecastEnd := today.AddDate(0, 0, forecastDays)

	var (
		g        errgroup.Group
		stats    DashboardStats
		schedule []*repository.ScheduleRow
		forecast []time.Time
		pastDue  []*repository.PastDueRow
	)
	g.Go(func() error {
		var err error
		stats.TodayAppointments, err = r.ReportRepo.CountAppointmentsBetween(userID, today, tomorrow)
		return err
	})
	g.Go(func() error {
		var err error
		stats.CompletedToday, err = r.ReportRepo.CountAppointmentsBetweenWithStatus(userID, today, tomorrow, entity.StatusCompleted)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalPatients, err = r.ReportRepo.CountPatients(userID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.NewPatientsWeek, err = r.ReportRepo.CountPatientsCreatedSince(userID, weekAgo)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ScheduledAppointments, err = r.ReportRepo.CountScheduledFrom(userID, today)
		return err
	})
	g.Go(func() error {
		var err error
		stats.UpcomingAppointments, err = r.ReportRepo.CountScheduledBetween(userID, tomorrow, weekAhead)
		return err
	})
	g.Go(func() error {
		var err error
		schedule, err = r.ReportRepo.ScheduleBetween(userID, today, tomorrow, scheduleMax)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = r.ReportRepo.ScheduledDatesBetween(userID, today, forecastEnd)
		return err
	})
	g.Go(func() error {
		var err error
		pastDue, err = r.ReportRepo.PastDueScheduled(userID, today, pastDueMax)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("failed to fetch dashboard data for user %d: %v", userID, err)
		return nil, ErrDashboardUnavailable
	}

	view := &DashboardView{
		Stats:               stats,
		TodaysSchedule:      make([]*ScheduleEntry, len(schedule)),
		ForecastLabels:      make([]string, forecastDays),
		ForecastData:        bucketByDay(forecast, today, forecastDays),
		PastDueAppointments: make([]*PastDueEntry, len(pastDue)),
	}
	for i, row := range schedule {
		view.TodaysSchedule[i] = &ScheduleEntry{
			ID:          row.ID,
			PatientID:   row.PatientID,
			PatientName: row.PatientName,
			Time:        row.AppointmentDate.Format("15:04"),
			Reason:      strValue(row.Reason),
			Status:      row.Status,
		}
	}
	for i := 0; i < forecastDays; i++ {
		view.ForecastLabels[i] = today.AddDate(0, 0, i).Format("Mon")
	}
	for i, row := range pastDue {
		view.PastDueAppointments[i] = &PastDueEntry{
			ID:          row.ID,
			PatientID:   row.PatientID,
			PatientName: row.PatientName,
			Date:        row.AppointmentDate.Format(utils.DisplayLayout),
		}
	}
	return view, nil
}

// Reports runs the report reads concurrently and shapes the chart arrays.
func (r *DefaultReportService) Reports(userID int) (*ReportsView, apierror.ErrorResponse) {
	now := time.Now()
	today := utils.DayStart(now)
	weekAgo := today.AddDate(0, 0, -(trendDays - 1))
	weekAhead := today.AddDate(0, 0, 8)

	var (
		g             errgroup.Group
		statusCounts  map[string]int
		genderCounts  map[string]int
		totalPatients int
		apptCreated   []time.Time
		patCreated    []time.Time
		birthDates    []*time.Time
		upcoming      []*repository.UpcomingRow
	)
	g.Go(func() error {
		var err error
		statusCounts, err = r.ReportRepo.StatusCounts(userID)
		return err
	})
	g.Go(func() error {
		var err error
		genderCounts, err = r.ReportRepo.GenderCounts(userID)
		return err
	})
	g.Go(func() error {
		var err error
		totalPatients, err = r.ReportRepo.CountPatients(userID)
		return err
	})
	g.Go(func() error {
		var err error
		apptCreated, err = r.ReportRepo.AppointmentsCreatedSince(userID, weekAgo)
		return err
	})
	g.Go(func() error {
		var err error
		patCreated, err = r.ReportRepo.PatientsCreatedSince(userID, weekAgo)
		return err
	})
	g.Go(func() error {
		var err error
		birthDates, err = r.ReportRepo.PatientBirthDates(userID)
		return err
	})
	g.Go(func() error {
		var err error
		upcoming, err = r.ReportRepo.UpcomingScheduled(userID, today, weekAhead)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("failed to fetch report data for user %d: %v", userID, err)
		return nil, ErrReportsUnavailable
	}

	view := &ReportsView{
		TotalPatients:        totalPatients,
		StatusLabels:         entity.Statuses,
		StatusData:           make([]int, len(entity.Statuses)),
		TrendLabels:          make([]string, trendDays),
		AppointmentTrendData: bucketByDay(apptCreated, weekAgo, trendDays),
		NewPatientTrendData:  bucketByDay(patCreated, weekAgo, trendDays),
		AgeLabels:            ageBrackets,
		AgeData:              bucketAges(birthDates, now),
		UpcomingAppointments: make([]*UpcomingEntry, len(upcoming)),
	}

	for i, status := range entity.Statuses {
		view.StatusData[i] = statusCounts[status]
		view.TotalAppointments += statusCounts[status]
	}
	view.CancellationRate = cancellationRate(statusCounts[entity.StatusCancelled], view.TotalAppointments)

	view.GenderLabels = make([]string, 0, len(genderCounts))
	for gender := range genderCounts {
		view.GenderLabels = append(view.GenderLabels, gender)
	}
	sort.Strings(view.GenderLabels)
	view.GenderData = make([]int, len(view.GenderLabels))
	for i, gender := range view.GenderLabels {
		view.GenderData[i] = genderCounts[gender]
	}

	for i := 0; i < trendDays; i++ {
		view.TrendLabels[i] = weekAgo.AddDate(0, 0, i).Format(utils.DateLayout)
	}

	for i, row := range upcoming {
		view.UpcomingAppointments[i] = &UpcomingEntry{
			ID:          row.ID,
			PatientName: row.PatientName,
			Date:        row.AppointmentDate.Format(utils.DisplayLayout),
			Reason:      strValue(row.Reason),
		}
	}
	return view, nil
}

// EmptyDashboardView is the placeholder rendered when the stats batch
// fails. Labels are still real so the charts keep their shape.
func EmptyDashboardView() *DashboardView {
	today := utils.DayStart(time.Now())
	view := &DashboardView{
		TodaysSchedule:      []*ScheduleEntry{},
		ForecastLabels:      make([]string, forecastDays),
		ForecastData:        make([]int, forecastDays),
		PastDueAppointments: []*PastDueEntry{},
	}
	for i := 0; i < forecastDays; i++ {
		view.ForecastLabels[i] = today.AddDate(0, 0, i).Format("Mon")
	}
	return view
}

// EmptyReportsView is the placeholder for a failed reports batch.
func EmptyReportsView() *ReportsView {
	weekAgo := utils.DayStart(time.Now()).AddDate(0, 0, -(trendDays - 1))
	view := &ReportsView{
		CancellationRate:     "0.0",
		StatusLabels:         entity.Statuses,
		StatusData:           make([]int, len(entity.Statuses)),
		GenderLabels:         []string{},
		GenderData:           []int{},
		TrendLabels:          make([]string, trendDays),
		AppointmentTrendData: make([]int, trendDays),
		NewPatientTrendData:  make([]int, trendDays),
		AgeLabels:            ageBrackets,
		AgeData:              make([]int, len(ageBrackets)),
		UpcomingAppointments: []*UpcomingEntry{},
	}
	for i := 0; i < trendDays; i++ {
		view.TrendLabels[i] = weekAgo.AddDate(0, 0, i).Format(utils.DateLayout)
	}
	return view
}

// bucketByDay counts timestamps per calendar day over a fixed range. Every
// day appears, zero-filled, so charts never see a short array. Buckets are
// keyed by calendar date, not elapsed hours, so DST days still line up with
// their labels.
func bucketByDay(times []time.Time, start time.Time, days int) []int {
	counts := make([]int, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		index[start.AddDate(0, 0, i).Format(utils.DateLayout)] = i
	}
	for _, t := range times {
		if i, ok := index[t.In(start.Location()).Format(utils.DateLayout)]; ok {
			counts[i]++
		}
	}
	return counts
}

// bucketAges fills the fixed age histogram. Missing or impossible dates of
// birth land in Unknown.
func bucketAges(birthDates []*time.Time, now time.Time) []int {
	counts := make([]int, len(ageBrackets))
	unknown := len(ageBrackets) - 1
	for _, dob := range birthDates {
		if dob == nil {
			counts[unknown]++
			continue
		}
		age := utils.AgeAt(*dob, now)
		switch {
		case age < 0:
			counts[unknown]++
		case age > 60:
			counts[len(ageBrackets)-2]++
		default:
			// Brackets are upper-inclusive, so age 10 belongs to 0-10
			// and age 11 to 11-20. (age-1)/10 lands 0 in bracket 0 too.
			counts[(age-1)/10]++
		}
	}
	return counts
}

// cancellationRate renders cancelled/total as a one-decimal percentage.
func cancellationRate(cancelled, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(cancelled)/float64(total)*100)
}
