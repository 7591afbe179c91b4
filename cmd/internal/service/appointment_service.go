package service

import (
	"slices"
	"time"

	"clinicdesk/cmd/internal/domain/entity"
	"clinicdesk/cmd/internal/domain/sqlite/repository"
	"clinicdesk/cmd/internal/utils"
	"clinicdesk/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

type AppointmentRepository interface {
	FindByID(id, userID int) (*entity.Appointment, error)
	Search(userID int, searchPatient, status string, limit, offset int) ([]*repository.AppointmentListRow, error)
	AllForUser(userID int) ([]*repository.AppointmentListRow, error)
	CountSearch(userID int, searchPatient, status string) (int64, error)
	FindByPatient(patientID, userID int) ([]*entity.Appointment, error)
	CountByPatient(patientID, userID int) (int64, error)
	Save(appt *entity.Appointment) error
	Update(appt *entity.Appointment) (int64, error)
	UpdateStatus(id, userID int, status string) (int64, error)
	Delete(id, userID int) (int64, error)
	DeleteAllForUser(userID int) error
}

type AppointmentRequest struct {
	PatientID       int    `json:"patient_id" form:"patient_id"`
	AppointmentDate string `json:"appointment_date" form:"appointment_date" validate:"datetimelocal"`
	Reason          string `json:"reason" form:"reason" validate:"max=500"`
	Status          string `json:"status" form:"status" validate:"omitempty,oneof=Scheduled Completed Cancelled"`
}

type AppointmentResponse struct {
	ID          int    `json:"id"`
	PatientID   int    `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Date        string `json:"date"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status"`
}

type AppointmentListView struct {
	Appointments  []*AppointmentResponse `json:"appointments"`
	SearchPatient string                 `json:"search_patient"`
	FilterStatus  string                 `json:"filter_status"`
	CurrentPage   int                    `json:"current_page"`
	TotalPages    int                    `json:"total_pages"`
	TotalItems    int64                  `json:"total_items"`
}

// AppointmentFormData mirrors the edit form fields, so failed submissions
// can be redisplayed merged over the stored record.
type AppointmentFormData struct {
	ID              int    `json:"id"`
	PatientID       int    `json:"patient_id"`
	AppointmentDate string `json:"appointment_date"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
}

type AppointmentFormView struct {
	Appointment *AppointmentFormData `json:"appointment,omitempty"`
	Patients    []*PatientOption     `json:"patients"`
}

var (
	errApptCreateRequired = apierror.NewSimple(400, "Patient and Appointment Date are required.")
	errApptUpdateRequired = apierror.NewSimple(400, "Patient, Appointment Date, and Status are required.")
	errApptPatientUnknown = apierror.NewSimple(400, "Selected patient was not found.")
	errApptNotFound       = apierror.NewSimple(404, "Appointment not found.")
	errApptNoChanges      = apierror.NewSimple(404, "Appointment not found or no changes made.")
	errApptAlreadyUpdated = apierror.NewSimple(404, "Appointment not found or already updated.")
)

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	PatientRepo     PatientRepository
	Validate        *validator.Validate
}

func NewAppointmentService(apptRepo AppointmentRepository, patientRepo PatientRepository, validate *validator.Validate) *DefaultAppointmentService {
	return &DefaultAppointmentService{AppointmentRepo: apptRepo, PatientRepo: patientRepo, Validate: validate}
}

// List returns one page of the user's appointments, newest first, filtered
// by patient-name substring and/or exact status. Unknown status values are
// ignored rather than rejected.
func (a *DefaultAppointmentService) List(userID int, searchPatient, status string, page int) (*AppointmentListView, apierror.ErrorResponse) {
	if page < 1 {
		page = 1
	}
	if !slices.Contains(entity.Statuses, status) {
		status = ""
	}
	offset := (page - 1) * PageSize

	var (
		g     errgroup.Group
		total int64
		rows  []*repository.AppointmentListRow
	)
	g.Go(func() error {
		var err error
		total, err = a.AppointmentRepo.CountSearch(userID, searchPatient, status)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = a.AppointmentRepo.Search(userID, searchPatient, status, PageSize, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("failed to fetch appointments for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*AppointmentResponse, len(rows))
	for i, row := range rows {
		resp[i] = &AppointmentResponse{
			ID:          row.ID,
			PatientID:   row.PatientID,
			PatientName: row.PatientName,
			Date:        row.AppointmentDate.Format(utils.DisplayLayout),
			Reason:      strValue(row.Reason),
			Status:      row.Status,
		}
	}
	return &AppointmentListView{
		Appointments:  resp,
		SearchPatient: searchPatient,
		FilterStatus:  status,
		CurrentPage:   page,
		TotalPages:    totalPages(total),
		TotalItems:    total,
	}, nil
}

// Create stores a new appointment. Status always starts as Scheduled.
func (a *DefaultAppointmentService) Create(userID int, req *AppointmentRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if req.PatientID == 0 || req.AppointmentDate == "" {
		return errApptCreateRequired
	}
	if err := a.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	date, err := time.Parse(utils.DateTimeLayout, req.AppointmentDate)
	if err != nil {
		return apierror.MalformedBodyError
	}

	if apierr := a.checkPatientOwned(req.PatientID, userID); apierr != nil {
		return apierr
	}

	appt := &entity.Appointment{
		UserID:          userID,
		PatientID:       req.PatientID,
		AppointmentDate: date,
		Reason:          nilIfEmpty(req.Reason),
		Status:          entity.StatusScheduled,
	}
	if err := a.AppointmentRepo.Save(appt); err != nil {
		log.Errorf("failed to add appointment for user %d: %v", userID, err)
		return apierror.NewSimple(500, "Failed to add appointment. Please try again.")
	}
	return nil
}

func (a *DefaultAppointmentService) Update(userID, id int, req *AppointmentRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if req.PatientID == 0 || req.AppointmentDate == "" || req.Status == "" {
		return errApptUpdateRequired
	}
	if err := a.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	date, err := time.Parse(utils.DateTimeLayout, req.AppointmentDate)
	if err != nil {
		return apierror.MalformedBodyError
	}

	if apierr := a.checkPatientOwned(req.PatientID, userID); apierr != nil {
		return apierr
	}

	appt := &entity.Appointment{
		ID:              id,
		UserID:          userID,
		PatientID:       req.PatientID,
		AppointmentDate: date,
		Reason:          nilIfEmpty(req.Reason),
		Status:          req.Status,
	}
	rows, err := a.AppointmentRepo.Update(appt)
	if err != nil {
		log.Errorf("failed to update appointment %d for user %d: %v", id, userID, err)
		return apierror.NewSimple(500, "Failed to update appointment. Please try again.")
	}
	if rows == 0 {
		return errApptNoChanges
	}
	return nil
}

// AddForm assembles the creation form: the patient dropdown plus an
// optional preselected patient.
func (a *DefaultAppointmentService) AddForm(userID, preselectPatientID int) (*AppointmentFormView, apierror.ErrorResponse) {
	patients, err := a.PatientRepo.FindAllForUser(userID)
	if err != nil {
		log.Errorf("failed to fetch patients for appointment form: %v", err)
		return nil, apierror.NewSimple(500, "Could not load patient list.")
	}

	form := &AppointmentFormView{Patients: toPatientOptions(patients)}
	if preselectPatientID != 0 {
		form.Appointment = &AppointmentFormData{PatientID: preselectPatientID, Status: entity.StatusScheduled}
	}
	return form, nil
}

// EditForm fetches the appointment and the patient dropdown concurrently.
func (a *DefaultAppointmentService) EditForm(userID, id int) (*AppointmentFormView, apierror.ErrorResponse) {
	var (
		g        errgroup.Group
		appt     *entity.Appointment
		patients []*entity.Patient
	)
	g.Go(func() error {
		var err error
		appt, err = a.AppointmentRepo.FindByID(id, userID)
		return err
	})
	g.Go(func() error {
		var err error
		patients, err = a.PatientRepo.FindAllForUser(userID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("failed to fetch appointment %d edit form: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, errApptNotFound
	}

	return &AppointmentFormView{
		Appointment: &AppointmentFormData{
			ID:              appt.ID,
			PatientID:       appt.PatientID,
			AppointmentDate: appt.AppointmentDate.Format(utils.DateTimeLayout),
			Reason:          strValue(appt.Reason),
			Status:          appt.Status,
		},
		Patients: toPatientOptions(patients),
	}, nil
}

func (a *DefaultAppointmentService) Delete(userID, id int) apierror.ErrorResponse {
	rows, err := a.AppointmentRepo.Delete(id, userID)
	if err != nil {
		log.Errorf("failed to delete appointment %d for user %d: %v", id, userID, err)
		return apierror.NewSimple(500, "Error deleting appointment. Please try again.")
	}
	if rows == 0 {
		return errApptNotFound
	}
	return nil
}

// MarkComplete flips an appointment to Completed. A repeat call affects
// zero rows and reports "not found or already updated".
func (a *DefaultAppointmentService) MarkComplete(userID, id int) apierror.ErrorResponse {
	return a.setStatus(userID, id, entity.StatusCompleted)
}

func (a *DefaultAppointmentService) Cancel(userID, id int) apierror.ErrorResponse {
	return a.setStatus(userID, id, entity.StatusCancelled)
}

func (a *DefaultAppointmentService) setStatus(userID, id int, status string) apierror.ErrorResponse {
	rows, err := a.AppointmentRepo.UpdateStatus(id, userID, status)
	if err != nil {
		log.Errorf("failed to set appointment %d status to %s: %v", id, status, err)
		return apierror.NewSimple(500, "Failed to update appointment status.")
	}
	if rows == 0 {
		return errApptAlreadyUpdated
	}
	return nil
}

func (a *DefaultAppointmentService) checkPatientOwned(patientID, userID int) apierror.ErrorResponse {
	patient, err := a.PatientRepo.FindByID(patientID, userID)
	if err != nil {
		log.Errorf("failed to verify patient %d ownership: %v", patientID, err)
		return apierror.InternalServerError
	}
	if patient == nil {
		return errApptPatientUnknown
	}
	return nil
}

func toPatientOptions(patients []*entity.Patient) []*PatientOption {
	options := make([]*PatientOption, len(patients))
	for i, patient := range patients {
		options[i] = &PatientOption{
			ID:   patient.ID,
			Name: patient.FirstName + " " + patient.LastName,
		}
	}
	return options
}
