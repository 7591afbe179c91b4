package service

import (
	"fmt"
	"time"

	"clinicdesk/cmd/internal/domain/entity"
	"clinicdesk/cmd/internal/utils"
	"clinicdesk/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

// PageSize is the fixed page size of every list page.
const PageSize = 15

type PatientRepository interface {
	FindByID(id, userID int) (*entity.Patient, error)
	Search(userID int, search string, limit, offset int) ([]*entity.Patient, error)
	CountSearch(userID int, search string) (int64, error)
	FindAllForUser(userID int) ([]*entity.Patient, error)
	Save(patient *entity.Patient) error
	Update(patient *entity.Patient) (int64, error)
	Delete(id, userID int) (int64, error)
	DeleteAllForUser(userID int) error
}

type PatientRequest struct {
	FirstName      string `json:"first_name" form:"first_name" validate:"max=100"`
	LastName       string `json:"last_name" form:"last_name" validate:"max=100"`
	DateOfBirth    string `json:"date_of_birth" form:"date_of_birth" validate:"dateonly"`
	Gender         string `json:"gender" form:"gender" validate:"max=32"`
	ContactNumber  string `json:"contact_number" form:"contact_number" validate:"max=32"`
	Email          string `json:"email" form:"email" validate:"max=254"`
	Address        string `json:"address" form:"address" validate:"max=500"`
	MedicalHistory string `json:"medical_history" form:"medical_history" validate:"max=5000"`
}

type PatientResponse struct {
	ID             int    `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	Age            *int   `json:"age,omitempty"`
	Gender         string `json:"gender,omitempty"`
	ContactNumber  string `json:"contact_number,omitempty"`
	Email          string `json:"email,omitempty"`
	Address        string `json:"address,omitempty"`
	MedicalHistory string `json:"medical_history,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type PatientListView struct {
	Patients    []*PatientResponse `json:"patients"`
	SearchQuery string             `json:"search_query"`
	CurrentPage int                `json:"current_page"`
	TotalPages  int                `json:"total_pages"`
	TotalItems  int64              `json:"total_items"`
}

// PatientOption is a dropdown entry for the appointment forms.
type PatientOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type AppointmentHistoryEntry struct {
	ID     int    `json:"id"`
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
	Status string `json:"status"`
}

type PatientDetailsView struct {
	Patient      *PatientResponse           `json:"patient"`
	Appointments []*AppointmentHistoryEntry `json:"appointments"`
}

var (
	errPatientNamesRequired = apierror.NewSimple(400, "First Name and Last Name are required.")
	errPatientNotFound      = apierror.NewSimple(404, "Patient not found.")
	errPatientNoChanges     = apierror.NewSimple(404, "Patient not found or no changes made.")
)

type DefaultPatientService struct {
	PatientRepo     PatientRepository
	AppointmentRepo AppointmentRepository
	Validate        *validator.Validate
}

func NewPatientService(patientRepo PatientRepository, apptRepo AppointmentRepository, validate *validator.Validate) *DefaultPatientService {
	return &DefaultPatientService{PatientRepo: patientRepo, AppointmentRepo: apptRepo, Validate: validate}
}

// List returns one page of the user's patients, with the total count
// fetched concurrently.
func (p *DefaultPatientService) List(userID int, search string, page int) (*PatientListView, apierror.ErrorResponse) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize

	var (
		g        errgroup.Group
		total    int64
		patients []*entity.Patient
	)
	g.Go(func() error {
		var err error
		total, err = p.PatientRepo.CountSearch(userID, search)
		return err
	})
	g.Go(func() error {
		var err error
		patients, err = p.PatientRepo.Search(userID, search, PageSize, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("failed to fetch patients for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	now := time.Now()
	resp := make([]*PatientResponse, len(patients))
	for i, patient := range patients {
		resp[i] = toPatientResponse(patient, now)
	}
	return &PatientListView{
		Patients:    resp,
		SearchQuery: search,
		CurrentPage: page,
		TotalPages:  totalPages(total),
		TotalItems:  total,
	}, nil
}

func (p *DefaultPatientService) Create(userID int, req *PatientRequest) apierror.ErrorResponse {
	patient, apierr := p.patientFromRequest(req)
	if apierr != nil {
		return apierr
	}

	patient.UserID = userID
	if err := p.PatientRepo.Save(patient); err != nil {
		log.Errorf("failed to add patient for user %d: %v", userID, err)
		return apierror.NewSimple(500, "Failed to add patient. Please try again.")
	}
	return nil
}

func (p *DefaultPatientService) Update(userID, id int, req *PatientRequest) apierror.ErrorResponse {
	patient, apierr := p.patientFromRequest(req)
	if apierr != nil {
		return apierr
	}

	patient.ID = id
	patient.UserID = userID
	rows, err := p.PatientRepo.Update(patient)
	if err != nil {
		log.Errorf("failed to update patient %d for user %d: %v", id, userID, err)
		return apierror.NewSimple(500, "Failed to update patient. Please try again.")
	}
	if rows == 0 {
		return errPatientNoChanges
	}
	return nil
}

// Get fetches one owned patient, for the edit form. A foreign or missing
// id is the same "not found" outcome.
func (p *DefaultPatientService) Get(userID, id int) (*PatientResponse, apierror.ErrorResponse) {
	patient, err := p.PatientRepo.FindByID(id, userID)
	if err != nil {
		log.Errorf("failed to fetch patient %d for user %d: %v", id, userID, err)
		return nil, apierror.InternalServerError
	}
	if patient == nil {
		return nil, errPatientNotFound
	}
	return toPatientResponse(patient, time.Now()), nil
}

// Delete removes a patient unless appointments still reference it.
func (p *DefaultPatientService) Delete(userID, id int) apierror.ErrorResponse {
	count, err := p.AppointmentRepo.CountByPatient(id, userID)
	if err != nil {
		log.Errorf("failed to count appointments for patient %d: %v", id, err)
		return apierror.NewSimple(500, "Error checking existing appointments. Patient not deleted.")
	}
	if count > 0 {
		return apierror.NewSimple(409, fmt.Sprintf(
			"Cannot delete patient. They have %d associated appointment(s). Delete or reassign appointments first.", count))
	}

	rows, err := p.PatientRepo.Delete(id, userID)
	if err != nil {
		log.Errorf("failed to delete patient %d for user %d: %v", id, userID, err)
		return apierror.NewSimple(500, "Error deleting patient. Please try again.")
	}
	if rows == 0 {
		return errPatientNotFound
	}
	return nil
}

// Details returns the patient together with their full appointment
// history, newest first. Both reads run concurrently.
func (p *DefaultPatientService) Details(userID, id int) (*PatientDetailsView, apierror.ErrorResponse) {
	var (
		g       errgroup.Group
		patient *entity.Patient
		appts   []*entity.Appointment
	)
	g.Go(func() error {
		var err error
		patient, err = p.PatientRepo.FindByID(id, userID)
		return err
	})
	g.Go(func() error {
		var err error
		appts, err = p.AppointmentRepo.FindByPatient(id, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("failed to fetch details of patient %d: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if patient == nil {
		return nil, errPatientNotFound
	}

	history := make([]*AppointmentHistoryEntry, len(appts))
	for i, appt := range appts {
		history[i] = &AppointmentHistoryEntry{
			ID:     appt.ID,
			Date:   appt.AppointmentDate.Format(utils.DisplayLayout),
			Reason: strValue(appt.Reason),
			Status: appt.Status,
		}
	}
	return &PatientDetailsView{
		Patient:      toPatientResponse(patient, time.Now()),
		Appointments: history,
	}, nil
}

// Options lists the user's patients for the appointment form dropdown.
func (p *DefaultPatientService) Options(userID int) ([]*PatientOption, apierror.ErrorResponse) {
	patients, err := p.PatientRepo.FindAllForUser(userID)
	if err != nil {
		log.Errorf("failed to fetch patient options for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	options := make([]*PatientOption, len(patients))
	for i, patient := range patients {
		options[i] = &PatientOption{
			ID:   patient.ID,
			Name: patient.FirstName + " " + patient.LastName,
		}
	}
	return options, nil
}

func (p *DefaultPatientService) patientFromRequest(req *PatientRequest) (*entity.Patient, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if req.FirstName == "" || req.LastName == "" {
		return nil, errPatientNamesRequired
	}
	if err := p.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	patient := &entity.Patient{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Gender:         nilIfEmpty(req.Gender),
		ContactNumber:  nilIfEmpty(req.ContactNumber),
		Email:          nilIfEmpty(req.Email),
		Address:        nilIfEmpty(req.Address),
		MedicalHistory: nilIfEmpty(req.MedicalHistory),
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(utils.DateLayout, req.DateOfBirth)
		if err != nil {
			return nil, apierror.NewSimple(400, "Date of Birth must be a YYYY-MM-DD date.")
		}
		patient.DateOfBirth = &dob
	}
	return patient, nil
}

func toPatientResponse(patient *entity.Patient, now time.Time) *PatientResponse {
	resp := &PatientResponse{
		ID:             patient.ID,
		FirstName:      patient.FirstName,
		LastName:       patient.LastName,
		Gender:         strValue(patient.Gender),
		ContactNumber:  strValue(patient.ContactNumber),
		Email:          strValue(patient.Email),
		Address:        strValue(patient.Address),
		MedicalHistory: strValue(patient.MedicalHistory),
		CreatedAt:      patient.CreatedAt.Format(utils.DisplayLayout),
	}
	if patient.DateOfBirth != nil {
		resp.DateOfBirth = patient.DateOfBirth.Format(utils.DateLayout)
		age := utils.AgeAt(*patient.DateOfBirth, now)
		resp.Age = &age
	}
	return resp
}

func totalPages(total int64) int {
	return int((total + PageSize - 1) / PageSize)
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
