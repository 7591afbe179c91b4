package routes

import (
	"net/http"

	"clinicdesk/cmd/internal/middleware"
	"clinicdesk/cmd/internal/service"
	"clinicdesk/cmd/internal/session"
	"clinicdesk/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type PatientService interface {
	List(userID int, search string, page int) (*service.PatientListView, apierror.ErrorResponse)
	Create(userID int, req *service.PatientRequest) apierror.ErrorResponse
	Get(userID, id int) (*service.PatientResponse, apierror.ErrorResponse)
	Update(userID, id int, req *service.PatientRequest) apierror.ErrorResponse
	Delete(userID, id int) apierror.ErrorResponse
	Details(userID, id int) (*service.PatientDetailsView, apierror.ErrorResponse)
}

type DefaultPatientRoute struct {
	PatientService PatientService
	Sessions       *session.Manager
}

func NewPatientDefault(patientService PatientService, sessions *session.Manager) *DefaultPatientRoute {
	return &DefaultPatientRoute{PatientService: patientService, Sessions: sessions}
}

func (p *DefaultPatientRoute) GetPatients(c echo.Context) error {
	view, apierr := p.PatientService.List(middleware.UserID(c), c.QueryParam("search"), pageParam(c))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":     view,
		"flash":    p.Sessions.PopFlash(middleware.SessionID(c)),
		"username": middleware.Username(c),
	})
}

func (p *DefaultPatientRoute) GetAddPatient(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"flash": p.Sessions.PopFlash(middleware.SessionID(c)),
	})
}

// AddPatient creates the record or re-renders the form with the submitted
// values and the validation message.
func (p *DefaultPatientRoute) AddPatient(c echo.Context) error {
	var req service.PatientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := p.PatientService.Create(middleware.UserID(c), &req); apierr != nil {
		return c.JSON(apierr.Code(), echo.Map{
			"error":   apierr.Error(),
			"patient": &req,
		})
	}
	return redirectWithSuccess(c, p.Sessions, "Patient added successfully!", "/patients")
}

func (p *DefaultPatientRoute) GetEditPatient(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewSimple(400, "ID is not a number"))
	}

	patient, apierr := p.PatientService.Get(middleware.UserID(c), id)
	if apierr != nil {
		return redirectWithFailure(c, p.Sessions, apierr.Error(), "/patients")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  patient,
		"flash": p.Sessions.PopFlash(middleware.SessionID(c)),
	})
}

func (p *DefaultPatientRoute) EditPatient(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewSimple(400, "ID is not a number"))
	}

	var req service.PatientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := p.PatientService.Update(middleware.UserID(c), id, &req); apierr != nil {
		if apierr.Code() == http.StatusNotFound {
			return redirectWithFailure(c, p.Sessions, apierr.Error(), "/patients")
		}
		return c.JSON(apierr.Code(), echo.Map{
			"error":   apierr.Error(),
			"patient": &req,
		})
	}
	return redirectWithSuccess(c, p.Sessions, "Patient updated successfully!", "/patients")
}

// DeletePatient removes the record unless appointments still reference it;
// either way the outcome lands on the list page as a flash.
func (p *DefaultPatientRoute) DeletePatient(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewSimple(400, "ID is not a number"))
	}

	if apierr := p.PatientService.Delete(middleware.UserID(c), id); apierr != nil {
		return redirectWithFailure(c, p.Sessions, apierr.Error(), "/patients")
	}
	return redirectWithSuccess(c, p.Sessions, "Patient deleted successfully!", "/patients")
}

func (p *DefaultPatientRoute) GetPatientDetails(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewSimple(400, "ID is not a number"))
	}

	details, apierr := p.PatientService.Details(middleware.UserID(c), id)
	if apierr != nil {
		return redirectWithFailure(c, p.Sessions, apierr.Error(), "/patients")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":     details,
		"flash":    p.Sessions.PopFlash(middleware.SessionID(c)),
		"username": middleware.Username(c),
	})
}
