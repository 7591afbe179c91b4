package routes

import (
	"net/http"
	"strconv"

	"clinicdesk/cmd/internal/middleware"
	"clinicdesk/cmd/internal/service"
	"clinicdesk/cmd/internal/session"
	"clinicdesk/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type AppointmentService interface {
	List(userID int, searchPatient, status string, page int) (*service.AppointmentListView, apierror.ErrorResponse)
	Create(userID int, req *service.AppointmentRequest) apierror.ErrorResponse
	Update(userID, id int, req *service.AppointmentRequest) apierror.ErrorResponse
	AddForm(userID, preselectPatientID int) (*service.AppointmentFormView, apierror.ErrorResponse)
	EditForm(userID, id int) (*service.AppointmentFormView, apierror.ErrorResponse)
	Delete(userID, id int) apierror.ErrorResponse
	MarkComplete(userID, id int) apierror.ErrorResponse
	Cancel(userID, id int) apierror.ErrorResponse
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
	Sessions           *session.Manager
}

func NewAppointmentDefault(apptService AppointmentService, sessions *session.Manager) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService, Sessions: sessions}
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	view, apierr := a.AppointmentService.List(
		middleware.UserID(c),
		c.QueryParam("search_patient"),
		c.QueryParam("status"),
		pageParam(c),
	)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":     view,
		"flash":    a.Sessions.PopFlash(middleware.SessionID(c)),
		"username": middleware.Username(c),
	})
}

// GetAddAppointment serves the creation form: the patient dropdown plus an
// optional ?patient_id= preselection.
func (a *DefaultAppointmentRoute) GetAddAppointment(c echo.Context) error {
	preselect, _ := strconv.Atoi(c.QueryParam("patient_id"))

	form, apierr := a.AppointmentService.AddForm(middleware.UserID(c), preselect)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  form,
		"flash": a.Sessions.PopFlash(middleware.SessionID(c)),
	})
}

func (a *DefaultAppointmentRoute) AddAppointment(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := a.AppointmentService.Create(middleware.UserID(c), &req); apierr != nil {
		return c.JSON(apierr.Code(), echo.Map{
			"error":       apierr.Error(),
			"appointment": &req,
		})
	}
	return redirectWithSuccess(c, a.Sessions, "Appointment added successfully!", "/appointments")
}

func (a *DefaultAppointmentRoute) GetEditAppointment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewSimple(400, "ID is not a number"))
	}

	form, apierr := a.AppointmentService.EditForm(middleware.UserID(c), id)
	if apierr != nil {
		return redirectWithFailure(c, a.Sessions, apierr.Error(), "/appointments")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  form,
		"flash": a.Sessions.PopFlash(middleware.SessionID(c)),
	})
}

// EditAppointment saves the update; a failed validation re-renders the
// attempted values so nothing typed is lost.
func (a *DefaultAppointmentRoute) EditAppointment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewSimple(400, "ID is not a number"))
	}

	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := a.AppointmentService.Update(middleware.UserID(c), id, &req); apierr != nil {
		if apierr.Code() == http.StatusNotFound {
			return redirectWithFailure(c, a.Sessions, apierr.Error(), "/appointments")
		}
		return c.JSON(apierr.Code(), echo.Map{
			"error":       apierr.Error(),
			"appointment": &req,
		})
	}
	return redirectWithSuccess(c, a.Sessions, "Appointment updated successfully!", "/appointments")
}

func (a *DefaultAppointmentRoute) DeleteAppointment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewSimple(400, "ID is not a number"))
	}

	target := appointmentsTarget(c)
	if apierr := a.AppointmentService.Delete(middleware.UserID(c), id); apierr != nil {
		return redirectWithFailure(c, a.Sessions, apierr.Error(), target)
	}
	return redirectWithSuccess(c, a.Sessions, "Appointment deleted successfully!", target)
}

func (a *DefaultAppointmentRoute) CompleteAppointment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewSimple(400, "ID is not a number"))
	}

	target := appointmentsTarget(c)
	if apierr := a.AppointmentService.MarkComplete(middleware.UserID(c), id); apierr != nil {
		return redirectWithFailure(c, a.Sessions, apierr.Error(), target)
	}
	return redirectWithSuccess(c, a.Sessions, "Appointment marked as completed!", target)
}

func (a *DefaultAppointmentRoute) CancelAppointment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewSimple(400, "ID is not a number"))
	}

	target := appointmentsTarget(c)
	if apierr := a.AppointmentService.Cancel(middleware.UserID(c), id); apierr != nil {
		return redirectWithFailure(c, a.Sessions, apierr.Error(), target)
	}
	return redirectWithSuccess(c, a.Sessions, "Appointment cancelled!", target)
}
