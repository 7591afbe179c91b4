package routes

import (
	"net/http"

	"clinicdesk/cmd/internal/middleware"
	"clinicdesk/cmd/internal/service"
	"clinicdesk/cmd/internal/session"
	"clinicdesk/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type ReportService interface {
	Dashboard(userID int) (*service.DashboardView, apierror.ErrorResponse)
	Reports(userID int) (*service.ReportsView, apierror.ErrorResponse)
}

type DefaultReportRoute struct {
	ReportService ReportService
	Sessions      *session.Manager
}

func NewReportDefault(reportService ReportService, sessions *session.Manager) *DefaultReportRoute {
	return &DefaultReportRoute{ReportService: reportService, Sessions: sessions}
}

// GetDashboard renders the stats page. When the query batch fails the page
// still renders, with placeholder values and a single error banner.
func (r *DefaultReportRoute) GetDashboard(c echo.Context) error {
	flash := r.Sessions.PopFlash(middleware.SessionID(c))

	view, apierr := r.ReportService.Dashboard(middleware.UserID(c))
	if apierr != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"data":     service.EmptyDashboardView(),
			"error":    apierr.Error(),
			"flash":    flash,
			"username": middleware.Username(c),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":     view,
		"flash":    flash,
		"username": middleware.Username(c),
	})
}

func (r *DefaultReportRoute) GetReports(c echo.Context) error {
	flash := r.Sessions.PopFlash(middleware.SessionID(c))

	view, apierr := r.ReportService.Reports(middleware.UserID(c))
	if apierr != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"data":     service.EmptyReportsView(),
			"error":    apierr.Error(),
			"flash":    flash,
			"username": middleware.Username(c),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":     view,
		"flash":    flash,
		"username": middleware.Username(c),
	})
}
