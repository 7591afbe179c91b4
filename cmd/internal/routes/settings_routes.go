package routes

import (
	"fmt"
	"net/http"

	"clinicdesk/cmd/internal/middleware"
	"clinicdesk/cmd/internal/service"
	"clinicdesk/cmd/internal/session"
	"clinicdesk/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type SettingsService interface {
	Overview(userID int) (*service.SettingsProfileView, apierror.ErrorResponse)
	ChangePassword(userID int, req *service.ChangePasswordRequest) apierror.ErrorResponse
	UpdateInfo(userID int, req *service.UpdateInfoRequest) apierror.ErrorResponse
	DeleteAccount(userID int) apierror.ErrorResponse
	FactoryReset(userID int) apierror.ErrorResponse
	Export(userID int) ([]byte, string, apierror.ErrorResponse)
}

type DefaultSettingsRoute struct {
	SettingsService SettingsService
	Sessions        *session.Manager
}

func NewSettingsDefault(settingsService SettingsService, sessions *session.Manager) *DefaultSettingsRoute {
	return &DefaultSettingsRoute{SettingsService: settingsService, Sessions: sessions}
}

func (s *DefaultSettingsRoute) GetSettings(c echo.Context) error {
	profile, apierr := s.SettingsService.Overview(middleware.UserID(c))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":     profile,
		"flash":    s.Sessions.PopFlash(middleware.SessionID(c)),
		"username": middleware.Username(c),
	})
}

// ChangePassword reports success and every failure through the settings
// page flash, so the form never holds password text across a render.
func (s *DefaultSettingsRoute) ChangePassword(c echo.Context) error {
	var req service.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := s.SettingsService.ChangePassword(middleware.UserID(c), &req); apierr != nil {
		return redirectWithFailure(c, s.Sessions, apierr.Error(), "/settings")
	}
	return redirectWithSuccess(c, s.Sessions, "Password updated successfully!", "/settings")
}

// UpdateInfo saves the profile and refreshes the username cached on the
// session row, so the header shows the new name immediately.
func (s *DefaultSettingsRoute) UpdateInfo(c echo.Context) error {
	var req service.UpdateInfoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := s.SettingsService.UpdateInfo(middleware.UserID(c), &req); apierr != nil {
		return redirectWithFailure(c, s.Sessions, apierr.Error(), "/settings")
	}

	_ = s.Sessions.UpdateUsername(middleware.SessionID(c), req.Username)
	return redirectWithSuccess(c, s.Sessions, "Information updated successfully!", "/settings")
}

// ExportData streams the account's data as a CSV attachment.
func (s *DefaultSettingsRoute) ExportData(c echo.Context) error {
	data, filename, apierr := s.SettingsService.Export(middleware.UserID(c))
	if apierr != nil {
		return redirectWithFailure(c, s.Sessions, apierr.Error(), "/settings")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// FactoryReset wipes patients and appointments but keeps the account.
func (s *DefaultSettingsRoute) FactoryReset(c echo.Context) error {
	if apierr := s.SettingsService.FactoryReset(middleware.UserID(c)); apierr != nil {
		return redirectWithFailure(c, s.Sessions, apierr.Error(), "/settings")
	}
	return redirectWithSuccess(c, s.Sessions, "All patient and appointment data has been deleted.", "/settings")
}

// DeleteAccount removes the user and everything cascading from it, then
// ends the session.
func (s *DefaultSettingsRoute) DeleteAccount(c echo.Context) error {
	userID := middleware.UserID(c)
	if apierr := s.SettingsService.DeleteAccount(userID); apierr != nil {
		return redirectWithFailure(c, s.Sessions, apierr.Error(), "/settings")
	}

	_ = s.Sessions.DestroyAllForUser(userID)
	c.SetCookie(s.Sessions.ExpiredCookie())
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}
