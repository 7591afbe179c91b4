package routes

import (
	"net/http"

	"clinicdesk/cmd/internal/domain/entity"
	"clinicdesk/cmd/internal/middleware"
	"clinicdesk/cmd/internal/service"
	"clinicdesk/cmd/internal/session"
	"clinicdesk/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type AuthService interface {
	Register(req *service.RegisterRequest) apierror.ErrorResponse
	Login(req *service.LoginRequest) (*entity.User, apierror.ErrorResponse)
}

type DefaultAuthRoute struct {
	AuthService AuthService
	Sessions    *session.Manager
}

func NewAuthDefault(authService AuthService, sessions *session.Manager) *DefaultAuthRoute {
	return &DefaultAuthRoute{AuthService: authService, Sessions: sessions}
}

func (a *DefaultAuthRoute) GetRegister(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// Register creates the account and sends the browser to the login page.
// Failures re-render the form with the submitted names, never the passwords.
func (a *DefaultAuthRoute) Register(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := a.AuthService.Register(&req); apierr != nil {
		return c.JSON(apierr.Code(), echo.Map{
			"error":    apierr.Error(),
			"username": req.Username,
			"email":    req.Email,
		})
	}
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

func (a *DefaultAuthRoute) GetLogin(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// Login verifies the credentials, opens a server-side session and sets the
// signed cookie pointing at it.
func (a *DefaultAuthRoute) Login(c echo.Context) error {
	var req service.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	user, apierr := a.AuthService.Login(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), echo.Map{
			"error":    apierr.Error(),
			"username": req.Username,
		})
	}

	cookie, err := a.Sessions.Issue(user.ID, user.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apierror.InternalServerError)
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout drops the session row and clears the cookie.
func (a *DefaultAuthRoute) Logout(c echo.Context) error {
	_ = a.Sessions.Destroy(middleware.SessionID(c))
	c.SetCookie(a.Sessions.ExpiredCookie())
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}
