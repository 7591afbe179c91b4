package routes

import (
	"net/http"
	"net/url"
	"strconv"

	"clinicdesk/cmd/internal/middleware"
	"clinicdesk/cmd/internal/session"
	"github.com/labstack/echo/v4"
)

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

// redirectWithSuccess flashes a one-shot message onto the session and sends
// the browser to the target page, which pops it on render.
func redirectWithSuccess(c echo.Context, sessions *session.Manager, msg, target string) error {
	sessions.Success(middleware.SessionID(c), msg)
	return c.Redirect(http.StatusSeeOther, target)
}

func redirectWithFailure(c echo.Context, sessions *session.Manager, msg, target string) error {
	sessions.Failure(middleware.SessionID(c), msg)
	return c.Redirect(http.StatusSeeOther, target)
}

// appointmentsTarget sends list actions back to /appointments, keeping the
// caller's search and pagination query when the Referer carries one.
func appointmentsTarget(c echo.Context) string {
	target := "/appointments"
	if ref := c.Request().Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.RawQuery != "" {
			target += "?" + u.RawQuery
		}
	}
	return target
}
