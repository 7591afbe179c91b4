package middleware

import (
	"net/http"

	"clinicdesk/cmd/internal/session"
	"github.com/labstack/echo/v4"
)

// Context keys set by RequireSession.
const (
	CtxUserID    = "userID"
	CtxUsername  = "username"
	CtxSessionID = "sessionID"
)

// RequireSession is the auth gate for the protected areas: requests without
// a live session are redirected to the login page with no body.
func RequireSession(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusSeeOther, "/auth/login")
			}

			sess, err := sessions.Resolve(cookie.Value)
			if err != nil || sess == nil {
				return c.Redirect(http.StatusSeeOther, "/auth/login")
			}

			c.Set(CtxUserID, sess.UserID)
			c.Set(CtxUsername, sess.Username)
			c.Set(CtxSessionID, sess.ID)
			return next(c)
		}
	}
}

// UserID reads the authenticated user from the request context.
func UserID(c echo.Context) int {
	id, _ := c.Get(CtxUserID).(int)
	return id
}

func Username(c echo.Context) string {
	name, _ := c.Get(CtxUsername).(string)
	return name
}

func SessionID(c echo.Context) string {
	id, _ := c.Get(CtxSessionID).(string)
	return id
}
