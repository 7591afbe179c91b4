package session

import (
	"errors"
	"net/http"
	"time"

	"clinicdesk/cmd/internal/domain/entity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the signed session key.
const CookieName = "clinic_session"

// TTL is the fixed session lifetime.
const TTL = 7 * 24 * time.Hour

type Repository interface {
	FindByID(id string) (*entity.Session, error)
	Save(sess *entity.Session) error
	Delete(id string) error
	DeleteForUser(userID int) error
	UpdateUsername(id, username string) error
	SetFlash(id string, success, failure *string) error
	PopFlash(id string, success, failure *string) (bool, error)
}

// Flash is the one-shot message pair read exactly once per response.
type Flash struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Manager owns the server-side session rows and the cookie that references
// them. The cookie value is the opaque session key wrapped in an HS256
// token, so a tampered cookie fails verification before any lookup.
type Manager struct {
	Sessions Repository
	secret   []byte
}

func NewManager(sessions Repository, secret string) *Manager {
	return &Manager{Sessions: sessions, secret: []byte(secret)}
}

// Issue creates a session row for the user and returns the cookie to set.
func (m *Manager) Issue(userID int, username string) (*http.Cookie, error) {
	sess := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(TTL),
	}
	if err := m.Sessions.Save(sess); err != nil {
		return nil, err
	}

	token, err := m.sign(sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Resolve verifies the cookie value and loads the live session behind it.
// Invalid, unknown and expired sessions all resolve to nil.
func (m *Manager) Resolve(cookieValue string) (*entity.Session, error) {
	id, err := m.parse(cookieValue)
	if err != nil {
		return nil, nil
	}

	sess, err := m.Sessions.FindByID(id)
	if err != nil || sess == nil {
		return nil, err
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = m.Sessions.Delete(sess.ID)
		return nil, nil
	}
	return sess, nil
}

func (m *Manager) Destroy(id string) error {
	return m.Sessions.Delete(id)
}

// DestroyAllForUser drops every session of a user, for account deletion.
func (m *Manager) DestroyAllForUser(userID int) error {
	return m.Sessions.DeleteForUser(userID)
}

// ExpiredCookie returns a cookie that clears the client-side half.
func (m *Manager) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) Success(id, msg string) {
	_ = m.Sessions.SetFlash(id, &msg, nil)
}

func (m *Manager) Failure(id, msg string) {
	_ = m.Sessions.SetFlash(id, nil, &msg)
}

// PopFlash reads and clears the message slot. The clear is conditional on
// the values read, so concurrent requests race for a single winner and the
// message renders exactly once.
func (m *Manager) PopFlash(id string) Flash {
	sess, err := m.Sessions.FindByID(id)
	if err != nil || sess == nil {
		return Flash{}
	}
	if sess.FlashSuccess == nil && sess.FlashError == nil {
		return Flash{}
	}

	popped, err := m.Sessions.PopFlash(id, sess.FlashSuccess, sess.FlashError)
	if err != nil || !popped {
		return Flash{}
	}

	var flash Flash
	if sess.FlashSuccess != nil {
		flash.Success = *sess.FlashSuccess
	}
	if sess.FlashError != nil {
		flash.Error = *sess.FlashError
	}
	return flash
}

// UpdateUsername refreshes the username cached on the session row after a
// profile update.
func (m *Manager) UpdateUsername(id, username string) error {
	return m.Sessions.UpdateUsername(id, username)
}

func (m *Manager) sign(id string, expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": id,
		"exp": jwt.NewNumericDate(expires),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parse(value string) (string, error) {
	token, err := jwt.Parse(value, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid session cookie")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid session claims")
	}
	id, ok := claims["sid"].(string)
	if !ok || id == "" {
		return "", errors.New("missing session id")
	}
	return id, nil
}
