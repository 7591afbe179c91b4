package apierror

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is an error with an HTTP status attached. Services return
// it so routes can decide between re-rendering a form, flashing a message
// and redirecting, or failing generically.
type ErrorResponse interface {
	error
	Code() int
}

type simpleError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *simpleError) Code() int {
	return e.StatusCode
}

func (e *simpleError) Error() string {
	return e.Message
}

func NewSimple(code int, message string) ErrorResponse {
	return &simpleError{StatusCode: code, Message: message}
}

var (
	InternalServerError = NewSimple(500, "Something went wrong. Please try again.")
	NotFoundError       = NewSimple(404, "Not found.")
	MalformedBodyError  = NewSimple(400, "Malformed request body.")
)

// FromValidationError turns the first validator violation into a 400 with a
// readable message.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return MalformedBodyError
	}

	v := verrs[0]
	var msg string
	switch v.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required.", v.Field())
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters long.", v.Field(), v.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters long.", v.Field(), v.Param())
	case "email":
		msg = fmt.Sprintf("%s must be a valid email address.", v.Field())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s.", v.Field(), v.Param())
	case "dateonly":
		msg = fmt.Sprintf("%s must be a YYYY-MM-DD date.", v.Field())
	case "datetimelocal":
		msg = fmt.Sprintf("%s must be a YYYY-MM-DDTHH:MM date and time.", v.Field())
	default:
		msg = fmt.Sprintf("%s is invalid.", v.Field())
	}
	return NewSimple(400, msg)
}
