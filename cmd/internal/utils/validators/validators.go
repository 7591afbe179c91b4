package validators

import (
	"time"

	"clinicdesk/cmd/internal/utils"
	"github.com/go-playground/validator/v10"
)

// IsDateOnly accepts empty values or a YYYY-MM-DD date. Pair it with
// `required` when the field is mandatory.
func IsDateOnly(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse(utils.DateLayout, value)
	return err == nil
}

// IsDateTimeLocal accepts empty values or an HTML datetime-local value
// (YYYY-MM-DDTHH:MM).
func IsDateTimeLocal(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse(utils.DateTimeLayout, value)
	return err == nil
}
