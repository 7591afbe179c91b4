package utils

import (
	"reflect"
	"strings"
	"time"
)

// Layouts for the date formats crossing the HTTP boundary.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04" // HTML datetime-local
	DisplayLayout  = "2006-01-02 15:04"
)

// DayStart truncates an instant to local midnight.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AgeAt computes full years between a date of birth and a reference date.
// On the Nth anniversary the age is exactly N; the day before it is N-1.
func AgeAt(dob, on time.Time) int {
	age := on.Year() - dob.Year()
	anniversary := time.Date(on.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, on.Location())
	if DayStart(on).Before(anniversary) {
		age--
	}
	return age
}

func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(sanitizeString(field.String()))

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(sanitizeString(field.Index(j).String()))
				}
			}
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
