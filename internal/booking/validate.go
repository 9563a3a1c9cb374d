package booking

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var phonePattern = regexp.MustCompile(`^[0-9+\-\s().]{9,}$`)

// FieldError is one violated form rule.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rule the form violates. It is raised before
// any request is sent.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "Please fix the following: " + strings.Join(msgs, "; ")
}

// Has reports whether field is among the violations.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func validateForm(f Form, window dateWindow) *ValidationError {
	var fields []FieldError
	if utf8.RuneCountInString(strings.TrimSpace(f.ClientName)) < 2 {
		fields = append(fields, FieldError{"clientName", "Name must be at least 2 characters"})
	}
	if !phonePattern.MatchString(strings.TrimSpace(f.ClientPhone)) {
		fields = append(fields, FieldError{"clientPhone", "Phone must have at least 9 digits"})
	}
	if strings.TrimSpace(string(f.ServiceID)) == "" {
		fields = append(fields, FieldError{"serviceId", "Select a service"})
	}
	if strings.TrimSpace(string(f.BarberID)) == "" {
		fields = append(fields, FieldError{"barberId", "Select a barber"})
	}
	if strings.TrimSpace(f.Date) == "" {
		fields = append(fields, FieldError{"appointmentDate", "Select a date"})
	} else if _, err := window.check(f.Date); err != nil {
		fields = append(fields, FieldError{"appointmentDate", window.rejection(err)})
	}
	if strings.TrimSpace(f.Time) == "" {
		fields = append(fields, FieldError{"appointmentTime", "Select a time"})
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
