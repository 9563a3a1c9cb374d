// Package backend is the REST client for the barbershop booking API.
package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a server-assigned identifier. The API returns numbers for most
// records; ID keeps them as text and writes numeric ids back as numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Service is a bookable service from GET /services.
type Service struct {
	ID              ID      `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration"`
}

// Barber is a staff member from GET /barbers.
type Barber struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// BookingRequest is the body of POST /appointments.
type BookingRequest struct {
	ClientName      string `json:"clientName"`
	ClientPhone     string `json:"clientPhone"`
	BarberID        ID     `json:"barberId"`
	ServiceID       ID     `json:"serviceId"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
}

// BookingConfirmation is the success body of POST /appointments.
type BookingConfirmation struct {
	AppointmentID ID `json:"appointmentId"`
}

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// wire values used by the admin API
const (
	wireConfirmed = "confirmada"
	wireCancelled = "cancelada"
)

// ParseStatus accepts either the English or the wire spelling.
func ParseStatus(raw string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirmed", wireConfirmed:
		return StatusConfirmed, true
	case "cancelled", "canceled", wireCancelled:
		return StatusCancelled, true
	}
	return "", false
}

func (s Status) wire() string {
	switch s {
	case StatusConfirmed:
		return wireConfirmed
	case StatusCancelled:
		return wireCancelled
	}
	return string(s)
}

// Appointment is an admin view of a reservation.
type Appointment struct {
	ID         ID
	ClientName string
	Email      string
	Phone      string
	Date       string // YYYY-MM-DD
	Time       string // HH:MM
	Service    string
	Barber     string
	Status     Status
	CreatedAt  time.Time
}

type appointmentWire struct {
	ID         ID     `json:"id"`
	ClientName string `json:"nombre_cliente"`
	Email      string `json:"email"`
	Phone      string `json:"telefono,omitempty"`
	Date       string `json:"fecha"`
	Time       string `json:"hora"`
	Service    string `json:"servicio"`
	Barber     string `json:"barbero,omitempty"`
	Status     string `json:"estado"`
	CreatedAt  string `json:"created_at"`
}

func (a *Appointment) UnmarshalJSON(data []byte) error {
	var w appointmentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	status, ok := ParseStatus(w.Status)
	if !ok {
		status = Status(w.Status)
	}
	*a = Appointment{
		ID:         w.ID,
		ClientName: w.ClientName,
		Email:      w.Email,
		Phone:      w.Phone,
		Date:       w.Date,
		Time:       trimSeconds(w.Time),
		Service:    w.Service,
		Barber:     w.Barber,
		Status:     status,
		CreatedAt:  parseTimestamp(w.CreatedAt),
	}
	return nil
}

// AppointmentUpdate is the full-replace body of PUT /reservas/{id}.
type AppointmentUpdate struct {
	ClientName string `json:"nombre_cliente"`
	Email      string `json:"email"`
	Date       string `json:"fecha"`
	Time       string `json:"hora"`
	Service    string `json:"servicio"`
}

// ListQuery frames one page of GET /reservas/.
type ListQuery struct {
	Skip   int
	Limit  int
	Date   string
	Status Status
}

// Page is one page of appointments plus the filtered total.
type Page struct {
	Appointments []Appointment
	Total        int
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// trimSeconds turns "09:30:00" into "09:30".
func trimSeconds(hhmm string) string {
	if len(hhmm) == len("15:04:05") && strings.Count(hhmm, ":") == 2 {
		return hhmm[:5]
	}
	return hhmm
}
