// Package booking drives the public appointment form: reference data,
// date-driven slot lookup, and submission.
package booking

import (
	"fmt"
	"strconv"

	"github.com/wolfman30/sly-barbershop/internal/backend"
)

// ReferencePhase tracks the service/barber list load.
type ReferencePhase int

const (
	ReferenceIdle ReferencePhase = iota
	ReferenceLoading
	ReferenceLoaded
)

// SlotPhase tracks the time selector.
type SlotPhase int

const (
	SlotsDisabled SlotPhase = iota
	SlotsLoading
	SlotsLoaded
	SlotsEmpty
	SlotsError
)

// SubmitPhase tracks the booking request.
type SubmitPhase int

const (
	SubmitIdle SubmitPhase = iota
	Submitting
	SubmitSucceeded
	SubmitFailed
)

// MessageKind selects how a Message is styled.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
	MessageInfo    MessageKind = "info"
)

// Message is the single user-facing notice shown above the form.
type Message struct {
	Kind MessageKind
	Text string
}

// Form holds what the user has typed or selected.
type Form struct {
	ClientName  string
	ClientPhone string
	ServiceID   backend.ID
	BarberID    backend.ID
	Date        string
	Time        string
}

type ReferenceState struct {
	Phase         ReferencePhase
	Services      []backend.Service
	Barbers       []backend.Barber
	ServicesError bool
	BarbersError  bool
}

type SlotState struct {
	Phase   SlotPhase
	Options []string
	Prompt  string
}

// Enabled reports whether the time selector accepts input.
func (s SlotState) Enabled() bool { return s.Phase == SlotsLoaded }

type SubmitState struct {
	Phase         SubmitPhase
	AppointmentID backend.ID
}

// State is a snapshot of one booking form.
type State struct {
	Reference ReferenceState
	Form      Form
	Slots     SlotState
	Submit    SubmitState
	Message   *Message
	Bounds    DateBounds
}

// DateBounds is the inclusive bookable range as YYYY-MM-DD.
type DateBounds struct {
	Min string
	Max string
}

// SubmitEnabled reports whether the submit control is active.
func (s State) SubmitEnabled() bool { return s.Submit.Phase != Submitting }

func (s State) clone() State {
	out := s
	out.Reference.Services = append([]backend.Service(nil), s.Reference.Services...)
	out.Reference.Barbers = append([]backend.Barber(nil), s.Reference.Barbers...)
	out.Slots.Options = append([]string(nil), s.Slots.Options...)
	if s.Message != nil {
		m := *s.Message
		out.Message = &m
	}
	return out
}

const (
	promptSelectFirst = "Select a date and barber first"
	promptLoading     = "Loading available times..."
	promptChoose      = "Select a time..."
	promptNoSlots     = "No available times"
	promptSlotsError  = "Could not load available times"
)

func disabledSlots() SlotState {
	return SlotState{Phase: SlotsDisabled, Prompt: promptSelectFirst}
}

// ServiceLabel renders a service option as "<name> - $<price> (<duration> min)".
func ServiceLabel(s backend.Service) string {
	return fmt.Sprintf("%s - $%s (%d min)", s.Name, strconv.FormatFloat(s.Price, 'f', -1, 64), s.DurationMinutes)
}
