package admin

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/wolfman30/sly-barbershop/internal/backend"
)

// Action is a destructive operation that needs confirmation.
type Action string

const (
	ActionCancel Action = "cancel"
	ActionDelete Action = "delete"
)

var (
	ErrNotConfirmed  = errors.New("admin: action was not confirmed")
	ErrUnknownAction = errors.New("admin: unknown action")
	ErrEditNotOpen   = errors.New("admin: no appointment is being edited")
)

// Confirmation is the prompt shown before a destructive action.
type Confirmation struct {
	Action        Action
	AppointmentID backend.ID
	Prompt        string
}

func (c Confirmation) matches(action Action, id backend.ID) bool {
	return c.Action == action && c.AppointmentID == id
}

// Confirm records that action on id is awaiting the user's answer and
// returns the prompt to show.
func (p *Panel) Confirm(action Action, id backend.ID) (Confirmation, error) {
	var prompt string
	switch action {
	case ActionCancel:
		prompt = "Are you sure you want to cancel this appointment?"
	case ActionDelete:
		prompt = "Are you sure you want to PERMANENTLY delete this appointment? This action cannot be undone."
	default:
		return Confirmation{}, ErrUnknownAction
	}
	c := Confirmation{Action: action, AppointmentID: id, Prompt: prompt}
	p.mu.Lock()
	p.state.Pending = &c
	p.mu.Unlock()
	return c, nil
}

// Dismiss drops a pending confirmation without acting.
func (p *Panel) Dismiss() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Pending = nil
	return p.state.clone()
}

func (p *Panel) takeConfirmation(action Action, id backend.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Pending == nil || !p.state.Pending.matches(action, id) {
		return ErrNotConfirmed
	}
	p.state.Pending = nil
	return nil
}

// Cancel marks a confirmed appointment as cancelled. It requires a pending
// confirmation from Confirm for the same id.
func (p *Panel) Cancel(ctx context.Context, id backend.ID) (PanelState, error) {
	if err := p.takeConfirmation(ActionCancel, id); err != nil {
		return p.Snapshot(), err
	}
	_, err := p.api.CancelAppointment(ctx, id)
	return p.finishMutation(ctx, ActionCancel, id, err,
		"Appointment cancelled successfully",
		"Error cancelling appointment. Please try again.")
}

// Delete removes an appointment permanently. It requires a pending
// confirmation from Confirm for the same id.
func (p *Panel) Delete(ctx context.Context, id backend.ID) (PanelState, error) {
	if err := p.takeConfirmation(ActionDelete, id); err != nil {
		return p.Snapshot(), err
	}
	err := p.api.DeleteAppointment(ctx, id)
	return p.finishMutation(ctx, ActionDelete, id, err,
		"Appointment deleted successfully",
		"Error deleting appointment. Please try again.")
}

func (p *Panel) finishMutation(ctx context.Context, action Action, id backend.ID, err error, okText, failText string) (PanelState, error) {
	if err != nil {
		p.logger.Warn("appointment mutation failed", "action", string(action), "appointment_id", id.String(), "error", err)
		p.metrics.ObserveMutation(string(action), "failure")
		p.mu.Lock()
		p.state.Notice = &Notice{Kind: NoticeError, Text: failText}
		out := p.state.clone()
		p.mu.Unlock()
		return out, err
	}
	p.logger.Info("appointment mutated", "action", string(action), "appointment_id", id.String())
	p.metrics.ObserveMutation(string(action), "success")
	p.mu.Lock()
	p.state.Notice = &Notice{Kind: NoticeSuccess, Text: okText}
	p.mu.Unlock()
	return p.reload(ctx, true), nil
}

// EditForm is the overlay's editable fields.
type EditForm struct {
	ClientName string
	Email      string
	Date       string
	Time       string
	Service    string
}

// EditState is the edit overlay.
type EditState struct {
	Open        bool
	Appointment *backend.Appointment
	Form        EditForm
	Error       string
	Saving      bool
}

// BeginEdit fetches the appointment fresh and opens the overlay with its
// current values.
func (p *Panel) BeginEdit(ctx context.Context, id backend.ID) (PanelState, error) {
	p.mu.Lock()
	p.editSeq++
	seq := p.editSeq
	p.mu.Unlock()

	appt, err := p.api.GetAppointment(ctx, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.editSeq {
		p.metrics.ObserveStale("admin", "edit")
		return p.state.clone(), nil
	}
	if err != nil {
		p.logger.Warn("failed to load appointment for edit", "appointment_id", id.String(), "error", err)
		p.state.Notice = &Notice{Kind: NoticeError, Text: "Error loading appointment data"}
		return p.state.clone(), err
	}
	p.state.Edit = EditState{
		Open:        true,
		Appointment: appt,
		Form: EditForm{
			ClientName: appt.ClientName,
			Email:      appt.Email,
			Date:       appt.Date,
			Time:       appt.Time,
			Service:    appt.Service,
		},
	}
	return p.state.clone(), nil
}

// SubmitEdit validates and sends the full replacement. On failure the
// overlay stays open with the entered values and the server's message.
func (p *Panel) SubmitEdit(ctx context.Context, form EditForm) (PanelState, error) {
	form = trimEditForm(form)
	p.mu.Lock()
	if !p.state.Edit.Open || p.state.Edit.Appointment == nil {
		out := p.state.clone()
		p.mu.Unlock()
		return out, ErrEditNotOpen
	}
	if p.state.Edit.Saving {
		out := p.state.clone()
		p.mu.Unlock()
		return out, errors.New("admin: edit already being saved")
	}
	p.state.Edit.Form = form
	if verr := validateEdit(form); verr != nil {
		p.state.Edit.Error = verr.Error()
		out := p.state.clone()
		p.mu.Unlock()
		return out, verr
	}
	id := p.state.Edit.Appointment.ID
	p.state.Edit.Saving = true
	p.state.Edit.Error = ""
	p.editSeq++
	p.mu.Unlock()

	_, err := p.api.UpdateAppointment(ctx, id, backend.AppointmentUpdate{
		ClientName: form.ClientName,
		Email:      form.Email,
		Date:       form.Date,
		Time:       form.Time,
		Service:    form.Service,
	})

	p.mu.Lock()
	p.state.Edit.Saving = false
	if err != nil {
		msg := "Error updating appointment. Please try again."
		if m, ok := backend.ServerMessage(err); ok {
			msg = m
		}
		p.state.Edit.Error = msg
		p.metrics.ObserveMutation("edit", "failure")
		p.logger.Warn("appointment update failed", "appointment_id", id.String(), "error", err)
		out := p.state.clone()
		p.mu.Unlock()
		return out, err
	}
	p.state.Edit = EditState{}
	p.state.Notice = &Notice{Kind: NoticeSuccess, Text: "Appointment updated successfully"}
	p.metrics.ObserveMutation("edit", "success")
	p.logger.Info("appointment updated", "appointment_id", id.String())
	p.mu.Unlock()

	return p.reload(ctx, true), nil
}

// CloseEdit discards the overlay.
func (p *Panel) CloseEdit() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editSeq++
	p.state.Edit = EditState{}
	return p.state.clone()
}

// EditValidationError lists the overlay fields that failed validation.
type EditValidationError struct {
	Fields []string
}

func (e *EditValidationError) Error() string {
	return fmt.Sprintf("Please check: %s", strings.Join(e.Fields, ", "))
}

func trimEditForm(f EditForm) EditForm {
	return EditForm{
		ClientName: strings.TrimSpace(f.ClientName),
		Email:      strings.TrimSpace(f.Email),
		Date:       strings.TrimSpace(f.Date),
		Time:       strings.TrimSpace(f.Time),
		Service:    strings.TrimSpace(f.Service),
	}
}

func validateEdit(f EditForm) *EditValidationError {
	var fields []string
	if f.ClientName == "" {
		fields = append(fields, "full name")
	}
	if _, err := mail.ParseAddress(f.Email); err != nil || !strings.Contains(f.Email, "@") {
		fields = append(fields, "email")
	}
	if _, err := time.Parse("2006-01-02", f.Date); err != nil {
		fields = append(fields, "date")
	}
	if _, err := time.Parse("15:04", f.Time); err != nil {
		fields = append(fields, "time")
	}
	if f.Service == "" {
		fields = append(fields, "service")
	}
	if len(fields) == 0 {
		return nil
	}
	return &EditValidationError{Fields: fields}
}
