package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/sly-barbershop/internal/backend"
	"github.com/wolfman30/sly-barbershop/internal/observability/metrics"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

// ErrSubmitInFlight is returned when a booking is submitted while a previous
// one has not completed.
var ErrSubmitInFlight = errors.New("booking: submission already in progress")

const defaultWindowMonths = 3

// API is the slice of the backend client the booking form needs.
type API interface {
	ListServices(ctx context.Context) ([]backend.Service, error)
	ListBarbers(ctx context.Context) ([]backend.Barber, error)
	AvailableSlots(ctx context.Context, barberID backend.ID, date string) ([]string, error)
	CreateAppointment(ctx context.Context, req backend.BookingRequest) (*backend.BookingConfirmation, error)
}

// Workflow holds the state of one visitor's booking form. All methods are
// safe for concurrent use; backend calls run without the lock held and their
// results are applied only if no newer request of the same kind was issued.
type Workflow struct {
	api     API
	logger  *logging.Logger
	metrics *metrics.WorkflowMetrics
	now     func() time.Time
	loc     *time.Location
	months  int

	mu      sync.Mutex
	state   State
	refSeq  uint64
	slotSeq uint64
	// dateMsg is the last date rejection, cleared once a valid date is taken.
	dateMsg *Message
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock overrides the time source used for the date window.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		if now != nil {
			w.now = now
		}
	}
}

// WithLocation sets the shop's time zone.
func WithLocation(loc *time.Location) Option {
	return func(w *Workflow) {
		if loc != nil {
			w.loc = loc
		}
	}
}

// WithBookingWindow sets how many months ahead a date may be chosen.
func WithBookingWindow(months int) Option {
	return func(w *Workflow) {
		if months > 0 {
			w.months = months
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithMetrics(m *metrics.WorkflowMetrics) Option {
	return func(w *Workflow) { w.metrics = m }
}

// NewWorkflow returns a booking form with nothing loaded yet.
func NewWorkflow(api API, opts ...Option) *Workflow {
	w := &Workflow{
		api:    api,
		logger: logging.Default(),
		now:    time.Now,
		loc:    time.UTC,
		months: defaultWindowMonths,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Component("booking")
	w.state.Slots = disabledSlots()
	w.state.Bounds = w.window().bounds()
	return w
}

// Snapshot returns a copy of the current state.
func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Bounds = w.window().bounds()
	return w.state.clone()
}

func (w *Workflow) window() dateWindow {
	return newDateWindow(w.now(), w.loc, w.months)
}

// Load fetches services and barbers concurrently. A failure of one list
// leaves the other usable and sets a non-blocking error message.
func (w *Workflow) Load(ctx context.Context) State {
	w.mu.Lock()
	w.refSeq++
	seq := w.refSeq
	w.state.Reference.Phase = ReferenceLoading
	w.mu.Unlock()

	var wg sync.WaitGroup
	var services []backend.Service
	var barbers []backend.Barber
	var servicesErr, barbersErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		services, servicesErr = w.api.ListServices(ctx)
	}()
	go func() {
		defer wg.Done()
		barbers, barbersErr = w.api.ListBarbers(ctx)
	}()
	wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.refSeq {
		w.metrics.ObserveStale("booking", "reference")
		w.logger.Debug("dropping stale reference response", "seq", seq, "latest", w.refSeq)
		return w.state.clone()
	}

	ref := &w.state.Reference
	ref.Phase = ReferenceLoaded
	ref.ServicesError = servicesErr != nil
	ref.BarbersError = barbersErr != nil
	var failed []string
	if servicesErr != nil {
		w.logger.Warn("failed to load services", "error", servicesErr)
		ref.Services = nil
		failed = append(failed, "services")
	} else {
		ref.Services = services
	}
	if barbersErr != nil {
		w.logger.Warn("failed to load barbers", "error", barbersErr)
		ref.Barbers = nil
		failed = append(failed, "barbers")
	} else {
		ref.Barbers = barbers
	}
	if len(failed) > 0 {
		w.state.Message = &Message{Kind: MessageError, Text: fmt.Sprintf("Could not load %s. Please try again later.", strings.Join(failed, " and "))}
	}

	if !w.hasService(w.state.Form.ServiceID) {
		w.state.Form.ServiceID = ""
	}
	if !w.hasBarber(w.state.Form.BarberID) {
		w.state.Form.BarberID = ""
		w.state.Form.Time = ""
		w.slotSeq++
		w.state.Slots = disabledSlots()
	}
	return w.state.clone()
}

func (w *Workflow) hasService(id backend.ID) bool {
	if id == "" {
		return true
	}
	for _, s := range w.state.Reference.Services {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (w *Workflow) hasBarber(id backend.ID) bool {
	if id == "" {
		return true
	}
	for _, b := range w.state.Reference.Barbers {
		if b.ID == id {
			return true
		}
	}
	return false
}

// checkReference rejects service and barber ids that are not in the loaded
// lists. With a list missing, no id of that kind is accepted.
func (w *Workflow) checkReference(f Form, verr *ValidationError) *ValidationError {
	var fields []FieldError
	if f.ServiceID != "" && !w.hasService(f.ServiceID) {
		fields = append(fields, FieldError{"serviceId", "Select a service from the list"})
	}
	if f.BarberID != "" && !w.hasBarber(f.BarberID) {
		fields = append(fields, FieldError{"barberId", "Select a barber from the list"})
	}
	if len(fields) == 0 {
		return verr
	}
	if verr == nil {
		verr = &ValidationError{}
	}
	verr.Fields = append(verr.Fields, fields...)
	return verr
}

// DismissMessage clears the notice once it has been shown.
func (w *Workflow) DismissMessage() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Message = nil
	w.dateMsg = nil
}

// UpdateContact keeps typed contact details across slot lookups.
func (w *Workflow) UpdateContact(name, phone string) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Form.ClientName = name
	w.state.Form.ClientPhone = phone
	return w.state.clone()
}

// SelectService records the chosen service. Unknown ids clear the field.
func (w *Workflow) SelectService(id backend.ID) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hasService(id) {
		w.state.Form.ServiceID = id
	} else {
		w.state.Form.ServiceID = ""
	}
	return w.state.clone()
}

// SelectBarber records the chosen barber and refreshes the slot list.
func (w *Workflow) SelectBarber(ctx context.Context, id backend.ID) State {
	w.mu.Lock()
	if w.hasBarber(id) {
		w.state.Form.BarberID = id
	} else {
		w.state.Form.BarberID = ""
	}
	return w.refreshSlotsLocked(ctx)
}

// SelectDate applies the date guard and refreshes the slot list. Rejected
// dates clear the field and set a corrective message.
func (w *Workflow) SelectDate(ctx context.Context, date string) State {
	w.mu.Lock()
	date = strings.TrimSpace(date)
	if date == "" {
		w.state.Form.Date = ""
	} else {
		win := w.window()
		if _, err := win.check(date); err != nil {
			w.state.Form.Date = ""
			w.dateMsg = &Message{Kind: MessageError, Text: win.rejection(err)}
			w.state.Message = w.dateMsg
		} else {
			w.state.Form.Date = date
			if w.dateMsg != nil && w.state.Message == w.dateMsg {
				w.state.Message = nil
			}
			w.dateMsg = nil
		}
	}
	return w.refreshSlotsLocked(ctx)
}

// SelectTime records the chosen slot. Only times from the loaded list are
// accepted.
func (w *Workflow) SelectTime(t string) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Form.Time = ""
	if w.state.Slots.Phase == SlotsLoaded {
		for _, opt := range w.state.Slots.Options {
			if opt == t {
				w.state.Form.Time = t
				break
			}
		}
	}
	return w.state.clone()
}

// refreshSlotsLocked must be called with w.mu held; it releases the lock
// before returning.
func (w *Workflow) refreshSlotsLocked(ctx context.Context) State {
	w.slotSeq++
	seq := w.slotSeq
	w.state.Form.Time = ""
	barberID, date := w.state.Form.BarberID, w.state.Form.Date
	if barberID == "" || date == "" {
		w.state.Slots = disabledSlots()
		out := w.state.clone()
		w.mu.Unlock()
		return out
	}
	w.state.Slots = SlotState{Phase: SlotsLoading, Prompt: promptLoading}
	w.mu.Unlock()

	slots, err := w.api.AvailableSlots(ctx, barberID, date)

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.slotSeq {
		w.metrics.ObserveStale("booking", "slots")
		w.logger.Debug("dropping stale slot response", "barber_id", barberID.String(), "date", date, "seq", seq, "latest", w.slotSeq)
		return w.state.clone()
	}
	switch {
	case err != nil:
		w.logger.Warn("failed to load available slots", "barber_id", barberID.String(), "date", date, "error", err)
		w.state.Slots = SlotState{Phase: SlotsError, Prompt: promptSlotsError}
	case len(slots) == 0:
		w.state.Slots = SlotState{Phase: SlotsEmpty, Prompt: promptNoSlots}
	default:
		w.state.Slots = SlotState{Phase: SlotsLoaded, Options: slots, Prompt: promptChoose}
	}
	return w.state.clone()
}

// Submit validates the form and creates the appointment. The submit control
// is disabled before the request leaves and re-enabled when it settles.
func (w *Workflow) Submit(ctx context.Context, form Form) (State, error) {
	w.mu.Lock()
	if w.state.Submit.Phase == Submitting {
		out := w.state.clone()
		w.mu.Unlock()
		return out, ErrSubmitInFlight
	}
	form.ClientName = strings.TrimSpace(form.ClientName)
	form.ClientPhone = strings.TrimSpace(form.ClientPhone)
	w.state.Form = form
	verr := validateForm(form, w.window())
	verr = w.checkReference(form, verr)
	if verr != nil {
		if !w.hasService(form.ServiceID) {
			w.state.Form.ServiceID = ""
		}
		if !w.hasBarber(form.BarberID) {
			w.state.Form.BarberID = ""
		}
		w.state.Message = &Message{Kind: MessageError, Text: verr.Error()}
		w.metrics.ObserveSubmission("invalid")
		out := w.state.clone()
		w.mu.Unlock()
		return out, verr
	}
	w.state.Submit = SubmitState{Phase: Submitting}
	w.state.Message = nil
	w.mu.Unlock()

	conf, err := w.api.CreateAppointment(ctx, backend.BookingRequest{
		ClientName:      form.ClientName,
		ClientPhone:     form.ClientPhone,
		BarberID:        form.BarberID,
		ServiceID:       form.ServiceID,
		AppointmentDate: form.Date,
		AppointmentTime: form.Time,
	})

	w.mu.Lock()
	if err != nil {
		w.state.Submit = SubmitState{Phase: SubmitFailed}
		text := "Could not book the appointment. Please try again."
		if msg, ok := backend.ServerMessage(err); ok {
			text = msg
		}
		w.state.Message = &Message{Kind: MessageError, Text: text}
		w.metrics.ObserveSubmission("failure")
		w.logger.Warn("booking failed", "barber_id", form.BarberID.String(), "date", form.Date, "time", form.Time, "error", err)
		out := w.state.clone()
		w.mu.Unlock()
		return out, err
	}

	w.state.Submit = SubmitState{Phase: SubmitSucceeded, AppointmentID: conf.AppointmentID}
	w.state.Form = Form{}
	w.slotSeq++
	w.state.Slots = disabledSlots()
	w.state.Message = &Message{Kind: MessageSuccess, Text: fmt.Sprintf("Appointment booked! Your booking number is %s.", conf.AppointmentID)}
	w.metrics.ObserveSubmission("success")
	w.logger.Info("appointment booked", "appointment_id", conf.AppointmentID.String(), "date", form.Date, "time", form.Time)
	w.mu.Unlock()

	return w.Load(ctx), nil
}
