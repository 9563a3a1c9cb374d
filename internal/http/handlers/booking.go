package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/sly-barbershop/internal/backend"
	"github.com/wolfman30/sly-barbershop/internal/booking"
	"github.com/wolfman30/sly-barbershop/internal/view"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

// BookingHandler serves the public booking form.
type BookingHandler struct {
	visitors *Visitors
	logger   *logging.Logger
}

func NewBookingHandler(visitors *Visitors, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{visitors: visitors, logger: logger.Component("booking_handler")}
}

// Page renders the form, loading services and barbers on first visit.
func (h *BookingHandler) Page(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFor(h.visitors, r)
	if !ok {
		http.Error(w, "missing visitor", http.StatusBadRequest)
		return
	}
	st := v.Booking.Snapshot()
	if st.Reference.Phase == booking.ReferenceIdle {
		st = v.Booking.Load(r.Context())
	}
	renderPage(w, h.logger, http.StatusOK, siteTitle+" - Book", view.BookingForm(st))
	v.Booking.DismissMessage()
}

// Reference reloads services and barbers.
func (h *BookingHandler) Reference(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFor(h.visitors, r)
	if !ok {
		http.Error(w, "missing visitor", http.StatusBadRequest)
		return
	}
	v.Booking.Load(r.Context())
	seeOther(w, r, "/")
}

// Slots records the current selections and refreshes available times.
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFor(h.visitors, r)
	if !ok {
		http.Error(w, "missing visitor", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	wf := v.Booking
	ctx := r.Context()

	before := wf.UpdateContact(form.ClientName, form.ClientPhone)
	wf.SelectService(form.ServiceID)
	barberChanged := form.BarberID != before.Form.BarberID
	dateChanged := form.Date != before.Form.Date
	if barberChanged {
		wf.SelectBarber(ctx, form.BarberID)
	}
	if dateChanged || !barberChanged {
		wf.SelectDate(ctx, form.Date)
	}
	if form.Time != "" {
		wf.SelectTime(form.Time)
	}
	seeOther(w, r, "/")
}

// Submit books the appointment. Validation and backend failures are shown
// on the form.
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorFor(h.visitors, r)
	if !ok {
		http.Error(w, "missing visitor", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	st, err := v.Booking.Submit(r.Context(), formFromRequest(r))
	if errors.Is(err, booking.ErrSubmitInFlight) {
		renderPage(w, h.logger, http.StatusConflict, siteTitle+" - Book", view.BookingForm(st))
		return
	}
	seeOther(w, r, "/")
}

func formFromRequest(r *http.Request) booking.Form {
	return booking.Form{
		ClientName:  strings.TrimSpace(r.PostFormValue("clientName")),
		ClientPhone: strings.TrimSpace(r.PostFormValue("clientPhone")),
		ServiceID:   backend.ID(strings.TrimSpace(r.PostFormValue("serviceId"))),
		BarberID:    backend.ID(strings.TrimSpace(r.PostFormValue("barberId"))),
		Date:        strings.TrimSpace(r.PostFormValue("appointmentDate")),
		Time:        strings.TrimSpace(r.PostFormValue("appointmentTime")),
	}
}
