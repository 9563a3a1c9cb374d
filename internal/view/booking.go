package view

import (
	"github.com/wolfman30/sly-barbershop/internal/booking"
)

// BookingForm renders the public booking form.
func BookingForm(st booking.State) *Node {
	f := st.Form
	form := (&Node{Kind: KindForm, ID: "bookingForm", Href: "/booking"}).class("booking-form")
	form.add(message("bookingMessage", st.Message))

	name := input("clientName", "clientName", "text", f.ClientName).with("placeholder", "Your full name").with("required", "required")
	phone := input("clientPhone", "clientPhone", "tel", f.ClientPhone).with("placeholder", "300 123 4567").with("required", "required")

	services := &Node{Kind: KindSelect, ID: "serviceId", Name: "serviceId"}
	services.add(option("", "Select a service...", f.ServiceID == ""))
	for _, s := range st.Reference.Services {
		services.add(option(s.ID.String(), booking.ServiceLabel(s), s.ID == f.ServiceID))
	}
	services.Disabled = len(st.Reference.Services) == 0

	barbers := &Node{Kind: KindSelect, ID: "barberId", Name: "barberId"}
	barbers.add(option("", "Select a barber...", f.BarberID == ""))
	for _, b := range st.Reference.Barbers {
		barbers.add(option(b.ID.String(), b.Name, b.ID == f.BarberID))
	}
	barbers.Disabled = len(st.Reference.Barbers) == 0

	date := input("appointmentDate", "appointmentDate", "date", f.Date).
		with("min", st.Bounds.Min).
		with("max", st.Bounds.Max)

	form.add(
		field(label("clientName", "Full name *"), name),
		field(label("clientPhone", "Phone *"), phone),
		field(label("serviceId", "Service *"), services),
		field(label("barberId", "Barber *"), barbers),
		field(label("appointmentDate", "Date *"), date),
		submit("checkSlots", "Check availability", "/booking/slots").class("btn btn-outline"),
		field(label("appointmentTime", "Time *"), timeSelect(st)),
	)
	if st.Reference.ServicesError || st.Reference.BarbersError {
		form.add(submit("reloadReference", "Reload services and barbers", "/booking/reference").class("btn btn-outline"))
	}

	btn := submit("submitBtn", "Book appointment", "").class("btn btn-primary")
	if !st.SubmitEnabled() {
		btn.Disabled = true
		btn.Text = "Booking..."
	}
	form.add(btn)

	return el(KindSection, "booking").add(text(KindHeading, "", "Book your appointment"), form)
}

func timeSelect(st booking.State) *Node {
	sel := &Node{Kind: KindSelect, ID: "appointmentTime", Name: "appointmentTime", Disabled: !st.Slots.Enabled()}
	sel.add(option("", st.Slots.Prompt, st.Form.Time == ""))
	if st.Slots.Enabled() {
		for _, slot := range st.Slots.Options {
			sel.add(option(slot, slot, slot == st.Form.Time))
		}
	}
	return sel
}

func message(id string, m *booking.Message) *Node {
	if m == nil {
		return nil
	}
	return text(KindMessage, id, m.Text).class("message message-" + string(m.Kind))
}
