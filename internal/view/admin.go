package view

import (
	"fmt"
	"strconv"

	"github.com/wolfman30/sly-barbershop/internal/admin"
	"github.com/wolfman30/sly-barbershop/internal/backend"
)

// AdminLogin renders the password form.
func AdminLogin(st admin.SessionState) *Node {
	pw := input("adminPassword", "password", "password", "").with("required", "required")
	pw.Autofocus = st.FocusPassword
	btn := submit("loginBtn", "Log in", "").class("btn btn-primary")
	btn.Disabled = st.Phase == admin.LoggingIn

	form := (&Node{Kind: KindForm, ID: "loginForm", Href: "/admin/login"}).add(
		field(label("adminPassword", "Password"), pw),
	)
	if st.LoginError != "" {
		form.add(text(KindMessage, "loginError", st.LoginError).class("message message-error"))
	}
	form.add(btn)
	return el(KindSection, "loginScreen").class("login-screen").add(text(KindHeading, "", "Admin Panel"), form)
}

// AdminPanel renders the stats strip, filters, list, pager and any open
// dialog or overlay.
func AdminPanel(st admin.PanelState) *Node {
	panel := el(KindSection, "adminPanel").class("admin-panel")
	panel.add(
		el(KindGroup, "adminHeader",
			text(KindHeading, "", "Appointments"),
			(&Node{Kind: KindForm, ID: "logoutForm", Href: "/admin/logout"}).add(submit("logoutBtn", "Log out", "").class("btn btn-outline")),
		),
	)
	if st.Notice != nil {
		panel.add(text(KindMessage, "adminNotice", st.Notice.Text).class("message message-" + string(st.Notice.Kind)))
	}
	panel.add(statsStrip(st.Stats), filters(st.Filter), appointmentList(st.List), pager(st.Pagination))
	if st.Pending != nil {
		panel.add(ConfirmDialog(*st.Pending))
	}
	if st.Edit.Open {
		panel.add(EditOverlay(st.Edit))
	}
	return panel
}

func statsStrip(s admin.Stats) *Node {
	value := func(n int) string {
		if !s.Loaded {
			return "-"
		}
		return strconv.Itoa(n)
	}
	return el(KindGroup, "stats",
		&Node{Kind: KindStat, ID: "statTotal", Text: "Total", Value: value(s.All)},
		&Node{Kind: KindStat, ID: "statConfirmed", Text: "Confirmed", Value: value(s.Confirmed)},
		&Node{Kind: KindStat, ID: "statCancelled", Text: "Cancelled", Value: value(s.Cancelled)},
	).class("stats")
}

func filters(f admin.Filter) *Node {
	status := &Node{Kind: KindSelect, ID: "filterStatus", Name: "status"}
	status.add(
		option("", "All", f.Status == ""),
		option(string(backend.StatusConfirmed), "Confirmed", f.Status == backend.StatusConfirmed),
		option(string(backend.StatusCancelled), "Cancelled", f.Status == backend.StatusCancelled),
	)
	return (&Node{Kind: KindForm, ID: "filterForm", Href: "/admin/filters"}).class("filters").add(
		field(label("filterDate", "Date"), input("filterDate", "date", "date", f.Date)),
		field(label("filterStatus", "Status"), status),
		submit("applyFilters", "Apply", "").class("btn btn-primary"),
		submit("clearFilters", "Clear", "/admin/filters/clear").class("btn btn-outline"),
		submit("refreshList", "Refresh", "/admin/refresh").class("btn btn-outline"),
	)
}

func appointmentList(l admin.ListState) *Node {
	list := el(KindGroup, "appointmentsList").class("appointments-list")
	switch l.Phase {
	case admin.ListLoading, admin.ListIdle:
		list.add(text(KindText, "", "Loading appointments...").class("loading"))
	case admin.ListError:
		list.add(el(KindGroup, "listError",
			text(KindHeading, "", "Error loading appointments"),
			&Node{Kind: KindLink, ID: "retryList", Text: "Try again", Href: "/admin/appointments"},
		).class("error-state"))
	case admin.ListEmpty:
		list.add(el(KindGroup, "listEmpty",
			text(KindHeading, "", "No appointments found"),
			text(KindText, "", "Try changing the filters."),
		).class("empty-state"))
	default:
		for _, a := range l.Appointments {
			list.add(AppointmentCard(a))
		}
	}
	return list
}

// AppointmentCard renders one appointment. Confirmed appointments offer
// edit, cancel and delete; cancelled ones only delete.
func AppointmentCard(a backend.Appointment) *Node {
	id := a.ID.String()
	badge := "Confirmed"
	if a.Status == backend.StatusCancelled {
		badge = "Cancelled"
	}
	when := FormatDisplayDate(a.Date)
	if a.Time != "" {
		when += " at " + a.Time
	}
	card := el(KindCard, "appointment-"+id,
		el(KindGroup, "",
			text(KindHeading, "", "#"+id),
			text(KindBadge, "", badge).class("badge badge-"+string(a.Status)),
		).class("appointment-header"),
		text(KindText, "", a.ClientName).class("client-name"),
		text(KindText, "", a.Email).class("client-email"),
	).class("appointment-card status-" + string(a.Status))
	if a.Phone != "" {
		card.add(text(KindText, "", a.Phone).class("client-phone"))
	}
	card.add(
		text(KindText, "", when).class("appointment-when"),
		text(KindText, "", a.Service).class("appointment-service"),
	)
	if a.Barber != "" {
		card.add(text(KindText, "", a.Barber).class("appointment-barber"))
	}
	if created := FormatTimestamp(a.CreatedAt); created != "" {
		card.add(text(KindText, "", "Created: "+created).class("appointment-created"))
	}

	actions := el(KindGroup, "").class("appointment-actions")
	base := "/admin/appointments/" + id
	if a.Status == backend.StatusConfirmed {
		actions.add(
			&Node{Kind: KindLink, ID: "edit-" + id, Text: "Edit", Href: base + "/edit"},
			&Node{Kind: KindLink, ID: "cancel-" + id, Text: "Cancel", Href: base + "/cancel"},
		)
	}
	actions.add(&Node{Kind: KindLink, ID: "delete-" + id, Text: "Delete", Href: base + "/delete"})
	return card.add(actions)
}

func pager(p admin.Pagination) *Node {
	if !p.Visible {
		return nil
	}
	prev := submit("prevPage", "Previous", "/admin/page/prev").class("btn btn-outline")
	prev.Disabled = !p.PrevEnabled
	next := submit("nextPage", "Next", "/admin/page/next").class("btn btn-outline")
	next.Disabled = !p.NextEnabled
	return (&Node{Kind: KindForm, ID: "appointmentsPagination", Href: "/admin/page/next"}).class("pagination").add(
		prev,
		text(KindText, "paginationInfo", p.Label),
		next,
	)
}

// ConfirmDialog asks before a cancel or delete is sent.
func ConfirmDialog(c admin.Confirmation) *Node {
	yes := "Yes, cancel it"
	if c.Action == admin.ActionDelete {
		yes = "Yes, delete permanently"
	}
	target := fmt.Sprintf("/admin/appointments/%s/%s", c.AppointmentID, c.Action)
	return el(KindDialog, "confirmDialog",
		text(KindText, "confirmPrompt", c.Prompt),
		(&Node{Kind: KindForm, ID: "confirmForm", Href: target}).add(
			submit("confirmYes", yes, "").class("btn btn-danger"),
			submit("confirmNo", "No", "/admin/dismiss").class("btn btn-outline"),
		),
	).class("confirm-dialog")
}

// EditOverlay renders the edit form for one appointment.
func EditOverlay(e admin.EditState) *Node {
	if e.Appointment == nil {
		return nil
	}
	id := e.Appointment.ID.String()
	f := e.Form
	save := submit("saveEdit", "Save changes", "").class("btn btn-primary")
	save.Disabled = e.Saving
	form := (&Node{Kind: KindForm, ID: "editForm", Href: "/admin/appointments/" + id + "/edit"}).class("edit-form")
	if e.Error != "" {
		form.add(text(KindMessage, "editError", e.Error).class("message message-error"))
	}
	form.add(
		field(label("editName", "Full name *"), input("editName", "clientName", "text", f.ClientName).with("required", "required")),
		field(label("editEmail", "Email *"), input("editEmail", "email", "email", f.Email).with("required", "required")),
		field(label("editDate", "Date *"), input("editDate", "date", "date", f.Date).with("required", "required")),
		field(label("editTime", "Time *"), input("editTime", "time", "time", f.Time).with("required", "required")),
		field(label("editService", "Service *"), input("editService", "service", "text", f.Service).with("required", "required")),
		save,
		submit("closeEdit", "Close", "/admin/edit/close").class("btn btn-outline"),
	)
	return el(KindDialog, "editOverlay",
		text(KindHeading, "", "Edit Appointment #"+id),
		form,
	).class("edit-modal-overlay")
}
