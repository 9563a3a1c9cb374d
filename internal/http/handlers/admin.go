package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/sly-barbershop/internal/admin"
	"github.com/wolfman30/sly-barbershop/internal/backend"
	"github.com/wolfman30/sly-barbershop/internal/http/middleware"
	"github.com/wolfman30/sly-barbershop/internal/view"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

const adminPath = "/admin"

// AdminHandler serves the login screen and the appointment panel.
type AdminHandler struct {
	visitors *Visitors
	logger   *logging.Logger
}

func NewAdminHandler(visitors *Visitors, logger *logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{visitors: visitors, logger: logger.Component("admin_handler")}
}

// visitor resolves the browser's workflows and syncs the login state with
// the claims AdminSession put on the request.
func (h *AdminHandler) visitor(w http.ResponseWriter, r *http.Request) (*Visitor, context.Context, bool) {
	v, ok := visitorFor(h.visitors, r)
	if !ok {
		http.Error(w, "missing visitor", http.StatusBadRequest)
		return nil, nil, false
	}
	ctx := r.Context()
	token, authed := middleware.AdminTokenFromContext(ctx)
	switch {
	case authed && !v.Session.LoggedIn():
		v.Session.Restore(ctx)
	case !authed && v.Session.LoggedIn():
		_ = v.Session.Logout(ctx)
		v.Panel.Reset()
	}
	if authed {
		ctx = backend.WithToken(ctx, token)
	}
	return v, ctx, true
}

// Page shows the login form or the panel.
func (h *AdminHandler) Page(w http.ResponseWriter, r *http.Request) {
	v, ctx, ok := h.visitor(w, r)
	if !ok {
		return
	}
	if !v.Session.LoggedIn() {
		renderPage(w, h.logger, http.StatusOK, siteTitle+" - Admin", view.AdminLogin(v.Session.Snapshot()))
		return
	}
	st := v.Panel.Snapshot()
	if st.List.Phase == admin.ListIdle {
		st = v.Panel.Load(ctx)
	}
	renderPage(w, h.logger, http.StatusOK, siteTitle+" - Admin", view.AdminPanel(st))
	v.Panel.DismissNotice()
}

// Login checks the password and loads the panel on success.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	v, _, ok := h.visitor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	st, err := v.Session.Login(r.Context(), r.PostFormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, admin.ErrInvalidCredentials) {
			status = http.StatusServiceUnavailable
		}
		renderPage(w, h.logger, status, siteTitle+" - Admin", view.AdminLogin(st))
		return
	}
	v.Panel.Reset()
	v.Panel.Load(backend.WithToken(r.Context(), v.Session.Token()))
	seeOther(w, r, adminPath)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	v, _, ok := h.visitor(w, r)
	if !ok {
		return
	}
	if err := v.Session.Logout(r.Context()); err != nil {
		h.logger.Warn("logout failed", "error", err)
	}
	v.Panel.Reset()
	seeOther(w, r, adminPath)
}

// Appointments reloads the list. Query parameters date and status apply a
// filter; without them the current view is retried.
func (h *AdminHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	v, ctx, ok := h.visitor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if q.Has("date") || q.Has("status") {
		v.Panel.ApplyFilter(ctx, filterFrom(q.Get("date"), q.Get("status")))
	} else {
		v.Panel.Retry(ctx)
	}
	seeOther(w, r, adminPath)
}

func (h *AdminHandler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	v, ctx, ok := h.visitor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	v.Panel.ApplyFilter(ctx, filterFrom(r.PostFormValue("date"), r.PostFormValue("status")))
	seeOther(w, r, adminPath)
}

func (h *AdminHandler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	v, ctx, ok := h.visitor(w, r)
	if !ok {
		return
	}
	v.Panel.ClearFilter(ctx)
	seeOther(w, r, adminPath)
}

func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	v, ctx, ok := h.visitor(w, r)
	if !ok {
		return
	}
	v.Panel.Refresh(ctx)
	seeOther(w, r, adminPath)
}

// Paginate moves one page in the direction given by {dir}: next or prev.
func (h *AdminHandler) Paginate(w http.ResponseWriter, r *http.Request) {
	v, ctx, ok := h.visitor(w, r)
	if !ok {
		return
	}
	switch chi.URLParam(r, "dir") {
	case "next":
		v.Panel.NextPage(ctx)
	case "prev":
		v.Panel.PrevPage(ctx)
	default:
		http.NotFound(w, r)
		return
	}
	seeOther(w, r, adminPath)
}

// ConfirmAction opens the confirmation dialog for cancel or delete.
func (h *AdminHandler) ConfirmAction(action admin.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _, ok := h.visitor(w, r)
		if !ok {
			return
		}
		if _, err := v.Panel.Confirm(action, backend.ID(chi.URLParam(r, "id"))); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		seeOther(w, r, adminPath)
	}
}

// Cancel runs a confirmed cancel.
func (h *AdminHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	v, ctx, ok := h.visitor(w, r)
	if !ok {
		return
	}
	if _, err := v.Panel.Cancel(ctx, backend.ID(chi.URLParam(r, "id"))); errors.Is(err, admin.ErrNotConfirmed) {
		http.Error(w, "action was not confirmed", http.StatusConflict)
		return
	}
	seeOther(w, r, adminPath)
}

// Delete runs a confirmed delete.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	v, ctx, ok := h.visitor(w, r)
	if !ok {
		return
	}
	if _, err := v.Panel.Delete(ctx, backend.ID(chi.URLParam(r, "id"))); errors.Is(err, admin.ErrNotConfirmed) {
		http.Error(w, "action was not confirmed", http.StatusConflict)
		return
	}
	seeOther(w, r, adminPath)
}

// Dismiss closes the confirmation dialog without acting.
func (h *AdminHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	v, _, ok := h.visitor(w, r)
	if !ok {
		return
	}
	v.Panel.Dismiss()
	seeOther(w, r, adminPath)
}

// BeginEdit opens the edit overlay with a fresh copy of the appointment.
func (h *AdminHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	v, ctx, ok := h.visitor(w, r)
	if !ok {
		return
	}
	_, _ = v.Panel.BeginEdit(ctx, backend.ID(chi.URLParam(r, "id")))
	seeOther(w, r, adminPath)
}

// SubmitEdit saves the overlay. Failures keep it open with the message.
func (h *AdminHandler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	v, ctx, ok := h.visitor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	_, err := v.Panel.SubmitEdit(ctx, admin.EditForm{
		ClientName: r.PostFormValue("clientName"),
		Email:      r.PostFormValue("email"),
		Date:       r.PostFormValue("date"),
		Time:       r.PostFormValue("time"),
		Service:    r.PostFormValue("service"),
	})
	if errors.Is(err, admin.ErrEditNotOpen) {
		http.Error(w, "no appointment is being edited", http.StatusConflict)
		return
	}
	seeOther(w, r, adminPath)
}

func (h *AdminHandler) CloseEdit(w http.ResponseWriter, r *http.Request) {
	v, _, ok := h.visitor(w, r)
	if !ok {
		return
	}
	v.Panel.CloseEdit()
	seeOther(w, r, adminPath)
}

func filterFrom(date, status string) admin.Filter {
	f := admin.Filter{Date: strings.TrimSpace(date)}
	if s, ok := backend.ParseStatus(status); ok {
		f.Status = s
	}
	return f
}
