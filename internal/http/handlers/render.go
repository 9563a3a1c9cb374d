package handlers

import (
	"bytes"
	"net/http"

	"github.com/wolfman30/sly-barbershop/internal/http/middleware"
	"github.com/wolfman30/sly-barbershop/internal/view"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

const siteTitle = "Sly Barbershop"

func renderPage(w http.ResponseWriter, logger *logging.Logger, status int, title string, body *view.Node) {
	var buf bytes.Buffer
	if err := view.Render(&buf, view.Page(title, body)); err != nil {
		logger.Error("failed to render page", "title", title, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func seeOther(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func visitorFor(visitors *Visitors, r *http.Request) (*Visitor, bool) {
	id, ok := middleware.VisitorIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return visitors.Get(id), true
}
