package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/sly-barbershop/internal/admin"
	"github.com/wolfman30/sly-barbershop/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/sly-barbershop/internal/http/middleware"
	"github.com/wolfman30/sly-barbershop/internal/session"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Booking            *handlers.BookingHandler
	Admin              *handlers.AdminHandler
	Sessions           session.Store
	TokenVerifier      httpmiddleware.TokenVerifier
	BookingLimiter     *httpmiddleware.RateLimiter
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	VisitorCookieTTL   time.Duration
	SecureCookies      bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", handlers.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Group(func(site chi.Router) {
		site.Use(httpmiddleware.Visitor(cfg.VisitorCookieTTL, cfg.SecureCookies))

		if cfg.Booking != nil {
			site.Get("/", cfg.Booking.Page)
			site.Route("/booking", func(b chi.Router) {
				b.Post("/reference", cfg.Booking.Reference)
				b.Post("/slots", cfg.Booking.Slots)
				submit := http.HandlerFunc(cfg.Booking.Submit)
				if cfg.BookingLimiter != nil {
					b.Method(http.MethodPost, "/", cfg.BookingLimiter.Limit(submit))
				} else {
					b.Post("/", submit)
				}
			})
		}

		if cfg.Admin != nil {
			site.Route("/admin", func(a chi.Router) {
				a.Use(httpmiddleware.AdminSession(cfg.Sessions, cfg.TokenVerifier, cfg.Logger))
				a.Get("/", cfg.Admin.Page)
				a.Post("/login", cfg.Admin.Login)
				a.Post("/logout", cfg.Admin.Logout)

				a.Group(func(authed chi.Router) {
					authed.Use(httpmiddleware.RequireAdmin("/admin"))
					authed.Get("/appointments", cfg.Admin.Appointments)
					authed.Post("/filters", cfg.Admin.ApplyFilter)
					authed.Post("/filters/clear", cfg.Admin.ClearFilter)
					authed.Post("/refresh", cfg.Admin.Refresh)
					authed.Post("/page/{dir}", cfg.Admin.Paginate)
					authed.Post("/dismiss", cfg.Admin.Dismiss)
					authed.Post("/edit/close", cfg.Admin.CloseEdit)
					authed.Route("/appointments/{id}", func(appt chi.Router) {
						appt.Get("/cancel", cfg.Admin.ConfirmAction(admin.ActionCancel))
						appt.Post("/cancel", cfg.Admin.Cancel)
						appt.Get("/delete", cfg.Admin.ConfirmAction(admin.ActionDelete))
						appt.Post("/delete", cfg.Admin.Delete)
						appt.Get("/edit", cfg.Admin.BeginEdit)
						appt.Post("/edit", cfg.Admin.SubmitEdit)
					})
				})
			})
		}
	})

	return r
}
