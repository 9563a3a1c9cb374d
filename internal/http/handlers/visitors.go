package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/sly-barbershop/internal/admin"
	"github.com/wolfman30/sly-barbershop/internal/booking"
	"github.com/wolfman30/sly-barbershop/internal/observability/metrics"
	"github.com/wolfman30/sly-barbershop/internal/session"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

// Visitor is the workflow state of one browser.
type Visitor struct {
	ID      string
	Booking *booking.Workflow
	Session *admin.Session
	Panel   *admin.Panel

	lastSeen time.Time
}

// VisitorConfig wires the collaborators every visitor's workflows share.
type VisitorConfig struct {
	BookingAPI          booking.API
	AdminAPI            admin.API
	Auth                admin.Authenticator
	Sessions            session.Store
	SessionTTL          time.Duration
	Location            *time.Location
	BookingWindowMonths int
	Metrics             *metrics.WorkflowMetrics
	Logger              *logging.Logger
}

func (c VisitorConfig) newVisitor(id string) *Visitor {
	logger := c.Logger
	return &Visitor{
		ID: id,
		Booking: booking.NewWorkflow(c.BookingAPI,
			booking.WithLocation(c.Location),
			booking.WithBookingWindow(c.BookingWindowMonths),
			booking.WithLogger(logger),
			booking.WithMetrics(c.Metrics),
		),
		Session: admin.NewSession(id, c.Auth, c.Sessions, c.SessionTTL, logger),
		Panel:   admin.NewPanel(c.AdminAPI, admin.WithPanelLogger(logger), admin.WithPanelMetrics(c.Metrics)),
	}
}

// Visitors keeps per-browser workflows in memory and evicts idle ones.
// Admin tokens live in the session store, so an evicted admin stays logged in.
type Visitors struct {
	cfg    VisitorConfig
	idle   time.Duration
	now    func() time.Time
	logger *logging.Logger

	mu   sync.Mutex
	byID map[string]*Visitor
}

func NewVisitors(cfg VisitorConfig, idle time.Duration) *Visitors {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Visitors{
		cfg:    cfg,
		idle:   idle,
		now:    time.Now,
		logger: cfg.Logger.Component("visitors"),
		byID:   make(map[string]*Visitor),
	}
}

// Get returns the visitor for id, creating it on first use.
func (v *Visitors) Get(id string) *Visitor {
	v.mu.Lock()
	defer v.mu.Unlock()
	vis, ok := v.byID[id]
	if !ok {
		vis = v.cfg.newVisitor(id)
		v.byID[id] = vis
	}
	vis.lastSeen = v.now()
	return vis
}

// Len reports how many visitors are held.
func (v *Visitors) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.byID)
}

// Sweep evicts visitors idle for longer than the configured ttl.
func (v *Visitors) Sweep() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	cutoff := v.now().Add(-v.idle)
	removed := 0
	for id, vis := range v.byID {
		if vis.lastSeen.Before(cutoff) {
			delete(v.byID, id)
			removed++
		}
	}
	return removed
}

// tokenSweeper is a session store that expires entries lazily.
type tokenSweeper interface {
	Sweep() int
}

func (v *Visitors) sweepTokens() int {
	if s, ok := v.cfg.Sessions.(tokenSweeper); ok {
		return s.Sweep()
	}
	return 0
}

// Run sweeps until ctx is done.
func (v *Visitors) Run(ctx context.Context) {
	every := v.idle / 4
	if every < time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := v.Sweep(); n > 0 {
				v.logger.Debug("evicted idle visitors", "count", n)
			}
			if n := v.sweepTokens(); n > 0 {
				v.logger.Debug("dropped expired admin tokens", "count", n)
			}
		}
	}
}
