package admin

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/sly-barbershop/internal/backend"
	"github.com/wolfman30/sly-barbershop/internal/observability/metrics"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

// PageSize is the number of appointments per page.
const PageSize = 20

// API is the slice of the backend client the panel needs.
type API interface {
	ListAppointments(ctx context.Context, q backend.ListQuery) (*backend.Page, error)
	GetAppointment(ctx context.Context, id backend.ID) (*backend.Appointment, error)
	UpdateAppointment(ctx context.Context, id backend.ID, update backend.AppointmentUpdate) (*backend.Appointment, error)
	CancelAppointment(ctx context.Context, id backend.ID) (*backend.Appointment, error)
	DeleteAppointment(ctx context.Context, id backend.ID) error
}

// Filter narrows the list. Empty fields match everything.
type Filter struct {
	Date   string
	Status backend.Status
}

type ListPhase int

const (
	ListIdle ListPhase = iota
	ListLoading
	ListLoaded
	ListEmpty
	ListError
)

type ListState struct {
	Phase        ListPhase
	Appointments []backend.Appointment
	Total        int
}

// Stats are the three counters above the list. Each is its own query.
type Stats struct {
	All       int
	Confirmed int
	Cancelled int
	Loaded    bool
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a one-shot message shown above the list.
type Notice struct {
	Kind NoticeKind
	Text string
}

// PanelState is a snapshot of the admin panel.
type PanelState struct {
	Page       int
	Filter     Filter
	List       ListState
	Stats      Stats
	Pagination Pagination
	Notice     *Notice
	Pending    *Confirmation
	Edit       EditState
}

func (s PanelState) clone() PanelState {
	out := s
	out.List.Appointments = append([]backend.Appointment(nil), s.List.Appointments...)
	if s.Notice != nil {
		n := *s.Notice
		out.Notice = &n
	}
	if s.Pending != nil {
		c := *s.Pending
		out.Pending = &c
	}
	if s.Edit.Appointment != nil {
		a := *s.Edit.Appointment
		out.Edit.Appointment = &a
	}
	return out
}

// Panel holds one admin's list view. Every list and stats request carries a
// sequence number and only the latest response of each kind is applied.
type Panel struct {
	api     API
	logger  *logging.Logger
	metrics *metrics.WorkflowMetrics

	mu       sync.Mutex
	state    PanelState
	listSeq  uint64
	statsSeq uint64
	editSeq  uint64
}

type PanelOption func(*Panel)

func WithPanelLogger(logger *logging.Logger) PanelOption {
	return func(p *Panel) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithPanelMetrics(m *metrics.WorkflowMetrics) PanelOption {
	return func(p *Panel) { p.metrics = m }
}

func NewPanel(api API, opts ...PanelOption) *Panel {
	p := &Panel{
		api:    api,
		logger: logging.Default(),
		state:  PanelState{Page: 1},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Component("admin_panel")
	p.state.Pagination = Paginate(1, 0)
	return p
}

func (p *Panel) Snapshot() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// Load fetches the current page and the stats.
func (p *Panel) Load(ctx context.Context) PanelState {
	return p.reload(ctx, true)
}

// Refresh is Load under a user-facing name.
func (p *Panel) Refresh(ctx context.Context) PanelState {
	return p.reload(ctx, true)
}

// Retry reloads only the list after a failed load.
func (p *Panel) Retry(ctx context.Context) PanelState {
	return p.reload(ctx, false)
}

// ApplyFilter jumps back to page 1 and reloads the list.
func (p *Panel) ApplyFilter(ctx context.Context, f Filter) PanelState {
	p.mu.Lock()
	p.state.Filter = f
	p.state.Page = 1
	p.mu.Unlock()
	return p.reload(ctx, false)
}

// ClearFilter resets filter and page and reloads the list and the stats.
func (p *Panel) ClearFilter(ctx context.Context) PanelState {
	p.mu.Lock()
	p.state.Filter = Filter{}
	p.state.Page = 1
	p.mu.Unlock()
	return p.reload(ctx, true)
}

// NextPage advances one page unless already on the last one.
func (p *Panel) NextPage(ctx context.Context) PanelState {
	p.mu.Lock()
	if !p.state.Pagination.NextEnabled {
		out := p.state.clone()
		p.mu.Unlock()
		return out
	}
	p.state.Page++
	p.mu.Unlock()
	return p.reload(ctx, false)
}

// PrevPage goes back one page unless on page 1.
func (p *Panel) PrevPage(ctx context.Context) PanelState {
	p.mu.Lock()
	if p.state.Page <= 1 {
		out := p.state.clone()
		p.mu.Unlock()
		return out
	}
	p.state.Page--
	p.mu.Unlock()
	return p.reload(ctx, false)
}

// Reset forgets filters, page and loaded data, e.g. after logout.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listSeq++
	p.statsSeq++
	p.editSeq++
	p.state = PanelState{Page: 1, Pagination: Paginate(1, 0)}
}

// DismissNotice clears the notice once it has been shown.
func (p *Panel) DismissNotice() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Notice = nil
}

func (p *Panel) reload(ctx context.Context, withStats bool) PanelState {
	var g errgroup.Group
	g.Go(func() error {
		p.loadList(ctx)
		return nil
	})
	if withStats {
		g.Go(func() error {
			p.loadStats(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return p.Snapshot()
}

func (p *Panel) loadList(ctx context.Context) {
	p.mu.Lock()
	p.listSeq++
	seq := p.listSeq
	page, filter := p.state.Page, p.state.Filter
	p.state.List.Phase = ListLoading
	p.mu.Unlock()

	res, err := p.api.ListAppointments(ctx, backend.ListQuery{
		Skip:   (page - 1) * PageSize,
		Limit:  PageSize,
		Date:   filter.Date,
		Status: filter.Status,
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.listSeq {
		p.metrics.ObserveStale("admin", "list")
		p.logger.Debug("dropping stale list response", "page", page, "seq", seq, "latest", p.listSeq)
		return
	}
	if err != nil {
		p.logger.Warn("failed to load appointments", "page", page, "error", err)
		p.state.List = ListState{Phase: ListError}
		p.state.Pagination = Paginate(page, 0)
		return
	}
	p.state.List = ListState{Phase: ListLoaded, Appointments: res.Appointments, Total: res.Total}
	if len(res.Appointments) == 0 {
		p.state.List.Phase = ListEmpty
	}
	p.state.Pagination = Paginate(page, res.Total)
}

// loadStats issues the three counting queries concurrently. A failed query
// leaves the previous counters in place.
func (p *Panel) loadStats(ctx context.Context) {
	p.mu.Lock()
	p.statsSeq++
	seq := p.statsSeq
	p.mu.Unlock()

	var all, confirmed, cancelled int
	g, gctx := errgroup.WithContext(ctx)
	count := func(status backend.Status, dst *int) func() error {
		return func() error {
			res, err := p.api.ListAppointments(gctx, backend.ListQuery{Skip: 0, Limit: 1, Status: status})
			if err != nil {
				return err
			}
			*dst = res.Total
			return nil
		}
	}
	g.Go(count("", &all))
	g.Go(count(backend.StatusConfirmed, &confirmed))
	g.Go(count(backend.StatusCancelled, &cancelled))
	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.statsSeq {
		p.metrics.ObserveStale("admin", "stats")
		return
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Warn("failed to load stats", "error", err)
		}
		return
	}
	p.state.Stats = Stats{All: all, Confirmed: confirmed, Cancelled: cancelled, Loaded: true}
}
