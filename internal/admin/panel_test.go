package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/sly-barbershop/internal/backend"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ListAppointments(ctx context.Context, q backend.ListQuery) (*backend.Page, error) {
	args := m.Called(ctx, q)
	out, _ := args.Get(0).(*backend.Page)
	return out, args.Error(1)
}

func (m *mockAPI) GetAppointment(ctx context.Context, id backend.ID) (*backend.Appointment, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*backend.Appointment)
	return out, args.Error(1)
}

func (m *mockAPI) UpdateAppointment(ctx context.Context, id backend.ID, update backend.AppointmentUpdate) (*backend.Appointment, error) {
	args := m.Called(ctx, id, update)
	out, _ := args.Get(0).(*backend.Appointment)
	return out, args.Error(1)
}

func (m *mockAPI) CancelAppointment(ctx context.Context, id backend.ID) (*backend.Appointment, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*backend.Appointment)
	return out, args.Error(1)
}

func (m *mockAPI) DeleteAppointment(ctx context.Context, id backend.ID) error {
	return m.Called(ctx, id).Error(0)
}

func newTestPanel(api API) *Panel {
	return NewPanel(api, WithPanelLogger(logging.New("error")))
}

func pageOf(total int, ids ...backend.ID) *backend.Page {
	page := &backend.Page{Total: total}
	for _, id := range ids {
		page.Appointments = append(page.Appointments, backend.Appointment{ID: id, Status: backend.StatusConfirmed})
	}
	return page
}

func expectStats(api *mockAPI, all, confirmed, cancelled int) {
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 1}).Return(pageOf(all), nil).Once()
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 1, Status: backend.StatusConfirmed}).Return(pageOf(confirmed), nil).Once()
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 1, Status: backend.StatusCancelled}).Return(pageOf(cancelled), nil).Once()
}

func TestPanel_LoadFetchesPageAndStats(t *testing.T) {
	api := &mockAPI{}
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Skip: 0, Limit: 20}).Return(pageOf(45, "1", "2"), nil).Once()
	expectStats(api, 45, 40, 5)
	p := newTestPanel(api)

	st := p.Load(context.Background())

	assert.Equal(t, ListLoaded, st.List.Phase)
	assert.Len(t, st.List.Appointments, 2)
	assert.Equal(t, Stats{All: 45, Confirmed: 40, Cancelled: 5, Loaded: true}, st.Stats)
	assert.Equal(t, 3, st.Pagination.TotalPages)
	assert.True(t, st.Pagination.Visible)
	assert.False(t, st.Pagination.PrevEnabled)
	assert.True(t, st.Pagination.NextEnabled)
	api.AssertExpectations(t)
}

func TestPanel_EmptyIsNotAnError(t *testing.T) {
	api := &mockAPI{}
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20}).Return(pageOf(0), nil).Once()
	expectStats(api, 0, 0, 0)
	p := newTestPanel(api)

	st := p.Load(context.Background())

	assert.Equal(t, ListEmpty, st.List.Phase)
	assert.False(t, st.Pagination.Visible)
}

func TestPanel_ErrorThenRetry(t *testing.T) {
	api := &mockAPI{}
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20}).
		Return(nil, &backend.ServerError{Op: "list_appointments", StatusCode: 500}).Once()
	expectStats(api, 3, 3, 0)
	p := newTestPanel(api)

	st := p.Load(context.Background())
	assert.Equal(t, ListError, st.List.Phase)

	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20}).Return(pageOf(3, "1", "2", "3"), nil).Once()
	st = p.Retry(context.Background())

	assert.Equal(t, ListLoaded, st.List.Phase)
	assert.Len(t, st.List.Appointments, 3)
	api.AssertExpectations(t)
}

func TestPanel_StatsFailureKeepsList(t *testing.T) {
	api := &mockAPI{}
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20}).Return(pageOf(1, "1"), nil).Once()
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 1}).Return(nil, &backend.NetworkError{Op: "list_appointments", Err: errors.New("down")})
	api.On("ListAppointments", mock.Anything, mock.MatchedBy(func(q backend.ListQuery) bool { return q.Limit == 1 && q.Status != "" })).Return(pageOf(1), nil)
	p := newTestPanel(api)

	st := p.Load(context.Background())

	assert.Equal(t, ListLoaded, st.List.Phase)
	assert.False(t, st.Stats.Loaded)
}

func TestPanel_PagingWalksPages(t *testing.T) {
	api := &mockAPI{}
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Skip: 0, Limit: 20}).Return(pageOf(45, "1"), nil)
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Skip: 20, Limit: 20}).Return(pageOf(45, "21"), nil)
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Skip: 40, Limit: 20}).Return(pageOf(45, "41"), nil)
	expectStats(api, 45, 45, 0)
	p := newTestPanel(api)
	ctx := context.Background()

	p.Load(ctx)
	p.NextPage(ctx)
	st := p.NextPage(ctx)
	assert.Equal(t, 3, st.Page)
	assert.False(t, st.Pagination.NextEnabled)
	assert.True(t, st.Pagination.PrevEnabled)

	st = p.NextPage(ctx)
	assert.Equal(t, 3, st.Page)

	st = p.PrevPage(ctx)
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, backend.ID("21"), st.List.Appointments[0].ID)
}

func TestPanel_ApplyFilterResetsPage(t *testing.T) {
	api := &mockAPI{}
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Skip: 0, Limit: 20}).Return(pageOf(45, "1"), nil)
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Skip: 20, Limit: 20}).Return(pageOf(45, "21"), nil)
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Skip: 0, Limit: 20, Date: "2025-12-06", Status: backend.StatusCancelled}).
		Return(pageOf(1, "9"), nil).Once()
	expectStats(api, 45, 44, 1)
	p := newTestPanel(api)
	ctx := context.Background()

	p.Load(ctx)
	p.NextPage(ctx)
	st := p.ApplyFilter(ctx, Filter{Date: "2025-12-06", Status: backend.StatusCancelled})

	assert.Equal(t, 1, st.Page)
	assert.Equal(t, Filter{Date: "2025-12-06", Status: backend.StatusCancelled}, st.Filter)
	assert.Equal(t, backend.ID("9"), st.List.Appointments[0].ID)
	assert.False(t, st.Pagination.Visible)
}

func TestPanel_ClearFilterReloadsStats(t *testing.T) {
	api := &mockAPI{}
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20, Date: "2025-12-06"}).Return(pageOf(1, "9"), nil).Once()
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20}).Return(pageOf(2, "1", "9"), nil).Once()
	expectStats(api, 2, 2, 0)
	p := newTestPanel(api)
	ctx := context.Background()

	p.ApplyFilter(ctx, Filter{Date: "2025-12-06"})
	st := p.ClearFilter(ctx)

	assert.Equal(t, Filter{}, st.Filter)
	assert.Equal(t, 1, st.Page)
	assert.True(t, st.Stats.Loaded)
	assert.Len(t, st.List.Appointments, 2)
	api.AssertExpectations(t)
}

func TestPanel_DropsStaleListResponse(t *testing.T) {
	api := &mockAPI{}
	started := make(chan struct{})
	release := make(chan struct{})
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20, Date: "2025-12-05"}).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(pageOf(1, "old"), nil).Once()
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20, Date: "2025-12-06"}).Return(pageOf(1, "new"), nil).Once()
	p := newTestPanel(api)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		p.ApplyFilter(ctx, Filter{Date: "2025-12-05"})
		close(done)
	}()
	<-started
	p.ApplyFilter(ctx, Filter{Date: "2025-12-06"})
	close(release)
	<-done

	st := p.Snapshot()
	require.Len(t, st.List.Appointments, 1)
	assert.Equal(t, backend.ID("new"), st.List.Appointments[0].ID)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                string
		page, total         int
		pages               int
		visible, prev, next bool
	}{
		{"no results", 1, 0, 0, false, false, false},
		{"single page", 1, 20, 1, false, false, false},
		{"first of three", 1, 45, 3, true, false, true},
		{"middle", 2, 45, 3, true, true, true},
		{"last of three", 3, 45, 3, true, true, false},
		{"two pages", 2, 21, 2, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(tt.page, tt.total)
			assert.Equal(t, tt.pages, got.TotalPages)
			assert.Equal(t, tt.visible, got.Visible)
			assert.Equal(t, tt.prev, got.PrevEnabled)
			assert.Equal(t, tt.next, got.NextEnabled)
		})
	}
	assert.Equal(t, "Page 2 of 3 (45 total)", Paginate(2, 45).Label)
}

func TestPanel_Reset(t *testing.T) {
	api := &mockAPI{}
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20, Date: "2025-12-06"}).Return(pageOf(1, "9"), nil).Once()
	p := newTestPanel(api)
	p.ApplyFilter(context.Background(), Filter{Date: "2025-12-06"})

	p.Reset()

	st := p.Snapshot()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, Filter{}, st.Filter)
	assert.Equal(t, ListIdle, st.List.Phase)
	assert.Empty(t, st.List.Appointments)
}

func TestPanel_DropsStaleStatsResponse(t *testing.T) {
	api := &mockAPI{}
	started := make(chan struct{})
	release := make(chan struct{})
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20}).Return(pageOf(9, "1"), nil)
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 1}).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(pageOf(1), nil).Once()
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 1}).Return(pageOf(9), nil).Once()
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 1, Status: backend.StatusConfirmed}).Return(pageOf(7), nil)
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 1, Status: backend.StatusCancelled}).Return(pageOf(2), nil)
	p := newTestPanel(api)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		p.Load(ctx)
		close(done)
	}()
	<-started
	st := p.Refresh(ctx)
	require.Equal(t, Stats{All: 9, Confirmed: 7, Cancelled: 2, Loaded: true}, st.Stats)
	close(release)
	<-done

	assert.Equal(t, Stats{All: 9, Confirmed: 7, Cancelled: 2, Loaded: true}, p.Snapshot().Stats)
}
