package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/sly-barbershop/internal/backend"
)

func TestPanel_CancelRequiresConfirmation(t *testing.T) {
	api := &mockAPI{}
	p := newTestPanel(api)

	_, err := p.Cancel(context.Background(), "7")

	assert.ErrorIs(t, err, ErrNotConfirmed)
	api.AssertNotCalled(t, "CancelAppointment", mock.Anything, mock.Anything)
}

func TestPanel_ConfirmationMustMatch(t *testing.T) {
	api := &mockAPI{}
	p := newTestPanel(api)

	_, err := p.Confirm(ActionCancel, "7")
	require.NoError(t, err)

	_, err = p.Delete(context.Background(), "7")
	assert.ErrorIs(t, err, ErrNotConfirmed)
	_, err = p.Cancel(context.Background(), "8")
	assert.ErrorIs(t, err, ErrNotConfirmed)
	api.AssertNotCalled(t, "DeleteAppointment", mock.Anything, mock.Anything)
}

func TestPanel_DeletePromptIsPermanent(t *testing.T) {
	p := newTestPanel(&mockAPI{})

	cancel, err := p.Confirm(ActionCancel, "7")
	require.NoError(t, err)
	del, err := p.Confirm(ActionDelete, "7")
	require.NoError(t, err)

	assert.NotContains(t, cancel.Prompt, "PERMANENTLY")
	assert.Contains(t, del.Prompt, "PERMANENTLY")
	assert.Equal(t, &del, p.Snapshot().Pending)

	_, err = p.Confirm(Action("archive"), "7")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestPanel_CancelReloadsListAndStats(t *testing.T) {
	api := &mockAPI{}
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20}).Return(pageOf(2, "7", "8"), nil)
	expectStats(api, 2, 2, 0)
	expectStats(api, 2, 1, 1)
	api.On("CancelAppointment", mock.Anything, backend.ID("7")).Return(&backend.Appointment{ID: "7", Status: backend.StatusCancelled}, nil).Once()
	p := newTestPanel(api)
	ctx := context.Background()
	p.Load(ctx)

	_, err := p.Confirm(ActionCancel, "7")
	require.NoError(t, err)
	st, err := p.Cancel(ctx, "7")

	require.NoError(t, err)
	assert.Nil(t, st.Pending)
	require.NotNil(t, st.Notice)
	assert.Equal(t, NoticeSuccess, st.Notice.Kind)
	assert.Equal(t, Stats{All: 2, Confirmed: 1, Cancelled: 1, Loaded: true}, st.Stats)
	api.AssertExpectations(t)
}

func TestPanel_DeleteFailureLeavesStateUnchanged(t *testing.T) {
	api := &mockAPI{}
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20}).Return(pageOf(2, "7", "8"), nil).Once()
	expectStats(api, 2, 2, 0)
	api.On("DeleteAppointment", mock.Anything, backend.ID("7")).Return(&backend.ServerError{Op: "delete_appointment", StatusCode: 500}).Once()
	p := newTestPanel(api)
	ctx := context.Background()
	before := p.Load(ctx)

	_, err := p.Confirm(ActionDelete, "7")
	require.NoError(t, err)
	st, err := p.Delete(ctx, "7")

	require.Error(t, err)
	require.NotNil(t, st.Notice)
	assert.Equal(t, "Error deleting appointment. Please try again.", st.Notice.Text)
	assert.Equal(t, before.List, st.List)
	assert.Equal(t, before.Stats, st.Stats)
	api.AssertNumberOfCalls(t, "ListAppointments", 4)
}

func freshAppointment() *backend.Appointment {
	return &backend.Appointment{
		ID:         "7",
		ClientName: "Juan Perez",
		Email:      "juan@example.com",
		Date:       "2025-12-06",
		Time:       "10:30",
		Service:    "Classic cut",
		Status:     backend.StatusConfirmed,
	}
}

func TestPanel_BeginEditUsesFreshRecord(t *testing.T) {
	api := &mockAPI{}
	api.On("GetAppointment", mock.Anything, backend.ID("7")).Return(freshAppointment(), nil).Once()
	p := newTestPanel(api)

	st, err := p.BeginEdit(context.Background(), "7")

	require.NoError(t, err)
	assert.True(t, st.Edit.Open)
	assert.Equal(t, EditForm{ClientName: "Juan Perez", Email: "juan@example.com", Date: "2025-12-06", Time: "10:30", Service: "Classic cut"}, st.Edit.Form)
}

func TestPanel_BeginEditFailure(t *testing.T) {
	api := &mockAPI{}
	api.On("GetAppointment", mock.Anything, backend.ID("7")).Return(nil, &backend.NotFoundError{Resource: "appointment", ID: "7"}).Once()
	p := newTestPanel(api)

	st, err := p.BeginEdit(context.Background(), "7")

	require.Error(t, err)
	assert.False(t, st.Edit.Open)
	require.NotNil(t, st.Notice)
	assert.Equal(t, NoticeError, st.Notice.Kind)
}

func TestPanel_SubmitEditValidates(t *testing.T) {
	api := &mockAPI{}
	api.On("GetAppointment", mock.Anything, backend.ID("7")).Return(freshAppointment(), nil).Once()
	p := newTestPanel(api)
	_, err := p.BeginEdit(context.Background(), "7")
	require.NoError(t, err)

	st, err := p.SubmitEdit(context.Background(), EditForm{ClientName: " ", Email: "nope", Date: "06/12/2025", Time: "late"})

	var verr *EditValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"full name", "email", "date", "time", "service"}, verr.Fields)
	assert.True(t, st.Edit.Open)
	assert.Equal(t, "nope", st.Edit.Form.Email)
	api.AssertNotCalled(t, "UpdateAppointment", mock.Anything, mock.Anything, mock.Anything)
}

func TestPanel_SubmitEditServerErrorKeepsOverlay(t *testing.T) {
	api := &mockAPI{}
	api.On("GetAppointment", mock.Anything, backend.ID("7")).Return(freshAppointment(), nil).Once()
	api.On("UpdateAppointment", mock.Anything, backend.ID("7"), mock.Anything).
		Return(nil, &backend.ApplicationError{Op: "update_appointment", StatusCode: 400, Messages: []string{"Horario no disponible"}}).Once()
	p := newTestPanel(api)
	_, err := p.BeginEdit(context.Background(), "7")
	require.NoError(t, err)

	form := EditForm{ClientName: "Juan P", Email: "juan@example.com", Date: "2025-12-08", Time: "11:00", Service: "Beard"}
	st, err := p.SubmitEdit(context.Background(), form)

	require.Error(t, err)
	assert.True(t, st.Edit.Open)
	assert.False(t, st.Edit.Saving)
	assert.Equal(t, form, st.Edit.Form)
	assert.Equal(t, "Horario no disponible", st.Edit.Error)
}

func TestPanel_SubmitEditSuccessClosesAndReloads(t *testing.T) {
	api := &mockAPI{}
	api.On("GetAppointment", mock.Anything, backend.ID("7")).Return(freshAppointment(), nil).Once()
	api.On("UpdateAppointment", mock.Anything, backend.ID("7"), backend.AppointmentUpdate{
		ClientName: "Juan P",
		Email:      "juan@example.com",
		Date:       "2025-12-08",
		Time:       "11:00",
		Service:    "Beard",
	}).Return(freshAppointment(), nil).Once()
	api.On("ListAppointments", mock.Anything, backend.ListQuery{Limit: 20}).Return(pageOf(1, "7"), nil).Once()
	expectStats(api, 1, 1, 0)
	p := newTestPanel(api)
	_, err := p.BeginEdit(context.Background(), "7")
	require.NoError(t, err)

	st, err := p.SubmitEdit(context.Background(), EditForm{ClientName: "Juan P ", Email: "juan@example.com", Date: "2025-12-08", Time: "11:00", Service: "Beard"})

	require.NoError(t, err)
	assert.False(t, st.Edit.Open)
	require.NotNil(t, st.Notice)
	assert.Equal(t, "Appointment updated successfully", st.Notice.Text)
	api.AssertExpectations(t)
}

func TestPanel_SubmitEditWithoutOverlay(t *testing.T) {
	p := newTestPanel(&mockAPI{})

	_, err := p.SubmitEdit(context.Background(), EditForm{})

	assert.True(t, errors.Is(err, ErrEditNotOpen))
}

func TestPanel_CloseEditDiscards(t *testing.T) {
	api := &mockAPI{}
	api.On("GetAppointment", mock.Anything, backend.ID("7")).Return(freshAppointment(), nil).Once()
	p := newTestPanel(api)
	_, err := p.BeginEdit(context.Background(), "7")
	require.NoError(t, err)

	st := p.CloseEdit()

	assert.Equal(t, EditState{}, st.Edit)
}

func TestPanel_CloseEditDropsPendingFetch(t *testing.T) {
	api := &mockAPI{}
	started := make(chan struct{})
	release := make(chan struct{})
	api.On("GetAppointment", mock.Anything, backend.ID("7")).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(freshAppointment(), nil).Once()
	p := newTestPanel(api)

	done := make(chan PanelState)
	go func() {
		st, _ := p.BeginEdit(context.Background(), "7")
		done <- st
	}()
	<-started
	p.CloseEdit()
	close(release)

	st := <-done
	assert.False(t, st.Edit.Open)
	assert.Equal(t, EditState{}, p.Snapshot().Edit)
}
