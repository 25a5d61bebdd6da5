package flow

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mentorexpress/mentorexpress-web/internal/apiclient"
	"github.com/mentorexpress/mentorexpress-web/internal/handoff"
	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/internal/schema"
	"github.com/mentorexpress/mentorexpress-web/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) RequestHelp(ctx context.Context, profile *models.StudentProfile) (*models.HelpRequestResult, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HelpRequestResult), args.Error(1)
}

func (m *mockAPI) SelectMentor(ctx context.Context, studentID, mentorID int) (*models.SelectMentorResult, error) {
	args := m.Called(ctx, studentID, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SelectMentorResult), args.Error(1)
}

var ids = session.IDs{SessionID: "sess-1", VisitorID: "visit-1"}

func validProfile() *models.StudentProfile {
	return &models.StudentProfile{
		FullName:    "Ana Pérez",
		Email:       "ana@uni.edu",
		Campus:      models.CampusAntonioVaras,
		Career:      models.CareerCivil,
		CurrentYear: 2,
		Needs:       "Necesito ayuda con cálculo integral",
	}
}

func academicResult() *models.HelpRequestResult {
	return &models.HelpRequestResult{
		Student: models.Party{ID: 3, FullName: "Ana Pérez", Email: "ana@uni.edu"},
		Triaje:  models.TriageResult{Tipo: models.TriageAcademic, Confianza: 0.87},
		Resultado: models.HelpOutcome{
			Tipo:    models.TriageAcademic,
			Mensaje: "Encontramos 2 mentores",
			Mentores: []models.MentorCandidate{
				{ID: 5, FullName: "Sofia Rodriguez", Email: "sofia@uni.edu", MatchScore: 0.93},
				{ID: 6, FullName: "Valentina Paz", Email: "valentina@uni.edu", MatchScore: 0.81},
			},
		},
	}
}

func emotionalResult() *models.HelpRequestResult {
	return &models.HelpRequestResult{
		Student:   models.Party{ID: 3, FullName: "Ana Pérez"},
		Triaje:    models.TriageResult{Tipo: models.TriageEmotional, Confianza: 0.91},
		Resultado: models.HelpOutcome{Tipo: models.TriageEmotional, Mensaje: "Te conectamos con bienestar"},
	}
}

func newTestOrchestrator(api API, scheduling bool) (*Orchestrator, *handoff.Channels, *session.MemoryStore) {
	store := session.NewMemoryStore(time.Hour)
	channels := handoff.NewChannels(store, time.Hour, 24*time.Hour)
	return NewOrchestrator(api, channels, scheduling), channels, store
}

func TestSubmit_AcademicGoesToResults(t *testing.T) {
	api := new(mockAPI)
	o, channels, _ := newTestOrchestrator(api, true)
	ctx := context.Background()
	profile := validProfile()
	api.On("RequestHelp", ctx, profile).Return(academicResult(), nil).Once()

	out, err := o.Submit(ctx, ids, profile)
	require.NoError(t, err)
	assert.Equal(t, "/resultados", out.Redirect)

	view, err := o.Results(ctx, ids)
	require.NoError(t, err)
	assert.Empty(t, view.Redirect)
	require.Len(t, view.Result.Resultado.Mentores, 2)
	assert.Equal(t, 87, models.ConfidencePercent(view.Result.Triaje.Confianza))

	remembered, ok, err := channels.Student.Get(ctx, ids)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ana Pérez", remembered.FullName)
	api.AssertExpectations(t)
}

func TestSubmit_EmotionalGoesToWelfare(t *testing.T) {
	api := new(mockAPI)
	o, _, _ := newTestOrchestrator(api, true)
	ctx := context.Background()
	profile := validProfile()
	api.On("RequestHelp", ctx, profile).Return(emotionalResult(), nil).Once()

	out, err := o.Submit(ctx, ids, profile)
	require.NoError(t, err)
	assert.Equal(t, "/resultado/emocional", out.Redirect)

	view, err := o.Emocional(ctx, ids)
	require.NoError(t, err)
	assert.Empty(t, view.Redirect)
	assert.Empty(t, view.Result.Resultado.Mentores)

	// The mentor list is not reachable for an emotional outcome
	view, err = o.Results(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, "/resultado/emocional", view.Redirect)
}

func TestSubmit_InvalidProfileNeverCallsAPI(t *testing.T) {
	api := new(mockAPI)
	o, _, store := newTestOrchestrator(api, true)
	profile := validProfile()
	profile.Email = "not-an-email"

	out, err := o.Submit(context.Background(), ids, profile)
	require.NoError(t, err)
	assert.Empty(t, out.Redirect)
	assert.Equal(t, StateForm, out.State)
	require.NotNil(t, out.FieldErrors)
	assert.Equal(t, []string{"email"}, out.FieldErrors.Fields())
	assert.Equal(t, 0, store.Len())
	api.AssertNotCalled(t, "RequestHelp", mock.Anything, mock.Anything)
}

func TestSubmit_RejectionStaysOnForm(t *testing.T) {
	api := new(mockAPI)
	o, channels, _ := newTestOrchestrator(api, true)
	ctx := context.Background()
	profile := validProfile()
	fe := &schema.FieldErrors{FieldErrors: map[string][]string{"needs": {"Demasiado corto"}}}
	api.On("RequestHelp", ctx, profile).Return(nil, &apiclient.RequestError{Op: "requestHelp", Status: http.StatusBadRequest, Cause: fe}).Once()

	out, err := o.Submit(ctx, ids, profile)
	require.NoError(t, err)
	assert.Empty(t, out.Redirect)
	assert.Equal(t, StateForm, out.State)
	assert.Equal(t, MsgRequestFailed, out.Error)
	assert.Equal(t, fe, out.FieldErrors)
	assert.Equal(t, profile, out.Profile)

	_, ok, err := channels.HelpRequest.Get(ctx, ids)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectMentor_DirectSuccess(t *testing.T) {
	api := new(mockAPI)
	o, channels, _ := newTestOrchestrator(api, false)
	ctx := context.Background()
	require.NoError(t, channels.HelpRequest.Put(ctx, ids, academicResult()))

	selection := &models.SelectMentorResult{
		Student: models.Party{ID: 3, FullName: "Ana Pérez"},
		Mentor:  models.Party{ID: 5, FullName: "Sofia Rodriguez"},
		Mensaje: "Mentor asignado",
	}
	api.On("SelectMentor", ctx, 3, 5).Return(selection, nil).Once()

	out, err := o.SelectMentor(ctx, ids, 5)
	require.NoError(t, err)
	assert.Equal(t, "/resultado/exito", out.Redirect)

	view, err := o.Exito(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", view.Selection.Student.FullName)
	assert.Equal(t, "Sofia Rodriguez", view.Selection.Mentor.FullName)

	// Scheduling is off, so no hand-off record was written
	_, ok, err := channels.Scheduling.Get(ctx, ids)
	require.NoError(t, err)
	assert.False(t, ok)

	out, err = o.Restart(ctx, ids, StateExito)
	require.NoError(t, err)
	assert.Equal(t, "/", out.Redirect)

	_, ok, err = channels.HelpRequest.Get(ctx, ids)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = channels.Selection.Get(ctx, ids)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectMentor_ScheduledWritesHandoff(t *testing.T) {
	api := new(mockAPI)
	o, _, _ := newTestOrchestrator(api, true)
	ctx := context.Background()
	require.NoError(t, o.channels.HelpRequest.Put(ctx, ids, academicResult()))

	// Backend answers without party details; the handoff falls back to the candidate
	api.On("SelectMentor", ctx, 3, 6).Return(&models.SelectMentorResult{Mensaje: "ok"}, nil).Once()

	out, err := o.SelectMentor(ctx, ids, 6)
	require.NoError(t, err)
	assert.Equal(t, "/agendar", out.Redirect)

	first, err := o.Scheduling(ctx, ids)
	require.NoError(t, err)
	assert.Empty(t, first.Redirect)
	assert.Equal(t, models.SchedulingHandoff{
		Student: models.Party{ID: 3, FullName: "Ana Pérez", Email: "ana@uni.edu"},
		Mentor:  models.Party{ID: 6, FullName: "Valentina Paz", Email: "valentina@uni.edu"},
	}, *first.Scheduling)

	// Reloading renders the same view
	second, err := o.Scheduling(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSelectMentor_UnknownMentor(t *testing.T) {
	api := new(mockAPI)
	o, channels, _ := newTestOrchestrator(api, true)
	ctx := context.Background()
	require.NoError(t, channels.HelpRequest.Put(ctx, ids, academicResult()))

	out, err := o.SelectMentor(ctx, ids, 99)
	require.NoError(t, err)
	assert.Empty(t, out.Redirect)
	assert.Equal(t, StateResults, out.State)
	assert.Equal(t, MsgMentorUnavailable, out.Error)
	api.AssertNotCalled(t, "SelectMentor", mock.Anything, mock.Anything, mock.Anything)
}

func TestSelectMentor_RejectionStaysOnResults(t *testing.T) {
	api := new(mockAPI)
	o, channels, _ := newTestOrchestrator(api, true)
	ctx := context.Background()
	require.NoError(t, channels.HelpRequest.Put(ctx, ids, academicResult()))
	api.On("SelectMentor", ctx, 3, 5).Return(nil, errors.New("boom")).Once()

	out, err := o.SelectMentor(ctx, ids, 5)
	require.NoError(t, err)
	assert.Equal(t, StateResults, out.State)
	assert.Equal(t, MsgSelectFailed, out.Error)
	require.NotNil(t, out.Result)

	_, ok, err := channels.Scheduling.Get(ctx, ids)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectMentor_WithoutResultIsStale(t *testing.T) {
	api := new(mockAPI)
	o, _, _ := newTestOrchestrator(api, true)

	out, err := o.SelectMentor(context.Background(), ids, 5)
	require.NoError(t, err)
	assert.Equal(t, "/", out.Redirect)
}

func TestGuards_RedirectHomeWithoutRecords(t *testing.T) {
	o, _, _ := newTestOrchestrator(new(mockAPI), true)
	ctx := context.Background()

	for name, view := range map[string]func(context.Context, session.IDs) (View, error){
		"results":    o.Results,
		"emocional":  o.Emocional,
		"scheduling": o.Scheduling,
		"exito":      o.Exito,
		"agendado":   o.Agendado,
	} {
		v, err := view(ctx, ids)
		require.NoError(t, err, name)
		assert.Equal(t, "/", v.Redirect, name)
	}
}

func TestBooking_ConfirmationReadOnce(t *testing.T) {
	o, channels, _ := newTestOrchestrator(new(mockAPI), true)
	ctx := context.Background()
	h := &models.SchedulingHandoff{
		Student: models.Party{ID: 3, FullName: "Ana Pérez"},
		Mentor:  models.Party{ID: 5, FullName: "Sofia Rodriguez"},
	}
	require.NoError(t, channels.HelpRequest.Put(ctx, ids, academicResult()))
	require.NoError(t, channels.Scheduling.Put(ctx, ids, h))

	out, err := o.ConfirmBooking(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, "/resultado/agendado", out.Redirect)

	// Leaving scheduling clears the session records
	_, ok, err := channels.Scheduling.Get(ctx, ids)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = channels.HelpRequest.Get(ctx, ids)
	require.NoError(t, err)
	assert.False(t, ok)

	view, err := o.Agendado(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, h, view.Scheduling)

	view, err = o.Agendado(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, "/", view.Redirect)
}

func TestSubmit_NewRequestDropsPreviousFlow(t *testing.T) {
	api := new(mockAPI)
	o, channels, _ := newTestOrchestrator(api, true)
	ctx := context.Background()
	profile := validProfile()
	api.On("RequestHelp", ctx, profile).Return(academicResult(), nil).Once()
	api.On("RequestHelp", ctx, profile).Return(emotionalResult(), nil).Once()
	api.On("SelectMentor", ctx, 3, 5).Return(&models.SelectMentorResult{Mensaje: "ok"}, nil).Once()

	out, err := o.Submit(ctx, ids, profile)
	require.NoError(t, err)
	assert.Equal(t, "/resultados", out.Redirect)
	out, err = o.SelectMentor(ctx, ids, 5)
	require.NoError(t, err)
	assert.Equal(t, "/agendar", out.Redirect)
	require.NoError(t, channels.Booking.Put(ctx, ids, &models.SchedulingHandoff{}))

	// Back to "/" by plain navigation, then a request triaged emotional
	out, err = o.Submit(ctx, ids, profile)
	require.NoError(t, err)
	assert.Equal(t, "/resultado/emocional", out.Redirect)

	for name, view := range map[string]func(context.Context, session.IDs) (View, error){
		"scheduling": o.Scheduling,
		"exito":      o.Exito,
		"agendado":   o.Agendado,
	} {
		v, err := view(ctx, ids)
		require.NoError(t, err, name)
		assert.Equal(t, "/", v.Redirect, name)
	}

	out, err = o.ConfirmBooking(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, "/", out.Redirect)

	v, err := o.Emocional(ctx, ids)
	require.NoError(t, err)
	assert.Empty(t, v.Redirect)
	api.AssertExpectations(t)
}

// flakyStore fails writes to keys ending in failSuffix while failing is set
type flakyStore struct {
	session.Store
	failSuffix string
	failing    bool
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.failing && strings.HasSuffix(key, s.failSuffix) {
		return errors.New("write refused")
	}
	return s.Store.Set(ctx, key, value, ttl)
}

func TestConfirmBooking_FailedWriteKeepsFlow(t *testing.T) {
	store := &flakyStore{Store: session.NewMemoryStore(time.Hour), failSuffix: handoff.KeyBookingConfirmation, failing: true}
	channels := handoff.NewChannels(store, time.Hour, 24*time.Hour)
	o := NewOrchestrator(new(mockAPI), channels, true)
	ctx := context.Background()
	h := &models.SchedulingHandoff{
		Student: models.Party{ID: 3, FullName: "Ana Pérez"},
		Mentor:  models.Party{ID: 5, FullName: "Sofia Rodriguez"},
	}
	require.NoError(t, channels.HelpRequest.Put(ctx, ids, academicResult()))
	require.NoError(t, channels.Scheduling.Put(ctx, ids, h))

	_, err := o.ConfirmBooking(ctx, ids)
	require.Error(t, err)

	_, ok, err := channels.Scheduling.Get(ctx, ids)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = channels.HelpRequest.Get(ctx, ids)
	require.NoError(t, err)
	assert.True(t, ok)

	// The same confirmation succeeds once the store recovers
	store.failing = false
	out, err := o.ConfirmBooking(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, "/resultado/agendado", out.Redirect)

	view, err := o.Agendado(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, h, view.Scheduling)
	_, ok, err = channels.Scheduling.Get(ctx, ids)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmBooking_WithoutHandoffIsStale(t *testing.T) {
	o, _, _ := newTestOrchestrator(new(mockAPI), true)

	out, err := o.ConfirmBooking(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, "/", out.Redirect)
}

func TestSchedulingBack_KeepsResults(t *testing.T) {
	o, channels, _ := newTestOrchestrator(new(mockAPI), true)
	ctx := context.Background()
	require.NoError(t, channels.HelpRequest.Put(ctx, ids, academicResult()))
	require.NoError(t, channels.Scheduling.Put(ctx, ids, &models.SchedulingHandoff{}))

	out, err := o.SchedulingBack(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, "/resultados", out.Redirect)

	_, ok, err := channels.Scheduling.Get(ctx, ids)
	require.NoError(t, err)
	assert.False(t, ok)

	view, err := o.Results(ctx, ids)
	require.NoError(t, err)
	assert.Empty(t, view.Redirect)
}

func TestResultsBack_ClearsSessionKeepsProfile(t *testing.T) {
	o, channels, _ := newTestOrchestrator(new(mockAPI), true)
	ctx := context.Background()
	require.NoError(t, channels.HelpRequest.Put(ctx, ids, academicResult()))
	require.NoError(t, channels.Student.Put(ctx, ids, validProfile()))

	out, err := o.ResultsBack(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, "/", out.Redirect)

	_, ok, err := channels.HelpRequest.Get(ctx, ids)
	require.NoError(t, err)
	assert.False(t, ok)

	form := o.Form(ctx, ids)
	require.NotNil(t, form.Profile)
	assert.Equal(t, "ana@uni.edu", form.Profile.Email)
}

func TestRestart_UnknownStateStillGoesHome(t *testing.T) {
	o, _, _ := newTestOrchestrator(new(mockAPI), true)

	out, err := o.Restart(context.Background(), ids, State("bogus"))
	require.NoError(t, err)
	assert.Equal(t, "/", out.Redirect)
}
