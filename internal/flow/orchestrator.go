package flow

import (
	"context"
	"errors"

	"github.com/mentorexpress/mentorexpress-web/internal/apiclient"
	"github.com/mentorexpress/mentorexpress-web/internal/handoff"
	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/internal/schema"
	"github.com/mentorexpress/mentorexpress-web/internal/session"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"github.com/mentorexpress/mentorexpress-web/pkg/metrics"
	"go.uber.org/zap"
)

// User-visible banners
const (
	MsgRequestFailed     = "No pudimos procesar tu solicitud. Por favor intenta nuevamente."
	MsgSelectFailed      = "No pudimos confirmar tu mentor. Por favor intenta nuevamente."
	MsgMentorUnavailable = "El mentor seleccionado ya no está disponible."
)

// API is the adapter surface the flow calls
type API interface {
	RequestHelp(ctx context.Context, profile *models.StudentProfile) (*models.HelpRequestResult, error)
	SelectMentor(ctx context.Context, studentID, mentorID int) (*models.SelectMentorResult, error)
}

// Outcome is the result of an action: either a redirect to Redirect, or a
// re-render of State with an error banner and field errors.
type Outcome struct {
	State       State
	Redirect    string
	Error       string
	FieldErrors *schema.FieldErrors
	Profile     *models.StudentProfile
	Result      *models.HelpRequestResult
}

func redirectTo(s State) Outcome {
	return Outcome{State: s, Redirect: Path(s)}
}

// Orchestrator executes the transition table against the adapter and the hand-off records
type Orchestrator struct {
	api               API
	channels          *handoff.Channels
	schedulingEnabled bool
}

// NewOrchestrator creates an orchestrator. With scheduling disabled a mentor
// selection ends on the success page.
func NewOrchestrator(api API, channels *handoff.Channels, schedulingEnabled bool) *Orchestrator {
	return &Orchestrator{api: api, channels: channels, schedulingEnabled: schedulingEnabled}
}

// Submit runs form → loading → (emocional | results | form)
func (o *Orchestrator) Submit(ctx context.Context, ids session.IDs, profile *models.StudentProfile) (Outcome, error) {
	if fe := schema.Validate(profile); fe != nil {
		return Outcome{State: StateForm, FieldErrors: fe, Profile: profile}, nil
	}

	tr, err := Next(StateForm, TriggerSubmit)
	if err != nil {
		return Outcome{}, err
	}

	if err := o.channels.Student.Put(ctx, ids, profile); err != nil {
		// The profile only pre-fills later forms
		logger.Warn("Failed to remember student profile", zap.Error(err))
	}

	result, err := o.api.RequestHelp(ctx, profile)
	if err != nil {
		tr, _ = Next(tr.To, TriggerRequestRejected)
		out := Outcome{State: tr.To, Error: MsgRequestFailed, Profile: profile}
		var reqErr *apiclient.RequestError
		if errors.As(err, &reqErr) && reqErr.FieldErrors() != nil {
			out.FieldErrors = reqErr.FieldErrors()
		}
		logger.Warn("Help request rejected", zap.Error(err))
		return out, nil
	}

	trigger := TriggerTriageAcademic
	if result.IsEmotional() {
		trigger = TriggerTriageEmotional
	}
	tr, err = Next(tr.To, trigger)
	if err != nil {
		return Outcome{}, err
	}

	// A new request supersedes every record of the previous one
	if tr.Has(EffectClearSession) {
		if err := o.channels.ClearSession(ctx, ids); err != nil {
			return Outcome{}, err
		}
	}
	if tr.Has(EffectPersistHelp) {
		if err := o.channels.HelpRequest.Put(ctx, ids, result); err != nil {
			return Outcome{}, err
		}
	}
	return redirectTo(tr.To), nil
}

// SelectMentor runs results → (scheduling | exito | results)
func (o *Orchestrator) SelectMentor(ctx context.Context, ids session.IDs, mentorID int) (Outcome, error) {
	result, ok, err := o.channels.HelpRequest.Get(ctx, ids)
	if err != nil {
		return Outcome{}, err
	}
	if !ok || result.IsEmotional() {
		return redirectTo(o.stale(StateResults)), nil
	}

	candidate, found := result.FindMentor(mentorID)
	if !found {
		tr, _ := Next(StateResults, TriggerSelectRejected)
		return Outcome{State: tr.To, Error: MsgMentorUnavailable, Result: result}, nil
	}

	trigger := TriggerSelectDirect
	if o.schedulingEnabled {
		trigger = TriggerSelectScheduled
	}
	tr, err := Next(StateResults, trigger)
	if err != nil {
		return Outcome{}, err
	}

	selection, err := o.api.SelectMentor(ctx, result.Student.ID, mentorID)
	if err != nil {
		logger.Warn("Mentor selection rejected", zap.Int("mentor_id", mentorID), zap.Error(err))
		tr, _ = Next(StateResults, TriggerSelectRejected)
		return Outcome{State: tr.To, Error: MsgSelectFailed, Result: result}, nil
	}

	if tr.Has(EffectPersistSelection) {
		if err := o.channels.Selection.Put(ctx, ids, selection); err != nil {
			return Outcome{}, err
		}
	}
	if tr.Has(EffectPersistHandoff) {
		h := buildHandoff(result, candidate, selection)
		if err := o.channels.Scheduling.Put(ctx, ids, &h); err != nil {
			return Outcome{}, err
		}
	}
	return redirectTo(tr.To), nil
}

// ResultsBack runs results → form, clearing every session-scope record
func (o *Orchestrator) ResultsBack(ctx context.Context, ids session.IDs) (Outcome, error) {
	tr, err := Next(StateResults, TriggerResultsBack)
	if err != nil {
		return Outcome{}, err
	}
	return o.apply(ctx, ids, tr)
}

// SchedulingBack runs scheduling → results, clearing only the scheduling record
func (o *Orchestrator) SchedulingBack(ctx context.Context, ids session.IDs) (Outcome, error) {
	tr, err := Next(StateScheduling, TriggerSchedulingBack)
	if err != nil {
		return Outcome{}, err
	}
	return o.apply(ctx, ids, tr)
}

// ConfirmBooking runs scheduling → agendado once the user reports the booking
func (o *Orchestrator) ConfirmBooking(ctx context.Context, ids session.IDs) (Outcome, error) {
	h, ok, err := o.channels.Scheduling.Get(ctx, ids)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return redirectTo(o.stale(StateScheduling)), nil
	}

	tr, err := Next(StateScheduling, TriggerBookingConfirmed)
	if err != nil {
		return Outcome{}, err
	}
	// The flow records stay until the confirmation is stored, so a failed write can be retried
	if tr.Has(EffectRecordBooking) {
		if err := o.channels.Booking.Put(ctx, ids, h); err != nil {
			return Outcome{}, err
		}
	}
	if tr.Has(EffectClearFlow) {
		if err := o.channels.ClearFlow(ctx, ids); err != nil {
			return Outcome{}, err
		}
	}
	return redirectTo(tr.To), nil
}

// Restart leaves a terminal page for the form ("volver al inicio")
func (o *Orchestrator) Restart(ctx context.Context, ids session.IDs, from State) (Outcome, error) {
	tr, err := Next(from, TriggerRestart)
	if err != nil {
		tr, _ = Next(StateExito, TriggerRestart)
	}
	return o.apply(ctx, ids, tr)
}

func (o *Orchestrator) apply(ctx context.Context, ids session.IDs, tr Transition) (Outcome, error) {
	if tr.Has(EffectClearSession) {
		if err := o.channels.ClearSession(ctx, ids); err != nil {
			return Outcome{}, err
		}
	}
	if tr.Has(EffectClearScheduling) {
		if err := o.channels.Scheduling.Clear(ctx, ids); err != nil {
			return Outcome{}, err
		}
	}
	return redirectTo(tr.To), nil
}

// stale records a guarded page opened without its record and returns the state to send the user to
func (o *Orchestrator) stale(page State) State {
	metrics.StaleNavigations.WithLabelValues(string(page)).Inc()
	logger.Debug("Guarded page opened without hand-off record",
		zap.String("page", string(page)),
		zap.Error(apperrors.StaleNavigationError(string(page))))
	return StateForm
}

func buildHandoff(result *models.HelpRequestResult, candidate models.MentorCandidate, selection *models.SelectMentorResult) models.SchedulingHandoff {
	h := models.SchedulingHandoff{
		Student: result.Student,
		Mentor:  models.Party{ID: candidate.ID, FullName: candidate.FullName, Email: candidate.Email},
	}
	if selection.Student.ID != 0 {
		h.Student = selection.Student
	}
	if selection.Mentor.ID != 0 {
		h.Mentor = selection.Mentor
	}
	return h
}
