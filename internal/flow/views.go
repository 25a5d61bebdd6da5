package flow

import (
	"context"

	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/internal/session"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"go.uber.org/zap"
)

// View is what a GET on a flow page renders. A non-empty Redirect means the
// page must not render and the user goes there instead.
type View struct {
	State      State
	Redirect   string
	Profile    *models.StudentProfile
	Result     *models.HelpRequestResult
	Selection  *models.SelectMentorResult
	Scheduling *models.SchedulingHandoff
}

func (o *Orchestrator) redirectView(to State) View {
	return View{State: to, Redirect: Path(to)}
}

// Form pre-fills the help request form from the remembered student profile
func (o *Orchestrator) Form(ctx context.Context, ids session.IDs) View {
	view := View{State: StateForm}
	profile, ok, err := o.channels.Student.Get(ctx, ids)
	if err != nil {
		logger.Warn("Failed to load remembered student profile", zap.Error(err))
		return view
	}
	if ok {
		view.Profile = profile
	}
	return view
}

// Results guards the mentor list page
func (o *Orchestrator) Results(ctx context.Context, ids session.IDs) (View, error) {
	result, ok, err := o.channels.HelpRequest.Get(ctx, ids)
	if err != nil {
		return View{}, err
	}
	if !ok {
		return o.redirectView(o.stale(StateResults)), nil
	}
	if result.IsEmotional() {
		return o.redirectView(StateEmocional), nil
	}
	return View{State: StateResults, Result: result}, nil
}

// Emocional guards the welfare resources page
func (o *Orchestrator) Emocional(ctx context.Context, ids session.IDs) (View, error) {
	result, ok, err := o.channels.HelpRequest.Get(ctx, ids)
	if err != nil {
		return View{}, err
	}
	if !ok {
		return o.redirectView(o.stale(StateEmocional)), nil
	}
	if !result.IsEmotional() {
		return o.redirectView(StateResults), nil
	}
	return View{State: StateEmocional, Result: result}, nil
}

// Scheduling guards the booking page. Reading does not consume the record,
// so reloading the page renders the same view.
func (o *Orchestrator) Scheduling(ctx context.Context, ids session.IDs) (View, error) {
	h, ok, err := o.channels.Scheduling.Get(ctx, ids)
	if err != nil {
		return View{}, err
	}
	if !ok {
		return o.redirectView(o.stale(StateScheduling)), nil
	}
	return View{State: StateScheduling, Scheduling: h}, nil
}

// Exito guards the direct success page
func (o *Orchestrator) Exito(ctx context.Context, ids session.IDs) (View, error) {
	selection, ok, err := o.channels.Selection.Get(ctx, ids)
	if err != nil {
		return View{}, err
	}
	if !ok {
		return o.redirectView(o.stale(StateExito)), nil
	}
	return View{State: StateExito, Selection: selection}, nil
}

// Agendado renders the booking confirmation once
func (o *Orchestrator) Agendado(ctx context.Context, ids session.IDs) (View, error) {
	h, ok, err := o.channels.Booking.TakeOnce(ctx, ids)
	if err != nil {
		return View{}, err
	}
	if !ok {
		return o.redirectView(o.stale(StateAgendado)), nil
	}
	return View{State: StateAgendado, Scheduling: h}, nil
}
