package handoff

import (
	"context"
	"errors"
	"time"

	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/internal/session"
)

// Record names, shared with the browser-era storage keys
const (
	KeySchedulingData      = "schedulingData"
	KeyHelpRequestResult   = "helpRequestResult"
	KeySelectMentorResult  = "selectMentorResult"
	KeyBookingConfirmation = "bookingConfirmation"
	KeyStudentProfile      = "studentProfile"
	KeyMentorProfile       = "mentorProfile"
)

// Channels groups every hand-off record used by the pages
type Channels struct {
	Scheduling   *Handoff[models.SchedulingHandoff]
	HelpRequest  *Handoff[models.HelpRequestResult]
	Selection    *Handoff[models.SelectMentorResult]
	Booking      *Handoff[models.SchedulingHandoff]
	Student      *Handoff[models.StudentProfile]
	Mentor       *Handoff[models.MentorProfile]
	sessionScope []clearer
	flowScope    []clearer
}

type clearer interface {
	Clear(ctx context.Context, ids session.IDs) error
}

// NewChannels wires the records onto a store. Session-scope records expire
// after sessionTTL, profile records after profileTTL.
func NewChannels(store session.Store, sessionTTL, profileTTL time.Duration) *Channels {
	c := &Channels{
		Scheduling:  New[models.SchedulingHandoff](store, KeySchedulingData, session.ScopeSession, sessionTTL),
		HelpRequest: New[models.HelpRequestResult](store, KeyHelpRequestResult, session.ScopeSession, sessionTTL),
		Selection:   New[models.SelectMentorResult](store, KeySelectMentorResult, session.ScopeSession, sessionTTL),
		Booking:     New[models.SchedulingHandoff](store, KeyBookingConfirmation, session.ScopeSession, sessionTTL),
		Student:     New[models.StudentProfile](store, KeyStudentProfile, session.ScopeLocal, profileTTL),
		Mentor:      New[models.MentorProfile](store, KeyMentorProfile, session.ScopeLocal, profileTTL),
	}
	c.flowScope = []clearer{c.Scheduling, c.HelpRequest, c.Selection}
	c.sessionScope = append([]clearer{c.Booking}, c.flowScope...)
	return c
}

// ClearSession removes every session-scope record. Profile records are kept.
func (c *Channels) ClearSession(ctx context.Context, ids session.IDs) error {
	return clearAll(ctx, ids, c.sessionScope)
}

// ClearFlow removes the records of an in-progress request, keeping the booking
// confirmation and the profiles.
func (c *Channels) ClearFlow(ctx context.Context, ids session.IDs) error {
	return clearAll(ctx, ids, c.flowScope)
}

func clearAll(ctx context.Context, ids session.IDs, records []clearer) error {
	var errs []error
	for _, ch := range records {
		if err := ch.Clear(ctx, ids); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
