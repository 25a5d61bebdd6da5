// Package apiclient is the page-side adapter over the gateway. It shapes gateway
// replies into view types and applies the demo fallbacks of the matching page.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/mentorexpress/mentorexpress-web/config"
	"github.com/mentorexpress/mentorexpress-web/internal/backend"
	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/internal/schema"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"github.com/mentorexpress/mentorexpress-web/pkg/metrics"
	"go.uber.org/zap"
)

// Gateway is the subset of the gateway service the adapter calls
type Gateway interface {
	CreateStudent(ctx context.Context, profile *models.StudentProfile) (json.RawMessage, error)
	CreateMentor(ctx context.Context, profile *models.MentorProfile) (json.RawMessage, error)
	RequestHelp(ctx context.Context, profile *models.StudentProfile) (*models.HelpRequestResult, error)
	SelectMentor(ctx context.Context, studentID, mentorID string) (*models.SelectMentorResult, error)
	MatchMentors(ctx context.Context, criteria models.MatchCriteria) (json.RawMessage, error)
}

// RequestError is returned for every non-2xx gateway outcome
type RequestError struct {
	Op      string
	Status  int
	Details string
	Cause   error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed with status %d", e.Op, e.Status)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// FieldErrors returns the validation failure behind a 400, if any
func (e *RequestError) FieldErrors() *schema.FieldErrors {
	var fe *schema.FieldErrors
	if apperrors.As(e.Cause, &fe) {
		return fe
	}
	return nil
}

// Client wraps the gateway for the page flow
type Client struct {
	gateway        Gateway
	matchingPolicy string
	fallbackDelay  time.Duration
	random         func() float64
}

// New creates an adapter over gateway
func New(gateway Gateway, cfg *config.Config) *Client {
	return &Client{
		gateway:        gateway,
		matchingPolicy: cfg.Fallback.Matching,
		fallbackDelay:  cfg.MatchingFallbackDelay(),
		//nolint:gosec // G404: cosmetic score, not security sensitive
		random: rand.Float64,
	}
}

// RegisterStudent creates a student record
func (c *Client) RegisterStudent(ctx context.Context, profile *models.StudentProfile) (*models.StudentRecord, error) {
	raw, err := c.gateway.CreateStudent(ctx, profile)
	if err != nil {
		return nil, requestError("registerStudent", err)
	}
	var record models.StudentRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, requestError("registerStudent", apperrors.InternalError("undecodable student record"))
	}
	return &record, nil
}

// RegisterMentor creates a mentor record
func (c *Client) RegisterMentor(ctx context.Context, profile *models.MentorProfile) (*models.MentorRecord, error) {
	raw, err := c.gateway.CreateMentor(ctx, profile)
	if err != nil {
		return nil, requestError("registerMentor", err)
	}
	var record models.MentorRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, requestError("registerMentor", apperrors.InternalError("undecodable mentor record"))
	}
	return &record, nil
}

// RequestHelp submits the help request form
func (c *Client) RequestHelp(ctx context.Context, profile *models.StudentProfile) (*models.HelpRequestResult, error) {
	result, err := c.gateway.RequestHelp(ctx, profile)
	if err != nil {
		return nil, requestError("requestHelp", err)
	}
	return result, nil
}

// SelectMentor confirms the chosen mentor for a student
func (c *Client) SelectMentor(ctx context.Context, studentID, mentorID int) (*models.SelectMentorResult, error) {
	result, err := c.gateway.SelectMentor(ctx, strconv.Itoa(studentID), strconv.Itoa(mentorID))
	if err != nil {
		return nil, requestError("selectMentor", err)
	}
	return result, nil
}

// FindMentors returns mentor cards for the matching page. An empty or
// non-list answer yields the built-in mentors; a failed call yields them
// after the fallback delay unless the matching policy is "fail".
func (c *Client) FindMentors(ctx context.Context, criteria models.MatchCriteria) ([]models.Mentor, error) {
	raw, err := c.gateway.MatchMentors(ctx, criteria)
	if err != nil {
		if c.matchingPolicy != config.FailurePolicyMock {
			return nil, requestError("findMentors", err)
		}

		logger.Warn("Matching failed, using built-in mentors", zap.Error(err))
		metrics.FallbackActivations.WithLabelValues("matching").Inc()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.fallbackDelay):
		}
		return builtinMentors(), nil
	}

	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil || len(entries) == 0 {
		return builtinMentors(), nil
	}

	mentors := make([]models.Mentor, 0, len(entries))
	for _, entry := range entries {
		mentors = append(mentors, c.toMentor(entry))
	}
	return mentors, nil
}

// toMentor coalesces an arbitrary backend mentor shape into a card
func (c *Client) toMentor(m map[string]any) models.Mentor {
	role := text(m["role"])
	if role == "" {
		role = fmt.Sprintf("%s - Year %s", firstText(m["career"], "Engineering"), firstText(m["currentYear"], "?"))
	}

	score := number(m["matchScore"])
	if score == 0 {
		score = c.random()*0.15 + 0.85
	}

	tags := make([]string, 0, 3)
	for _, key := range []string{"language", "modality", "specialtySubject"} {
		if tag := text(m[key]); tag != "" {
			tags = append(tags, tag)
		}
	}

	return models.Mentor{
		ID:         int(number(m["id"])),
		Name:       firstText(m["fullName"], text(m["name"])),
		Role:       role,
		Specialty:  firstText(m["specialtySubject"], text(m["specialty"])),
		Campus:     text(m["campus"]),
		MatchScore: score,
		Tags:       tags,
		Bio:        firstText(m["bio"], "No bio available"),
	}
}

func builtinMentors() []models.Mentor {
	out := make([]models.Mentor, len(models.BuiltinMentors))
	for i, m := range models.BuiltinMentors {
		m.Tags = append([]string(nil), m.Tags...)
		out[i] = m
	}
	return out
}

// text renders a decoded JSON scalar as display text; null and containers are empty
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// firstText returns v as text when it is a truthy JSON value, else fallback
func firstText(v any, fallback string) string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		if t != 0 {
			return text(t)
		}
	case bool:
		if t {
			return text(t)
		}
	}
	return fallback
}

func number(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// requestError maps a gateway failure onto the status the HTTP gateway answers with
func requestError(op string, err error) *RequestError {
	reqErr := &RequestError{Op: op, Status: http.StatusInternalServerError, Details: err.Error(), Cause: err}

	var backendErr *backend.Error
	var fe *schema.FieldErrors
	switch {
	case apperrors.As(err, &fe):
		reqErr.Status = http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrInvalidIdentifier):
		reqErr.Status = http.StatusBadRequest
	case apperrors.As(err, &backendErr):
		reqErr.Status = backendErr.Status
		reqErr.Details = backendErr.Details
	}
	return reqErr
}
