package services

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"

	"github.com/mentorexpress/mentorexpress-web/config"
	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/internal/schema"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"github.com/mentorexpress/mentorexpress-web/pkg/metrics"
	"go.uber.org/zap"
)

// GatewayService validates inbound payloads and forwards them to the external backend
type GatewayService struct {
	backend  BackendClient
	fallback config.FallbackConfig
	randomID func() int
}

// NewGatewayService creates a new gateway service instance
func NewGatewayService(backend BackendClient, cfg *config.Config) *GatewayService {
	return &GatewayService{
		backend:  backend,
		fallback: cfg.Fallback,
		randomID: mockRecordID,
	}
}

// mockRecordID returns an id in [1, 999] for records synthesized while the backend is down
func mockRecordID() int {
	//nolint:gosec // G404: synthesized demo ids need no cryptographic randomness
	return rand.Intn(999) + 1
}

// CreateStudent registers a student, synthesizing the record when the backend is
// unreachable and the students policy is "mock"
func (s *GatewayService) CreateStudent(ctx context.Context, profile *models.StudentProfile) (json.RawMessage, error) {
	if fe := schema.Validate(profile); fe != nil {
		metrics.Registrations.WithLabelValues("student", "invalid").Inc()
		return nil, fe
	}

	record, err := s.backend.CreateStudent(ctx, profile)
	if err == nil {
		metrics.Registrations.WithLabelValues("student", "success").Inc()
		return record, nil
	}

	if s.shouldMock(s.fallback.Students, err) {
		metrics.Registrations.WithLabelValues("student", "mocked").Inc()
		metrics.FallbackActivations.WithLabelValues("students").Inc()
		logger.Warn("Backend unreachable, synthesizing student record", zap.Error(err))
		return json.Marshal(models.StudentRecord{ID: s.randomID(), StudentProfile: *profile})
	}

	metrics.Registrations.WithLabelValues("student", "error").Inc()
	return nil, err
}

// CreateMentor registers a mentor under the mentors failure policy
func (s *GatewayService) CreateMentor(ctx context.Context, profile *models.MentorProfile) (json.RawMessage, error) {
	if fe := schema.Validate(profile); fe != nil {
		metrics.Registrations.WithLabelValues("mentor", "invalid").Inc()
		return nil, fe
	}

	record, err := s.backend.CreateMentor(ctx, profile)
	if err == nil {
		metrics.Registrations.WithLabelValues("mentor", "success").Inc()
		return record, nil
	}

	if s.shouldMock(s.fallback.Mentors, err) {
		metrics.Registrations.WithLabelValues("mentor", "mocked").Inc()
		metrics.FallbackActivations.WithLabelValues("mentors").Inc()
		logger.Warn("Backend unreachable, synthesizing mentor record", zap.Error(err))
		return json.Marshal(models.MentorRecord{ID: s.randomID(), MentorProfile: *profile})
	}

	metrics.Registrations.WithLabelValues("mentor", "error").Inc()
	return nil, err
}

// RequestHelp submits a student request for triage. Failures are always surfaced.
func (s *GatewayService) RequestHelp(ctx context.Context, profile *models.StudentProfile) (*models.HelpRequestResult, error) {
	if fe := schema.Validate(profile); fe != nil {
		return nil, fe
	}

	result, err := s.backend.RequestHelp(ctx, profile)
	if err != nil {
		logger.Error("Help request failed", zap.Error(err))
		return nil, err
	}

	metrics.TriageOutcomes.WithLabelValues(string(result.Triaje.Tipo)).Inc()
	return result, nil
}

// SelectMentor confirms a mentor choice. Both ids must be positive integers.
func (s *GatewayService) SelectMentor(ctx context.Context, studentID, mentorID string) (*models.SelectMentorResult, error) {
	sid, err := parseID("studentId", studentID)
	if err != nil {
		metrics.MentorSelections.WithLabelValues("invalid").Inc()
		return nil, err
	}
	mid, err := parseID("mentorId", mentorID)
	if err != nil {
		metrics.MentorSelections.WithLabelValues("invalid").Inc()
		return nil, err
	}

	result, err := s.backend.SelectMentor(ctx, sid, mid)
	if err != nil {
		metrics.MentorSelections.WithLabelValues("error").Inc()
		logger.Error("Mentor selection failed",
			zap.Int("student_id", sid),
			zap.Int("mentor_id", mid),
			zap.Error(err))
		return nil, err
	}

	metrics.MentorSelections.WithLabelValues("success").Inc()
	return result, nil
}

// MatchMentors forwards matching filters and returns the backend mentor array untouched
func (s *GatewayService) MatchMentors(ctx context.Context, criteria models.MatchCriteria) (json.RawMessage, error) {
	return s.backend.MatchMentors(ctx, string(criteria.Campus), string(criteria.Subject))
}

// MatchingPolicy is the failure policy of the demo matching page
func (s *GatewayService) MatchingPolicy() string {
	return s.fallback.Matching
}

// BackendState reports the backend circuit breaker state
func (s *GatewayService) BackendState() string {
	return s.backend.BreakerState()
}

func (s *GatewayService) shouldMock(policy string, err error) bool {
	return policy == config.FailurePolicyMock && apperrors.Is(err, apperrors.ErrBackendUnavailable)
}

func parseID(param, raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidIdentifierError(param, raw)
	}
	return id, nil
}
