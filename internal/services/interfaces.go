package services

import (
	"context"
	"encoding/json"

	"github.com/mentorexpress/mentorexpress-web/internal/backend"
	"github.com/mentorexpress/mentorexpress-web/internal/models"
)

// BackendClient defines the external backend operations the gateway forwards to
type BackendClient interface {
	CreateStudent(ctx context.Context, profile *models.StudentProfile) (json.RawMessage, error)
	CreateMentor(ctx context.Context, profile *models.MentorProfile) (json.RawMessage, error)
	RequestHelp(ctx context.Context, profile *models.StudentProfile) (*models.HelpRequestResult, error)
	SelectMentor(ctx context.Context, studentID, mentorID int) (*models.SelectMentorResult, error)
	MatchMentors(ctx context.Context, campus, subject string) (json.RawMessage, error)
	BreakerState() string
}

// GatewayServiceInterface defines the interface for gateway service operations
type GatewayServiceInterface interface {
	CreateStudent(ctx context.Context, profile *models.StudentProfile) (json.RawMessage, error)
	CreateMentor(ctx context.Context, profile *models.MentorProfile) (json.RawMessage, error)
	RequestHelp(ctx context.Context, profile *models.StudentProfile) (*models.HelpRequestResult, error)
	SelectMentor(ctx context.Context, studentID, mentorID string) (*models.SelectMentorResult, error)
	MatchMentors(ctx context.Context, criteria models.MatchCriteria) (json.RawMessage, error)
	MatchingPolicy() string
	BackendState() string
}

// Ensure implementations satisfy their interfaces
var _ BackendClient = (*backend.Client)(nil)
var _ GatewayServiceInterface = (*GatewayService)(nil)
