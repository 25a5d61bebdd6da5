package services_test

import (
	"context"
	"encoding/json"

	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockBackendClient is a mock implementation of BackendClient
type MockBackendClient struct {
	mock.Mock
}

func (m *MockBackendClient) CreateStudent(ctx context.Context, profile *models.StudentProfile) (json.RawMessage, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockBackendClient) CreateMentor(ctx context.Context, profile *models.MentorProfile) (json.RawMessage, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockBackendClient) RequestHelp(ctx context.Context, profile *models.StudentProfile) (*models.HelpRequestResult, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HelpRequestResult), args.Error(1)
}

func (m *MockBackendClient) SelectMentor(ctx context.Context, studentID, mentorID int) (*models.SelectMentorResult, error) {
	args := m.Called(ctx, studentID, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SelectMentorResult), args.Error(1)
}

func (m *MockBackendClient) MatchMentors(ctx context.Context, campus, subject string) (json.RawMessage, error) {
	args := m.Called(ctx, campus, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockBackendClient) BreakerState() string {
	args := m.Called()
	return args.String(0)
}
