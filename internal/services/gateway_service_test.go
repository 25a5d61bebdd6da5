package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/mentorexpress/mentorexpress-web/config"
	"github.com/mentorexpress/mentorexpress-web/internal/backend"
	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/internal/schema"
	"github.com/mentorexpress/mentorexpress-web/internal/services"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func gatewayConfig(studentsPolicy string) *config.Config {
	return &config.Config{
		Fallback: config.FallbackConfig{
			Students:     studentsPolicy,
			Mentors:      config.FailurePolicyMock,
			Matching:     config.FailurePolicyMock,
			RequestHelp:  config.FailurePolicyFail,
			SelectMentor: config.FailurePolicyFail,
		},
	}
}

func anaProfile() *models.StudentProfile {
	return &models.StudentProfile{
		FullName:    "Ana Pérez",
		Email:       "ana@uni.edu",
		Campus:      models.CampusAntonioVaras,
		Career:      models.CareerCivil,
		CurrentYear: 2,
		Needs:       "Necesito ayuda con Cálculo II derivadas",
	}
}

func sofiaProfile() *models.MentorProfile {
	return &models.MentorProfile{
		FullName:         "Sofia Rodriguez",
		Email:            "sofia@uni.edu",
		Campus:           models.CampusAntonioVaras,
		Career:           models.CareerCivil,
		SpecialtySubject: models.SubjectCalculusI,
		Language:         models.LanguageSpanish,
		Modality:         models.ModalityInPerson,
		Bio:              "Ayudo con derivadas e integrales desde primer año",
	}
}

var errUnreachable = apperrors.BackendUnavailableError("createStudent", errors.New("connection refused"))

func TestGatewayService_CreateStudent_Forwards(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyMock))
	ctx := context.Background()
	profile := anaProfile()

	mockBackend.On("CreateStudent", ctx, profile).Return(json.RawMessage(`{"id":3}`), nil).Once()

	record, err := service.CreateStudent(ctx, profile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3}`, string(record))
	mockBackend.AssertExpectations(t)
}

func TestGatewayService_CreateStudent_InvalidNeverForwarded(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyMock))

	profile := anaProfile()
	profile.Needs = "corto"

	_, err := service.CreateStudent(context.Background(), profile)
	require.Error(t, err)

	var fe *schema.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{"needs"}, fe.Fields())
	mockBackend.AssertNotCalled(t, "CreateStudent", mock.Anything, mock.Anything)
}

func TestGatewayService_CreateStudent_MockFallbackEchoesInput(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyMock))
	ctx := context.Background()
	profile := anaProfile()

	mockBackend.On("CreateStudent", ctx, profile).Return(nil, errUnreachable).Once()

	record, err := service.CreateStudent(ctx, profile)
	require.NoError(t, err)

	var created models.StudentRecord
	require.NoError(t, json.Unmarshal(record, &created))
	assert.GreaterOrEqual(t, created.ID, 0)
	assert.Less(t, created.ID, 1000)
	assert.Equal(t, *profile, created.StudentProfile)
}

func TestGatewayService_CreateStudent_FailPolicySurfacesError(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyFail))
	ctx := context.Background()
	profile := anaProfile()

	mockBackend.On("CreateStudent", ctx, profile).Return(nil, errUnreachable).Once()

	_, err := service.CreateStudent(ctx, profile)
	assert.True(t, apperrors.Is(err, apperrors.ErrBackendUnavailable))
}

func TestGatewayService_CreateStudent_RejectionNeverMocked(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyMock))
	ctx := context.Background()
	profile := anaProfile()
	rejection := &backend.Error{Operation: backend.OpCreateStudent, Status: http.StatusConflict, Details: "duplicate"}

	mockBackend.On("CreateStudent", ctx, profile).Return(nil, rejection).Once()

	_, err := service.CreateStudent(ctx, profile)
	var backendErr *backend.Error
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusConflict, backendErr.Status)
}

func TestGatewayService_CreateMentor_MockFallback(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyMock))
	ctx := context.Background()
	profile := sofiaProfile()

	mockBackend.On("CreateMentor", ctx, profile).Return(nil, errUnreachable).Once()

	record, err := service.CreateMentor(ctx, profile)
	require.NoError(t, err)

	var created models.MentorRecord
	require.NoError(t, json.Unmarshal(record, &created))
	assert.Equal(t, "Sofia Rodriguez", created.FullName)
	assert.Equal(t, models.SubjectCalculusI, created.SpecialtySubject)
}

func TestGatewayService_RequestHelp_NoFallback(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyMock))
	ctx := context.Background()
	profile := anaProfile()

	mockBackend.On("RequestHelp", ctx, profile).Return(nil, errUnreachable).Once()

	result, err := service.RequestHelp(ctx, profile)
	assert.Nil(t, result)
	assert.True(t, apperrors.Is(err, apperrors.ErrBackendUnavailable))
}

func TestGatewayService_RequestHelp_ReturnsTriage(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyMock))
	ctx := context.Background()
	profile := anaProfile()
	expected := &models.HelpRequestResult{
		Triaje:    models.TriageResult{Tipo: models.TriageAcademic, Confianza: 0.87},
		Resultado: models.HelpOutcome{Tipo: models.TriageAcademic, Mentores: []models.MentorCandidate{}},
	}

	mockBackend.On("RequestHelp", ctx, profile).Return(expected, nil).Once()

	result, err := service.RequestHelp(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

func TestGatewayService_SelectMentor_InvalidIDs(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyMock))

	cases := [][2]string{{"abc", "5"}, {"3", "x"}, {"0", "5"}, {"3", "-1"}, {"", ""}, {"3.5", "5"}}
	for _, c := range cases {
		_, err := service.SelectMentor(context.Background(), c[0], c[1])
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidIdentifier), "ids %v", c)
	}
	mockBackend.AssertNotCalled(t, "SelectMentor", mock.Anything, mock.Anything, mock.Anything)
}

func TestGatewayService_SelectMentor_Forwards(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyMock))
	ctx := context.Background()
	expected := &models.SelectMentorResult{
		Student: models.Party{ID: 3, FullName: "Ana Pérez"},
		Mentor:  models.Party{ID: 5, FullName: "Sofia Rodriguez"},
		Mensaje: "Mentor asignado",
	}

	mockBackend.On("SelectMentor", ctx, 3, 5).Return(expected, nil).Once()

	result, err := service.SelectMentor(ctx, "3", "5")
	require.NoError(t, err)
	assert.Equal(t, expected, result)
	mockBackend.AssertExpectations(t)
}

func TestGatewayService_MatchMentors(t *testing.T) {
	mockBackend := new(MockBackendClient)
	service := services.NewGatewayService(mockBackend, gatewayConfig(config.FailurePolicyMock))
	ctx := context.Background()

	mockBackend.On("MatchMentors", ctx, "ANTONIO_VARAS", "").Return(json.RawMessage(`[]`), nil).Once()
	mockBackend.On("BreakerState").Return("closed").Once()

	raw, err := service.MatchMentors(ctx, models.MatchCriteria{Campus: models.CampusAntonioVaras})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
	assert.Equal(t, config.FailurePolicyMock, service.MatchingPolicy())
	assert.Equal(t, "closed", service.BackendState())
	mockBackend.AssertExpectations(t)
}
