package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/pkg/circuitbreaker"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
	"github.com/mentorexpress/mentorexpress-web/pkg/httpclient"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"github.com/mentorexpress/mentorexpress-web/pkg/metrics"
	"github.com/mentorexpress/mentorexpress-web/pkg/retry"
	"github.com/mentorexpress/mentorexpress-web/pkg/tracing"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	OpCreateStudent = "createStudent"
	OpCreateMentor  = "createMentor"
	OpRequestHelp   = "requestHelp"
	OpSelectMentor  = "selectMentor"
	OpMatchMentors  = "matchMentors"

	// maxResponseBytes bounds how much of a backend body is read
	maxResponseBytes = 1 << 20
)

// Error is a non-2xx answer from the external backend.
// Details holds the raw response body so it can be relayed verbatim.
type Error struct {
	Operation string
	Status    int
	Details   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: backend responded %d", e.Operation, e.Status)
}

func (e *Error) Unwrap() error {
	return apperrors.ErrBackendRejected
}

// Client talks to the external matching/triage backend
type Client struct {
	baseURL        string
	httpClient     httpclient.Client
	circuitBreaker *gobreaker.CircuitBreaker
}

// NewClient creates a backend client with circuit breaker protection
func NewClient(baseURL string, httpClient httpclient.Client) *Client {
	cbConfig := circuitbreaker.DefaultConfig("backend")
	// Client errors are the backend working as intended
	cbConfig.IsSuccessful = func(err error) bool {
		var backendErr *Error
		if errors.As(err, &backendErr) {
			return backendErr.Status < http.StatusInternalServerError
		}
		return err == nil || errors.Is(err, context.Canceled)
	}

	logger.Info("Backend client initialized", zap.String("base_url", baseURL))

	return &Client{
		baseURL:        baseURL,
		httpClient:     httpClient,
		circuitBreaker: circuitbreaker.NewCircuitBreaker(cbConfig),
	}
}

// BreakerState reports the circuit breaker state for health checks
func (c *Client) BreakerState() string {
	return circuitbreaker.GetState(c.circuitBreaker)
}

// CreateStudent forwards a validated student profile to POST /students
func (c *Client) CreateStudent(ctx context.Context, profile *models.StudentProfile) (json.RawMessage, error) {
	body, err := c.exchange(ctx, OpCreateStudent, http.MethodPost, "/students", profile)
	if err != nil {
		return nil, err
	}
	return rawJSON(OpCreateStudent, body)
}

// CreateMentor forwards a validated mentor profile to POST /mentors
func (c *Client) CreateMentor(ctx context.Context, profile *models.MentorProfile) (json.RawMessage, error) {
	body, err := c.exchange(ctx, OpCreateMentor, http.MethodPost, "/mentors", profile)
	if err != nil {
		return nil, err
	}
	return rawJSON(OpCreateMentor, body)
}

// RequestHelp submits a student request for triage and matching
func (c *Client) RequestHelp(ctx context.Context, profile *models.StudentProfile) (*models.HelpRequestResult, error) {
	body, err := c.exchange(ctx, OpRequestHelp, http.MethodPost, "/students/request-help", profile)
	if err != nil {
		return nil, err
	}

	var result models.HelpRequestResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.BackendUnavailableError(OpRequestHelp, fmt.Errorf("malformed response: %w", err))
	}
	if err := result.Normalize(); err != nil {
		return nil, apperrors.BackendUnavailableError(OpRequestHelp, err)
	}
	return &result, nil
}

// SelectMentor confirms the mentor choice of a student
func (c *Client) SelectMentor(ctx context.Context, studentID, mentorID int) (*models.SelectMentorResult, error) {
	path := "/students/" + strconv.Itoa(studentID) + "/select-mentor/" + strconv.Itoa(mentorID)
	body, err := c.exchange(ctx, OpSelectMentor, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}

	var result models.SelectMentorResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.BackendUnavailableError(OpSelectMentor, fmt.Errorf("malformed response: %w", err))
	}
	return &result, nil
}

// MatchMentors queries GET /mentors/match with optional filters.
// The call is idempotent, so transport failures are retried.
func (c *Client) MatchMentors(ctx context.Context, campus, subject string) (json.RawMessage, error) {
	query := url.Values{}
	if campus != "" {
		query.Set("campus", campus)
	}
	if subject != "" {
		query.Set("subject", subject)
	}
	path := "/mentors/match"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	body, err := retry.DoWithResult(ctx, retry.BackendReadConfig(), OpMatchMentors, func() ([]byte, error) {
		return c.exchange(ctx, OpMatchMentors, http.MethodGet, path, nil)
	})
	if err != nil {
		return nil, err
	}
	return rawJSON(OpMatchMentors, body)
}

// exchange performs one request through the circuit breaker and returns the 2xx body
func (c *Client) exchange(ctx context.Context, operation, method, path string, payload any) ([]byte, error) {
	start := time.Now()
	target := c.baseURL + path

	ctx, span := tracing.StartSpan(ctx, "backend."+operation,
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)
	defer span.End()

	status := 0
	body, err := circuitbreaker.Execute(c.circuitBreaker, func() ([]byte, error) {
		req, err := httpclient.NewJSONRequest(ctx, method, target, payload)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, apperrors.BackendUnavailableError(operation, err)
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, apperrors.BackendUnavailableError(operation, fmt.Errorf("failed to read response: %w", err))
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &Error{Operation: operation, Status: resp.StatusCode, Details: string(data)}
		}
		return data, nil
	})

	if circuitbreaker.IsBreakerError(err) {
		err = apperrors.BackendUnavailableError(operation, circuitbreaker.FormatError("backend", err))
	}

	duration := metrics.MeasureDuration(start)
	statusLabel := metrics.StatusLabel(err)
	metrics.BackendRequestDuration.WithLabelValues(operation, statusLabel).Observe(duration)
	metrics.BackendRequestTotal.WithLabelValues(operation, statusLabel).Inc()

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	logger.LogAPICall("backend", operation, statusLabel, duration,
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("http_status", status),
		zap.Error(err),
	)

	return body, err
}

func rawJSON(operation string, body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, apperrors.BackendUnavailableError(operation, errors.New("malformed response: not JSON"))
	}
	return json.RawMessage(body), nil
}
