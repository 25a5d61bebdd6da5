package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorexpress/mentorexpress-web/internal/backend"
	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/internal/schema"
	"github.com/mentorexpress/mentorexpress-web/internal/services"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
)

// GatewayHandler exposes the backend gateway as JSON endpoints
type GatewayHandler struct {
	service services.GatewayServiceInterface
}

// NewGatewayHandler creates a new gateway handler
func NewGatewayHandler(service services.GatewayServiceInterface) *GatewayHandler {
	return &GatewayHandler{service: service}
}

// CreateStudent handles POST /api/students
func (h *GatewayHandler) CreateStudent(c *gin.Context) {
	profile, ok := decodeBody[models.StudentProfile](c)
	if !ok {
		return
	}

	record, err := h.service.CreateStudent(c.Request.Context(), profile)
	if err != nil {
		respondGatewayError(c, err, http.StatusBadGateway, "Backend Unavailable")
		return
	}

	c.Data(http.StatusCreated, "application/json; charset=utf-8", record)
}

// CreateMentor handles POST /api/mentors
func (h *GatewayHandler) CreateMentor(c *gin.Context) {
	profile, ok := decodeBody[models.MentorProfile](c)
	if !ok {
		return
	}

	record, err := h.service.CreateMentor(c.Request.Context(), profile)
	if err != nil {
		respondGatewayError(c, err, http.StatusBadGateway, "Backend Unavailable")
		return
	}

	c.Data(http.StatusCreated, "application/json; charset=utf-8", record)
}

// RequestHelp handles POST /api/students/request-help
func (h *GatewayHandler) RequestHelp(c *gin.Context) {
	profile, ok := decodeBody[models.StudentProfile](c)
	if !ok {
		return
	}

	result, err := h.service.RequestHelp(c.Request.Context(), profile)
	if err != nil {
		respondGatewayError(c, err, http.StatusInternalServerError, "Failed to process help request")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// SelectMentor handles POST /api/students/:studentId/select-mentor/:mentorId
func (h *GatewayHandler) SelectMentor(c *gin.Context) {
	result, err := h.service.SelectMentor(c.Request.Context(), c.Param("studentId"), c.Param("mentorId"))
	if err != nil {
		respondGatewayError(c, err, http.StatusInternalServerError, "Failed to select mentor")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Matching handles POST /api/matching. The backend mentor array is relayed as is.
func (h *GatewayHandler) Matching(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}

	criteria := &models.MatchCriteria{}
	if len(body) > 0 {
		var fe *schema.FieldErrors
		criteria, fe = schema.Unmarshal[models.MatchCriteria](body)
		if fe != nil {
			respondError(c, http.StatusInternalServerError, "Internal Server Error", fe)
			return
		}
	}

	mentors, err := h.service.MatchMentors(c.Request.Context(), *criteria)
	if err != nil {
		var backendErr *backend.Error
		if apperrors.As(err, &backendErr) {
			respondError(c, backendErr.Status, "Backend error", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", mentors)
}

// decodeBody reads and decodes a JSON request body, answering 400 on failure.
// Field constraints are checked by the gateway service.
func decodeBody[T any](c *gin.Context) (*T, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusRequestEntityTooLarge, "Request body too large", err)
		return nil, false
	}

	out, fe := schema.Unmarshal[T](body)
	if fe != nil {
		respondFieldErrors(c, fe)
		return nil, false
	}
	return out, true
}
