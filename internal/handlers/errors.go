package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorexpress/mentorexpress-web/internal/backend"
	"github.com/mentorexpress/mentorexpress-web/internal/schema"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// respondFieldErrors sends the flattened validation failure as a 400
func respondFieldErrors(c *gin.Context, fe *schema.FieldErrors) {
	attachError(c, fe)
	c.JSON(http.StatusBadRequest, gin.H{"error": fe})
}

// respondGatewayError maps the gateway error taxonomy onto HTTP. transportMessage
// is the envelope used when the backend could not be reached.
func respondGatewayError(c *gin.Context, err error, transportStatus int, transportMessage string) {
	var fe *schema.FieldErrors
	var backendErr *backend.Error
	switch {
	case apperrors.As(err, &fe):
		respondFieldErrors(c, fe)
	case apperrors.Is(err, apperrors.ErrInvalidIdentifier):
		respondError(c, http.StatusBadRequest, "Invalid student or mentor ID", err)
	case apperrors.As(err, &backendErr):
		respondErrorWithDetails(c, backendErr.Status, "Backend Error", backendErr.Details, err)
	case apperrors.Is(err, apperrors.ErrBackendUnavailable):
		respondErrorWithDetails(c, transportStatus, transportMessage, err.Error(), err)
	default:
		respondError(c, http.StatusInternalServerError, "Internal Server Error", err)
	}
}
