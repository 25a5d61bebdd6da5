package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackendUnavailableError_WrapsBoth(t *testing.T) {
	cause := errors.New("connection refused")
	err := BackendUnavailableError("create_student", cause)

	assert.True(t, Is(err, ErrBackendUnavailable))
	assert.True(t, Is(err, cause))
	assert.Contains(t, err.Error(), "create_student")
}

func TestInvalidIdentifierError(t *testing.T) {
	err := InvalidIdentifierError("studentId", "abc")

	assert.True(t, Is(err, ErrInvalidIdentifier))
	assert.Equal(t, `studentId="abc": invalid identifier`, err.Error())
}

func TestStaleNavigationError(t *testing.T) {
	err := StaleNavigationError("schedulingData")

	assert.True(t, Is(err, ErrStaleNavigation))
	assert.False(t, Is(err, ErrNotFound))
}
