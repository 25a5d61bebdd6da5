package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRejected = errors.New("rejected")

func TestExecute_ReturnsTypedResult(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig("test-typed"))

	got, err := Execute(cb, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, "closed", GetState(cb))
}

func TestExecute_OpensAfterFailures(t *testing.T) {
	cfg := DefaultConfig("test-open")
	cfg.Timeout = time.Minute
	cb := NewCircuitBreaker(cfg)

	for i := 0; i < 3; i++ {
		_, err := Execute(cb, func() (string, error) { return "", errors.New("dial tcp: refused") })
		require.Error(t, err)
	}

	assert.True(t, IsCircuitOpen(cb))

	_, err := Execute(cb, func() (string, error) { return "never", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.True(t, IsBreakerError(err))
	assert.Contains(t, FormatError("test-open", err).Error(), "circuit breaker 'test-open' is open")
}

func TestExecute_IsSuccessfulKeepsBreakerClosed(t *testing.T) {
	cfg := DefaultConfig("test-successful")
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, errRejected) }
	cb := NewCircuitBreaker(cfg)

	for i := 0; i < 5; i++ {
		_, err := Execute(cb, func() (int, error) { return 0, errRejected })
		assert.ErrorIs(t, err, errRejected)
	}

	assert.False(t, IsCircuitOpen(cb))
}

func TestFormatError_PassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, errRejected, FormatError("x", errRejected))
	assert.False(t, IsBreakerError(errRejected))
}
