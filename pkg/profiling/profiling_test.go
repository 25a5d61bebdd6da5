package profiling

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/mentorexpress/mentorexpress-web/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSampleTypes_Default(t *testing.T) {
	got, err := parseSampleTypes("  ")
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileGoroutines,
	}, got)
}

func TestParseSampleTypes_CustomDeduplicates(t *testing.T) {
	got, err := parseSampleTypes("cpu, mutex,CPU,,mutex")
	require.NoError(t, err)

	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, got)
}

func TestParseSampleTypes_OnlySeparatorsFallsBack(t *testing.T) {
	got, err := parseSampleTypes(",,")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestParseSampleTypes_Invalid(t *testing.T) {
	_, err := parseSampleTypes("cpu,heap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"heap"`)
}

func TestProfileTags_DropsEmpty(t *testing.T) {
	got := profileTags(config.ObservabilityConfig{
		ServiceName:      "mentorexpress-web",
		ServiceNamespace: "mentorexpress",
		ServiceVersion:   "1.0.0",
	}, "production")

	assert.Equal(t, map[string]string{
		"service_name":    "mentorexpress-web",
		"namespace":       "mentorexpress",
		"environment":     "production",
		"service_version": "1.0.0",
	}, got)
}

func TestInitProfiler_Disabled(t *testing.T) {
	stop, err := InitProfiler(config.ProfilingConfig{Enabled: false}, config.ObservabilityConfig{}, "test")
	require.NoError(t, err)
	require.NotNil(t, stop)
	stop()
}

func TestInitProfiler_RequiresEndpoint(t *testing.T) {
	_, err := InitProfiler(config.ProfilingConfig{Enabled: true, Endpoint: "  "}, config.ObservabilityConfig{}, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profiling endpoint is required")
}
