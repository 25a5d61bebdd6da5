// Package profiling starts pyroscope continuous profiling when enabled.
package profiling

import (
	"fmt"
	"strings"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/mentorexpress/mentorexpress-web/config"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultAppName        = "mentorexpress-web"
	defaultUploadInterval = 15 * time.Second
)

// sampleTypes maps O11Y_PROFILING_SAMPLE_TYPES names to pyroscope profiles
var sampleTypes = map[string][]pyroscope.ProfileType{
	"cpu":           {pyroscope.ProfileCPU},
	"alloc_space":   {pyroscope.ProfileAllocSpace},
	"alloc_objects": {pyroscope.ProfileAllocObjects},
	"goroutines":    {pyroscope.ProfileGoroutines},
	"mutex":         {pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration},
	"block":         {pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration},
}

// defaultSamples is used when no sample types are configured
var defaultSamples = []string{"cpu", "alloc_space", "goroutines"}

// InitProfiler starts the profiler and returns its stop function. A disabled
// profiler returns a no-op stop.
func InitProfiler(cfg config.ProfilingConfig, o11y config.ObservabilityConfig, environment string) (func(), error) {
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return func() {}, nil
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	profiles, err := parseSampleTypes(cfg.SampleTypes)
	if err != nil {
		return nil, err
	}

	uploadRate := time.Duration(cfg.UploadIntervalSeconds) * time.Second
	if uploadRate <= 0 {
		uploadRate = defaultUploadInterval
	}

	appName := strings.TrimSpace(cfg.AppName)
	if appName == "" {
		appName = defaultAppName
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   endpoint,
		UploadRate:      uploadRate,
		ProfileTypes:    profiles,
		Tags:            profileTags(o11y, environment),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	logger.Info("Continuous profiling initialized",
		zap.String("application_name", appName),
		zap.String("endpoint", endpoint),
		zap.Int("profile_types", len(profiles)),
		zap.Duration("upload_rate", uploadRate),
	)

	return func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("Failed to stop profiler", zap.Error(stopErr))
		}
	}, nil
}

// parseSampleTypes resolves a comma separated list, keeping first-seen order
// and dropping duplicates.
func parseSampleTypes(value string) ([]pyroscope.ProfileType, error) {
	names := defaultSamples
	if v := strings.TrimSpace(value); v != "" {
		names = strings.Split(v, ",")
	}

	var out []pyroscope.ProfileType
	seen := make(map[pyroscope.ProfileType]bool)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		mapped, ok := sampleTypes[name]
		if !ok {
			return nil, fmt.Errorf("unsupported O11Y_PROFILING_SAMPLE_TYPES value: %q", name)
		}
		for _, t := range mapped {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}

	if len(out) == 0 {
		return parseSampleTypes("")
	}
	return out, nil
}

// profileTags labels every profile with the tracing resource attributes.
// Empty attributes are left out.
func profileTags(o11y config.ObservabilityConfig, environment string) map[string]string {
	tags := map[string]string{
		"service_name":    o11y.ServiceName,
		"namespace":       o11y.ServiceNamespace,
		"environment":     environment,
		"service_version": o11y.ServiceVersion,
		"instance":        o11y.ServiceInstanceID,
	}
	for k, v := range tags {
		if v == "" {
			delete(tags, k)
		}
	}
	return tags
}
