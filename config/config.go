package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Failure policies applied when the external backend cannot be reached
const (
	FailurePolicyMock = "mock"
	FailurePolicyFail = "fail"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

const defaultBackendURL = "http://localhost:3000"

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Backend       BackendConfig
	Fallback      FallbackConfig
	Scheduling    SchedulingConfig
	Session       SessionConfig
	Redis         RedisConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

type BackendConfig struct {
	URL            string
	TimeoutSeconds int
	// URLFromDefault is true when no backend URL variable was set
	URLFromDefault bool
}

// FallbackConfig names the failure policy of every gateway endpoint
type FallbackConfig struct {
	Students          string
	Mentors           string
	Matching          string
	RequestHelp       string
	SelectMentor      string
	MatchingDelayMsec int
}

type SchedulingConfig struct {
	Enabled         bool
	CalendlyURL     string
	WidgetScriptURL string
}

type SessionConfig struct {
	Secret          string
	Store           string
	TTLMinutes      int
	ProfileTTLHours int
	CookieDomain    string
	CookieSecure    bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BACKEND_TIMEOUT_SECONDS", 30)
	v.SetDefault("NEXT_PUBLIC_CALENDLY_URL", "https://calendly.com/jaimeshalom12/sesion-de-mentoria-mentorexpress")
	v.SetDefault("CALENDLY_WIDGET_SCRIPT_URL", "https://assets.calendly.com/assets/external/widget.js")
	v.SetDefault("SCHEDULING_ENABLED", true)
	v.SetDefault("STUDENTS_ON_BACKEND_FAILURE", FailurePolicyMock)
	v.SetDefault("MENTORS_ON_BACKEND_FAILURE", FailurePolicyMock)
	v.SetDefault("MATCHING_ON_BACKEND_FAILURE", FailurePolicyMock)
	v.SetDefault("REQUEST_HELP_ON_BACKEND_FAILURE", FailurePolicyFail)
	v.SetDefault("SELECT_MENTOR_ON_BACKEND_FAILURE", FailurePolicyFail)
	v.SetDefault("MATCHING_FALLBACK_DELAY_MS", 1500)
	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TTL_MINUTES", 120)
	v.SetDefault("PROFILE_TTL_HOURS", 720)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_SERVICE_NAME", "mentorexpress-web")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "mentorexpress")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "mentorexpress-web")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	backendURL, fromDefault := resolveBackendURL(v.GetString("NEXT_PUBLIC_BACKEND_URL"), v.GetString("BACKEND_URL"))

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Backend: BackendConfig{
			URL:            backendURL,
			TimeoutSeconds: v.GetInt("BACKEND_TIMEOUT_SECONDS"),
			URLFromDefault: fromDefault,
		},
		Fallback: FallbackConfig{
			Students:          strings.ToLower(v.GetString("STUDENTS_ON_BACKEND_FAILURE")),
			Mentors:           strings.ToLower(v.GetString("MENTORS_ON_BACKEND_FAILURE")),
			Matching:          strings.ToLower(v.GetString("MATCHING_ON_BACKEND_FAILURE")),
			RequestHelp:       strings.ToLower(v.GetString("REQUEST_HELP_ON_BACKEND_FAILURE")),
			SelectMentor:      strings.ToLower(v.GetString("SELECT_MENTOR_ON_BACKEND_FAILURE")),
			MatchingDelayMsec: v.GetInt("MATCHING_FALLBACK_DELAY_MS"),
		},
		Scheduling: SchedulingConfig{
			Enabled:         v.GetBool("SCHEDULING_ENABLED"),
			CalendlyURL:     v.GetString("NEXT_PUBLIC_CALENDLY_URL"),
			WidgetScriptURL: v.GetString("CALENDLY_WIDGET_SCRIPT_URL"),
		},
		Session: SessionConfig{
			Secret:          v.GetString("SESSION_SECRET"),
			Store:           strings.ToLower(v.GetString("SESSION_STORE")),
			TTLMinutes:      v.GetInt("SESSION_TTL_MINUTES"),
			ProfileTTLHours: v.GetInt("PROFILE_TTL_HOURS"),
			CookieDomain:    v.GetString("COOKIE_DOMAIN"),
			CookieSecure:    v.GetBool("COOKIE_SECURE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveBackendURL picks the first non-empty candidate, falling back to the local default
func resolveBackendURL(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return strings.TrimRight(c, "/"), false
		}
	}
	return defaultBackendURL, true
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if err := validateBackendURL(c.Backend.URL); err != nil {
		return err
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT_SECONDS must be positive")
	}

	policies := map[string]string{
		"STUDENTS_ON_BACKEND_FAILURE": c.Fallback.Students,
		"MENTORS_ON_BACKEND_FAILURE":  c.Fallback.Mentors,
		"MATCHING_ON_BACKEND_FAILURE": c.Fallback.Matching,
	}
	for key, policy := range policies {
		if policy != FailurePolicyMock && policy != FailurePolicyFail {
			return fmt.Errorf("%s must be %q or %q, got %q", key, FailurePolicyMock, FailurePolicyFail, policy)
		}
	}

	// Triage and selection have no mock data to fall back on
	if c.Fallback.RequestHelp != FailurePolicyFail {
		return fmt.Errorf("REQUEST_HELP_ON_BACKEND_FAILURE only supports %q", FailurePolicyFail)
	}
	if c.Fallback.SelectMentor != FailurePolicyFail {
		return fmt.Errorf("SELECT_MENTOR_ON_BACKEND_FAILURE only supports %q", FailurePolicyFail)
	}
	if c.Fallback.MatchingDelayMsec < 0 {
		return fmt.Errorf("MATCHING_FALLBACK_DELAY_MS must not be negative")
	}

	if c.Scheduling.Enabled && c.Scheduling.CalendlyURL == "" {
		return fmt.Errorf("NEXT_PUBLIC_CALENDLY_URL is required when scheduling is enabled")
	}

	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.Session.Store)
	}
	if c.IsProduction() && c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required in production")
	}
	if c.Session.TTLMinutes <= 0 || c.Session.ProfileTTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES and PROFILE_TTL_HOURS must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

func validateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid BACKEND_URL: %q. Must be a valid URL (e.g., %s)", raw, defaultBackendURL)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// BackendTimeout returns the transport timeout for backend calls
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// SessionTTL returns the lifetime of session-scoped records
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// ProfileTTL returns the lifetime of visitor-scoped records
func (c *Config) ProfileTTL() time.Duration {
	return time.Duration(c.Session.ProfileTTLHours) * time.Hour
}

// MatchingFallbackDelay returns the delay before built-in mentors are served
func (c *Config) MatchingFallbackDelay() time.Duration {
	return time.Duration(c.Fallback.MatchingDelayMsec) * time.Millisecond
}
