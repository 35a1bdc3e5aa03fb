package config

import (
	"fmt"
	"strings"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. REGISTRY_EDITS_SERVER_PORT
const EnvPrefix = "REGISTRY_EDITS"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v      *viper.Viper
	config *domain.Config
}

// NewManager creates a new configuration manager backed by the global Viper
// instance, so flags bound through viper.BindPFlag take effect.
func NewManager() (*Manager, error) {
	return NewManagerFrom(viper.GetViper())
}

// NewManagerFrom creates a configuration manager over the given Viper instance
func NewManagerFrom(v *viper.Viper) (*Manager, error) {
	m := &Manager{v: v}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := m.v

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/registry-edits/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.max_body_bytes", 32<<20)
	v.SetDefault("server.shutdown_timeout", "15s")

	// Code dictionaries
	v.SetDefault("codes.dir", "./data/codes")
	v.SetDefault("codes.topography_file", "topography_codes.json")
	v.SetDefault("codes.morphology_file", "morphology_codes.json")
	v.SetDefault("codes.sex_file", "sex.json")
	v.SetDefault("codes.behavior_file", "behavior_codes.json")
	v.SetDefault("codes.grade_file", "grade_codes.json")
	v.SetDefault("codes.morphology_keyed_by", "description")
	v.SetDefault("codes.cache_size", 16)

	v.SetDefault("pipeline.workers", 8)

	v.SetDefault("correction.threshold", 0.7)
	v.SetDefault("correction.memo_size", 4096)

	// Progress fan-out
	v.SetDefault("progress.buffer_size", 256)
	v.SetDefault("progress.redis_url", "")
	v.SetDefault("progress.channel_prefix", "validation_")
	v.SetDefault("progress.publish_timeout", "2s")
	v.SetDefault("progress.breaker.max_requests", 3)
	v.SetDefault("progress.breaker.interval", "60s")
	v.SetDefault("progress.breaker.timeout", "30s")
	v.SetDefault("progress.breaker.min_requests", 3)
	v.SetDefault("progress.breaker.failure_ratio", 0.6)

	v.SetDefault("jobs.max_jobs", 128)
	v.SetDefault("jobs.ttl", "1h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Tracing is off unless an OTLP collector is configured
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.service_name", "registry-edits")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetCodesConfig returns the code dictionary configuration
func (m *Manager) GetCodesConfig() *domain.CodesConfig {
	return &m.config.Codes
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %v", config.Server.RateLimit)
	}

	if config.Codes.Dir == "" {
		return fmt.Errorf("codes directory is required")
	}
	switch strings.ToLower(config.Codes.MorphologyKeyedBy) {
	case "code", "description":
	default:
		return fmt.Errorf("invalid morphology_keyed_by: %q (want code or description)", config.Codes.MorphologyKeyedBy)
	}

	if config.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline workers must be positive, got %d", config.Pipeline.Workers)
	}

	if config.Correction.Threshold < 0 || config.Correction.Threshold > 1 {
		return fmt.Errorf("correction threshold must be within [0,1], got %v", config.Correction.Threshold)
	}

	if config.Progress.BufferSize <= 0 {
		return fmt.Errorf("progress buffer size must be positive, got %d", config.Progress.BufferSize)
	}
	if r := config.Progress.Breaker.FailureRatio; r <= 0 || r > 1 {
		return fmt.Errorf("breaker failure ratio must be within (0,1], got %v", r)
	}

	if config.Jobs.MaxJobs <= 0 {
		return fmt.Errorf("jobs max_jobs must be positive, got %d", config.Jobs.MaxJobs)
	}

	if r := config.Tracing.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("tracing sample ratio must be within [0,1], got %v", r)
	}
	if config.Tracing.Enabled && config.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}
