package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Codes       CodesConfig      `mapstructure:"codes"`
	Pipeline    PipelineConfig   `mapstructure:"pipeline"`
	Correction  CorrectionConfig `mapstructure:"correction"`
	Progress    ProgressConfig   `mapstructure:"progress"`
	Jobs        JobsConfig       `mapstructure:"jobs"`
	Logging     LoggingConfig    `mapstructure:"logging"`
	Metrics     MetricsConfig    `mapstructure:"metrics"`
	Tracing     TracingConfig    `mapstructure:"tracing"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RateLimit       float64       `mapstructure:"rate_limit"` // requests per second
	RateBurst       int           `mapstructure:"rate_burst"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CodesConfig locates the code dictionary files
type CodesConfig struct {
	Dir            string `mapstructure:"dir"`
	TopographyFile string `mapstructure:"topography_file"`
	MorphologyFile string `mapstructure:"morphology_file"`
	SexFile        string `mapstructure:"sex_file"`
	BehaviorFile   string `mapstructure:"behavior_file"`
	GradeFile      string `mapstructure:"grade_file"`
	// MorphologyKeyedBy is "description" when the morphology file maps descriptions to codes
	MorphologyKeyedBy string `mapstructure:"morphology_keyed_by"`
	CacheSize         int    `mapstructure:"cache_size"`
}

// PipelineConfig controls per-stage parallelism
type PipelineConfig struct {
	Workers int `mapstructure:"workers"`
}

// CorrectionConfig controls the auto-corrector
type CorrectionConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	MemoSize  int     `mapstructure:"memo_size"`
}

// ProgressConfig controls progress event fan-out
type ProgressConfig struct {
	BufferSize     int           `mapstructure:"buffer_size"`
	RedisURL       string        `mapstructure:"redis_url"` // empty disables Redis publishing
	ChannelPrefix  string        `mapstructure:"channel_prefix"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
	Breaker        BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig represents circuit breaker configuration for remote notifiers
type BreakerConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// JobsConfig bounds the in-memory job result store
type JobsConfig struct {
	MaxJobs int           `mapstructure:"max_jobs"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TracingConfig controls span export over OTLP/HTTP
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"` // host:port of the collector
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}
