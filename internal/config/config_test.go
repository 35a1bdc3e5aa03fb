package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancer-registry-edits/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	v := viper.New()
	v.AddConfigPath(t.TempDir())
	m, err := NewManagerFrom(v)
	require.NoError(t, err)
	return m
}

func TestManager_Defaults(t *testing.T) {
	m := newTestManager(t)
	cfg := m.GetConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "./data/codes", cfg.Codes.Dir)
	assert.Equal(t, "morphology_codes.json", cfg.Codes.MorphologyFile)
	assert.Equal(t, "description", cfg.Codes.MorphologyKeyedBy)
	assert.Equal(t, 0.7, cfg.Correction.Threshold)
	assert.Equal(t, "validation_", cfg.Progress.ChannelPrefix)
	assert.Equal(t, uint32(3), cfg.Progress.Breaker.MinRequests)
	assert.Equal(t, 0.6, cfg.Progress.Breaker.FailureRatio)
	assert.Equal(t, time.Hour, cfg.Jobs.TTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "registry-edits", cfg.Tracing.ServiceName)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)

	assert.Same(t, &cfg.Server, m.GetServerConfig())
	assert.Same(t, &cfg.Codes, m.GetCodesConfig())
	assert.True(t, m.IsDevelopment())
	assert.False(t, m.IsProduction())
	require.NoError(t, m.Validate())
}

func TestManager_EnvironmentOverrides(t *testing.T) {
	t.Setenv("REGISTRY_EDITS_SERVER_PORT", "9090")
	t.Setenv("REGISTRY_EDITS_PIPELINE_WORKERS", "2")
	t.Setenv("REGISTRY_EDITS_ENVIRONMENT", "production")

	m := newTestManager(t)

	assert.Equal(t, 9090, m.GetServerConfig().Port)
	assert.Equal(t, 2, m.GetConfig().Pipeline.Workers)
	assert.True(t, m.IsProduction())
	assert.False(t, m.IsDevelopment())
}

func TestManager_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("codes:\n  dir: /srv/codes\n  morphology_keyed_by: code\ncorrection:\n  threshold: 0.9\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "config.yaml"))
	m, err := NewManagerFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/codes", m.GetCodesConfig().Dir)
	assert.Equal(t, "code", m.GetCodesConfig().MorphologyKeyedBy)
	assert.Equal(t, 0.9, m.GetConfig().Correction.Threshold)
	// untouched keys keep their defaults
	assert.Equal(t, "topography_codes.json", m.GetCodesConfig().TopographyFile)
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *domain.Config)
		wantErr string
	}{
		{name: "Bad port", mutate: func(cfg *domain.Config) { cfg.Server.Port = 70000 }, wantErr: "invalid server port"},
		{name: "Missing codes dir", mutate: func(cfg *domain.Config) { cfg.Codes.Dir = "" }, wantErr: "codes directory"},
		{name: "Bad orientation", mutate: func(cfg *domain.Config) { cfg.Codes.MorphologyKeyedBy = "filename" }, wantErr: "morphology_keyed_by"},
		{name: "No workers", mutate: func(cfg *domain.Config) { cfg.Pipeline.Workers = 0 }, wantErr: "workers"},
		{name: "Threshold out of range", mutate: func(cfg *domain.Config) { cfg.Correction.Threshold = 1.5 }, wantErr: "threshold"},
		{name: "Bad failure ratio", mutate: func(cfg *domain.Config) { cfg.Progress.Breaker.FailureRatio = 0 }, wantErr: "failure ratio"},
		{name: "Bad sample ratio", mutate: func(cfg *domain.Config) { cfg.Tracing.SampleRatio = 2 }, wantErr: "sample ratio"},
		{name: "Tracing without endpoint", mutate: func(cfg *domain.Config) { cfg.Tracing.Enabled = true; cfg.Tracing.Endpoint = "" }, wantErr: "tracing endpoint"},
		{name: "Bad log level", mutate: func(cfg *domain.Config) { cfg.Logging.Level = "verbose" }, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			tt.mutate(m.GetConfig())

			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(domain.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	logger, err = NewLogger(domain.LoggingConfig{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	path := filepath.Join(t.TempDir(), "edits.log")
	logger, err = NewLogger(domain.LoggingConfig{Level: "info", Output: path})
	require.NoError(t, err)
	logger.Info("hello")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	_, err = NewLogger(domain.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
