package domain

import (
	"context"
)

// StageValidator evaluates one validation stage over a whole batch.
// The returned slice may be shorter than the input when the stage narrows the batch.
type StageValidator interface {
	Name() string
	Validate(ctx context.Context, records []*Record) ([]*Record, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetCodesConfig() *CodesConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
