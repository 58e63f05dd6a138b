package config

import (
	"context"
	"time"

	"github.com/compozy/flowdoc/pkg/flowdoc"
)

// Config represents the complete configuration of the flowdoc command line.
// It provides type-safe access to all configuration values with validation.
type Config struct {
	Editor EditorConfig `koanf:"editor" validate:"required"`
	Log    LogConfig    `koanf:"log"`
}

// EditorConfig controls how documents are located and edited.
type EditorConfig struct {
	// ContainerField names the field holding child tasks.
	ContainerField string `koanf:"container_field" validate:"required,container_field" env:"FLOWDOC_CONTAINER_FIELD"`
	// Write replaces the input file with the edited document instead of printing it.
	Write bool `koanf:"write" env:"FLOWDOC_WRITE"`
	// Backup keeps a copy of the original file, with this suffix, before writing.
	Backup string `koanf:"backup" validate:"omitempty,excludesall=/\\" env:"FLOWDOC_BACKUP"`
}

// LogConfig configures diagnostics written to stderr.
type LogConfig struct {
	Level  string `koanf:"level"  validate:"oneof=debug info warn error disabled" env:"FLOWDOC_LOG_LEVEL"`
	JSON   bool   `koanf:"json"                                                   env:"FLOWDOC_LOG_JSON"`
	Source bool   `koanf:"source"                                                 env:"FLOWDOC_LOG_SOURCE"`
}

// Service defines the configuration loading service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type for a specific configuration key.
	// This tracks which source (env, CLI, YAML, default) provided each value,
	// enabling debugging and precedence verification.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Load loads configuration using the default service.
// This is a convenience function for simple configuration loading.
func Load(ctx context.Context) (*Config, error) {
	return NewService().Load(ctx)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			ContainerField: flowdoc.DefaultContainerField,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
