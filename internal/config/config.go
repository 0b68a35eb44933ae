// Package config loads and validates the tool's YAML configuration.
package config

import (
	"time"

	"github.com/vanshika2720/cartography-sub000/internal/graph"
)

// Config is the root configuration for graphsync.
type Config struct {
	Graph   GraphConfig   `mapstructure:"graph" yaml:"graph" validate:"required"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// GraphConfig contains the Neo4j connection settings. Password typically
// comes from the environment via ${NEO4J_PASSWORD} interpolation rather than
// being written into the file.
type GraphConfig struct {
	URI                   string        `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username              string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password              string        `mapstructure:"password" yaml:"password,omitempty"`
	Database              string        `mapstructure:"database" yaml:"database,omitempty"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size" yaml:"max_connection_pool_size" validate:"min=1,max=1000"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout" validate:"min=1s"`
}

// ClientConfig converts the connection settings into a graph client Config.
func (c GraphConfig) ClientConfig() graph.Config {
	cfg := graph.DefaultConfig()
	cfg.URI = c.URI
	cfg.Username = c.Username
	cfg.Password = c.Password
	cfg.Database = c.Database
	cfg.MaxConnectionPoolSize = c.MaxConnectionPoolSize
	cfg.ConnectionTimeout = c.ConnectionTimeout
	return cfg
}

// SyncConfig contains sync run settings.
type SyncConfig struct {
	// CleanupBatchSize bounds how many entities one delete statement removes
	// per execution.
	CleanupBatchSize int `mapstructure:"cleanup_batch_size" yaml:"cleanup_batch_size" validate:"min=1,max=100000"`

	// ScopeLabel and ScopeID select the sub-resource tenant a scoped run
	// operates on. Both empty means an unscoped run.
	ScopeLabel string `mapstructure:"scope_label" yaml:"scope_label,omitempty"`
	ScopeID    string `mapstructure:"scope_id" yaml:"scope_id,omitempty"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
}
