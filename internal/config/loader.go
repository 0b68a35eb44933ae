package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/vanshika2720/cartography-sub000/internal/types"
)

// ConfigLoader handles loading configuration from files.
type ConfigLoader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path. Values not present
// in the file keep their defaults; `${VAR_NAME}` strings are interpolated
// from the environment.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setViperDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			"failed to read config file "+path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED,
			"failed to unmarshal config", err)
	}

	applyInterpolation(&cfg)

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWithDefaults loads configuration from the specified file path. If the
// file doesn't exist, returns the default configuration.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		applyInterpolation(cfg)
		if err := l.validator.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return l.Load(path)
}

func setViperDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("graph.uri", defaults.Graph.URI)
	v.SetDefault("graph.username", defaults.Graph.Username)
	v.SetDefault("graph.max_connection_pool_size", defaults.Graph.MaxConnectionPoolSize)
	v.SetDefault("graph.connection_timeout", defaults.Graph.ConnectionTimeout)
	v.SetDefault("sync.cleanup_batch_size", defaults.Sync.CleanupBatchSize)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
}

// applyInterpolation expands ${VAR_NAME} in every string field that may carry
// environment-sourced values, credentials in particular.
func applyInterpolation(cfg *Config) {
	cfg.Graph.URI = interpolateString(cfg.Graph.URI)
	cfg.Graph.Username = interpolateString(cfg.Graph.Username)
	cfg.Graph.Password = interpolateString(cfg.Graph.Password)
	cfg.Graph.Database = interpolateString(cfg.Graph.Database)
	cfg.Sync.ScopeLabel = interpolateString(cfg.Sync.ScopeLabel)
	cfg.Sync.ScopeID = interpolateString(cfg.Sync.ScopeID)
	cfg.Logging.Level = interpolateString(cfg.Logging.Level)
	cfg.Logging.Format = interpolateString(cfg.Logging.Format)
	cfg.Tracing.Endpoint = interpolateString(cfg.Tracing.Endpoint)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables leave the original text in place.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}
