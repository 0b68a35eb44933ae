package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/vanshika2720/cartography-sub000/internal/cleanup"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Graph: GraphConfig{
			URI:                   "bolt://localhost:7687",
			Username:              "neo4j",
			Password:              "",
			Database:              "",
			MaxConnectionPoolSize: 50,
			ConnectionTimeout:     30 * time.Second,
		},
		Sync: SyncConfig{
			CleanupBatchSize: cleanup.DefaultBatchSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Endpoint: "",
		},
	}
}

// DefaultHomeDir returns the default graphsync home directory, ~/.graphsync,
// falling back to the temporary directory if user home cannot be determined.
func DefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".graphsync")
	}
	return filepath.Join(userHome, ".graphsync")
}

// DefaultConfigPath returns the default config file path for a given home
// directory.
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}
