// Package container provides dependency injection and lifecycle management
// for the requisition workflow service.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Lark notification configuration
	Lark LarkConfig

	// Document storage configuration
	Storage StorageConfig

	// Workflow tuning
	Workflow WorkflowConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// LarkConfig holds Lark API settings.
type LarkConfig struct {
	// Enabled turns workflow notifications on
	Enabled bool

	// AppID is the Lark application ID
	AppID string

	// AppSecret is the Lark application secret
	AppSecret string

	// ChatID is the group chat that receives notifications
	ChatID string
}

// StorageConfig holds document storage settings.
type StorageConfig struct {
	// Driver is "local" or "minio"
	Driver string

	// LocalDir is the base directory for the local driver
	LocalDir string

	// BaseURL prefixes local document URLs when set
	BaseURL string

	// MinIO settings for the minio driver
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOPublicURL string
}

// WorkflowConfig holds approval engine settings.
type WorkflowConfig struct {
	// AutoRejectSiblingQuotes rejects other submitted quotes when one is accepted
	AutoRejectSiblingQuotes bool

	// MaxPageSize caps list page sizes
	MaxPageSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/requisitions.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Storage: StorageConfig{
			Driver:      "local",
			LocalDir:    "data/documents",
			MinIOBucket: "requisition-documents",
			MinIOUseSSL: true,
		},
		Workflow: WorkflowConfig{
			MaxPageSize: 100,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// Validate Lark configuration only when notifications are on
	if c.Lark.Enabled {
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required")
		}
	}

	// Validate storage configuration
	switch c.Storage.Driver {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir is required")
		}
	case "minio":
		if c.Storage.MinIOEndpoint == "" {
			return fmt.Errorf("storage.minio.endpoint is required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	return nil
}
