package config

import (
	"github.com/Ultronjnr/oversightglobal-sub000/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Lark: container.LarkConfig{
			Enabled:   c.Lark.Enabled,
			AppID:     c.Lark.AppID,
			AppSecret: c.Lark.AppSecret,
			ChatID:    c.Lark.ChatID,
		},
		Storage: container.StorageConfig{
			Driver:         c.Storage.Driver,
			LocalDir:       c.Storage.LocalDir,
			BaseURL:        c.Storage.BaseURL,
			MinIOEndpoint:  c.Storage.MinIO.Endpoint,
			MinIOAccessKey: c.Storage.MinIO.AccessKey,
			MinIOSecretKey: c.Storage.MinIO.SecretKey,
			MinIOBucket:    c.Storage.MinIO.Bucket,
			MinIOUseSSL:    c.Storage.MinIO.UseSSL,
			MinIOPublicURL: c.Storage.MinIO.PublicURL,
		},
		Workflow: container.WorkflowConfig{
			AutoRejectSiblingQuotes: c.Workflow.AutoRejectSiblingQuotes,
			MaxPageSize:             c.Workflow.MaxPageSize,
		},
	}
}
