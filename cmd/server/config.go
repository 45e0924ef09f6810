package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/redact"
)

// loadAppConfig loads the application configuration from environment variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)
	slog.Debug("Database configuration",
		"url", redact.DatabaseURL(cfg.Database.URL),
		"auto_migrate", cfg.Database.AutoMigrate)

	return cfg, nil
}
