package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bookey/internal/caldav"
	"bookey/internal/calendar"
	"bookey/internal/config"
	"bookey/internal/google"
)

// newBackend builds the calendar backend selected by the configuration.
func newBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, loc *time.Location) (calendar.Backend, error) {
	switch cfg.Backend {
	case config.BackendGoogle:
		client, err := google.NewClient(ctx, logger, cfg.Google, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to create google client: %w", err)
		}
		return client, nil
	case config.BackendCalDAV:
		client, err := caldav.NewClient(ctx, logger, cfg.CalDAV, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to create caldav client: %w", err)
		}
		return client, nil
	case config.BackendMemory:
		logger.Warn("Using the in-memory backend; nothing is saved")
		return calendar.NewMemory(logger, loc), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
