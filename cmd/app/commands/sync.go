package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/tickets/internal/app"
	"github.com/allisson/tickets/internal/config"
)

// RunSync performs one catalog synchronization run and exits. changedAt
// (YYYY-MM-DD) overrides the stored watermark when non-empty, forcing a pull
// of everything changed since that date.
func RunSync(ctx context.Context, changedAt string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	syncUseCase, err := container.SyncUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize sync use case: %w", err)
	}

	logger.Info("starting catalog sync", slog.String("changed_at", changedAt))

	return syncUseCase.Sync(ctx, changedAt)
}
