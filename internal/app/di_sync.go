package app

import (
	"fmt"

	repository "github.com/allisson/tickets/internal/event/repository"
	syncUsecase "github.com/allisson/tickets/internal/sync/usecase"
)

// SyncRepository returns the sync metadata repository instance.
func (c *Container) SyncRepository() (syncUsecase.SyncRepository, error) {
	c.syncRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["syncRepo"] = fmt.Errorf("failed to get database for sync repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.syncRepo = repository.NewMySQLSyncRepository(db)
		case "postgres":
			c.syncRepo = repository.NewPostgreSQLSyncRepository(db)
		default:
			c.initErrors["syncRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["syncRepo"]; exists {
		return nil, err
	}
	return c.syncRepo, nil
}

// SyncUseCase returns the catalog sync use case instance.
func (c *Container) SyncUseCase() (syncUsecase.UseCase, error) {
	c.syncUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["syncUseCase"] = fmt.Errorf("failed to get tx manager for sync use case: %w", err)
			return
		}

		eventRepo, err := c.EventRepository()
		if err != nil {
			c.initErrors["syncUseCase"] = fmt.Errorf("failed to get event repository for sync use case: %w", err)
			return
		}

		syncRepo, err := c.SyncRepository()
		if err != nil {
			c.initErrors["syncUseCase"] = fmt.Errorf("failed to get sync repository for sync use case: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["syncUseCase"] = fmt.Errorf("failed to get business metrics for sync use case: %w", err)
			return
		}

		c.syncUseCase = syncUsecase.NewSyncUseCase(
			txManager,
			eventRepo,
			syncRepo,
			c.ProviderClient(),
			c.config.SyncInterval,
			businessMetrics,
			c.Logger(),
		)
	})
	if err, exists := c.initErrors["syncUseCase"]; exists {
		return nil, err
	}
	return c.syncUseCase, nil
}
