package app

import (
	"fmt"

	repository "github.com/allisson/tickets/internal/outbox/repository"
	outboxUsecase "github.com/allisson/tickets/internal/outbox/usecase"
)

// OutboxRepository returns the outbox record repository instance.
func (c *Container) OutboxRepository() (outboxRepository, error) {
	c.outboxRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["outboxRepo"] = fmt.Errorf("failed to get database for outbox repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.outboxRepo = repository.NewMySQLOutboxRepository(db)
		case "postgres":
			c.outboxRepo = repository.NewPostgreSQLOutboxRepository(db)
		default:
			c.initErrors["outboxRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["outboxRepo"]; exists {
		return nil, err
	}
	return c.outboxRepo, nil
}

// OutboxUseCase returns the outbox worker use case instance.
func (c *Container) OutboxUseCase() (*outboxUsecase.OutboxUseCase, error) {
	c.outboxUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["outboxUseCase"] = fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
			return
		}

		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			c.initErrors["outboxUseCase"] = fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["outboxUseCase"] = fmt.Errorf("failed to get business metrics for outbox use case: %w", err)
			return
		}

		c.outboxUseCase = outboxUsecase.NewOutboxUseCase(
			txManager,
			outboxRepo,
			c.NotificationClient(),
			c.config.OutboxPollInterval,
			c.config.OutboxMaxAttempts,
			c.config.OutboxBatchSize,
			businessMetrics,
			c.Logger(),
		)
	})
	if err, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, err
	}
	return c.outboxUseCase, nil
}
