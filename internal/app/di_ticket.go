package app

import (
	"fmt"

	ticketRepository "github.com/allisson/tickets/internal/ticket/repository"
	ticketUsecase "github.com/allisson/tickets/internal/ticket/usecase"
)

// TicketRepository returns the ticket repository instance.
func (c *Container) TicketRepository() (ticketUsecase.TicketRepository, error) {
	c.ticketRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["ticketRepo"] = fmt.Errorf("failed to get database for ticket repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.ticketRepo = ticketRepository.NewMySQLTicketRepository(db)
		case "postgres":
			c.ticketRepo = ticketRepository.NewPostgreSQLTicketRepository(db)
		default:
			c.initErrors["ticketRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["ticketRepo"]; exists {
		return nil, err
	}
	return c.ticketRepo, nil
}

// IdempotencyRepository returns the idempotency record repository instance.
func (c *Container) IdempotencyRepository() (ticketUsecase.IdempotencyRepository, error) {
	c.idempotencyRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["idempotencyRepo"] = fmt.Errorf("failed to get database for idempotency repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.idempotencyRepo = ticketRepository.NewMySQLIdempotencyRepository(db)
		case "postgres":
			c.idempotencyRepo = ticketRepository.NewPostgreSQLIdempotencyRepository(db)
		default:
			c.initErrors["idempotencyRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["idempotencyRepo"]; exists {
		return nil, err
	}
	return c.idempotencyRepo, nil
}

// TicketUseCase returns the ticket use case instance.
func (c *Container) TicketUseCase() (ticketUsecase.UseCase, error) {
	c.ticketUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["ticketUseCase"] = fmt.Errorf("failed to get tx manager for ticket use case: %w", err)
			return
		}

		ticketRepo, err := c.TicketRepository()
		if err != nil {
			c.initErrors["ticketUseCase"] = fmt.Errorf("failed to get ticket repository for ticket use case: %w", err)
			return
		}

		idempotencyRepo, err := c.IdempotencyRepository()
		if err != nil {
			c.initErrors["ticketUseCase"] = fmt.Errorf("failed to get idempotency repository for ticket use case: %w", err)
			return
		}

		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			c.initErrors["ticketUseCase"] = fmt.Errorf("failed to get outbox repository for ticket use case: %w", err)
			return
		}

		eventRepo, err := c.EventRepository()
		if err != nil {
			c.initErrors["ticketUseCase"] = fmt.Errorf("failed to get event repository for ticket use case: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["ticketUseCase"] = fmt.Errorf("failed to get business metrics for ticket use case: %w", err)
			return
		}

		c.ticketUseCase = ticketUsecase.NewTicketUseCase(
			txManager,
			ticketRepo,
			idempotencyRepo,
			outboxRepo,
			eventRepo,
			c.ProviderClient(),
			c.SeatsCache(),
			businessMetrics,
			c.Logger(),
		)
	})
	if err, exists := c.initErrors["ticketUseCase"]; exists {
		return nil, err
	}
	return c.ticketUseCase, nil
}
