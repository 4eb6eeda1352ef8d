package app

import (
	"fmt"

	repository "github.com/allisson/tickets/internal/event/repository"
	eventUsecase "github.com/allisson/tickets/internal/event/usecase"
)

// EventRepository returns the event catalog repository instance.
func (c *Container) EventRepository() (eventRepository, error) {
	c.eventRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["eventRepo"] = fmt.Errorf("failed to get database for event repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.eventRepo = repository.NewMySQLEventRepository(db)
		case "postgres":
			c.eventRepo = repository.NewPostgreSQLEventRepository(db)
		default:
			c.initErrors["eventRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["eventRepo"]; exists {
		return nil, err
	}
	return c.eventRepo, nil
}

// EventUseCase returns the event catalog use case instance.
func (c *Container) EventUseCase() (eventUsecase.UseCase, error) {
	c.eventUseCaseInit.Do(func() {
		eventRepo, err := c.EventRepository()
		if err != nil {
			c.initErrors["eventUseCase"] = fmt.Errorf("failed to get event repository for event use case: %w", err)
			return
		}

		c.eventUseCase = eventUsecase.NewEventUseCase(
			eventRepo,
			c.ProviderClient(),
			c.SeatsCache(),
		)
	})
	if err, exists := c.initErrors["eventUseCase"]; exists {
		return nil, err
	}
	return c.eventUseCase, nil
}
