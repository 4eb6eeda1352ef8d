package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tickets/internal/database"
	apperrors "github.com/allisson/tickets/internal/errors"
	"github.com/allisson/tickets/internal/event/domain"
)

// MySQLEventRepository handles event catalog persistence for MySQL
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQLEventRepository
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{
		db: db,
	}
}

// UpsertPlace inserts or updates a place mirrored from the Events Provider
func (r *MySQLEventRepository) UpsertPlace(ctx context.Context, place *domain.Place) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO places (id, name, city, address, seats_pattern, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, NOW(), NOW())
			  ON DUPLICATE KEY UPDATE
			  name = VALUES(name), city = VALUES(city), address = VALUES(address),
			  seats_pattern = VALUES(seats_pattern), updated_at = NOW()`

	_, err := querier.ExecContext(ctx, query, place.ID.String(), place.Name, place.City, place.Address, place.SeatsPattern)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert place")
	}
	return nil
}

// UpsertEvent inserts or updates an event mirrored from the Events Provider
func (r *MySQLEventRepository) UpsertEvent(ctx context.Context, event *domain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO events
			  (id, name, place_id, event_time, registration_deadline, status, number_of_visitors, changed_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
			  ON DUPLICATE KEY UPDATE
			  name = VALUES(name), place_id = VALUES(place_id), event_time = VALUES(event_time),
			  registration_deadline = VALUES(registration_deadline), status = VALUES(status),
			  number_of_visitors = VALUES(number_of_visitors), changed_at = VALUES(changed_at),
			  updated_at = NOW()`

	_, err := querier.ExecContext(ctx, query, event.ID.String(), event.Name, event.PlaceID.String(),
		event.EventTime, event.RegistrationDeadline, event.Status, event.NumberOfVisitors, event.ChangedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert event")
	}
	return nil
}

// List returns a page of events ordered by event time, with their places,
// optionally filtered to events starting at or after dateFrom.
func (r *MySQLEventRepository) List(
	ctx context.Context,
	dateFrom *time.Time,
	page int,
	pageSize int,
) ([]*domain.Event, int, error) {
	querier := database.GetTx(ctx, r.db)

	countQuery := `SELECT COUNT(*) FROM events e WHERE (? IS NULL OR e.event_time >= ?)`

	var total int
	if err := querier.QueryRowContext(ctx, countQuery, dateFrom, dateFrom).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count events")
	}

	query := `SELECT e.id, e.name, e.place_id, e.event_time, e.registration_deadline, e.status,
			         e.number_of_visitors, e.changed_at, e.created_at, e.updated_at,
			         p.id, p.name, p.city, p.address, p.seats_pattern, p.created_at, p.updated_at
			  FROM events e
			  JOIN places p ON p.id = e.place_id
			  WHERE (? IS NULL OR e.event_time >= ?)
			  ORDER BY e.event_time ASC
			  LIMIT ? OFFSET ?`

	offset := (page - 1) * pageSize
	rows, err := querier.QueryContext(ctx, query, dateFrom, dateFrom, pageSize, offset)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list events")
	}
	defer rows.Close() //nolint:errcheck

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEventWithPlace(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to iterate events")
	}

	return events, total, nil
}

// GetByID retrieves an event with its place
func (r *MySQLEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT e.id, e.name, e.place_id, e.event_time, e.registration_deadline, e.status,
			         e.number_of_visitors, e.changed_at, e.created_at, e.updated_at,
			         p.id, p.name, p.city, p.address, p.seats_pattern, p.created_at, p.updated_at
			  FROM events e
			  JOIN places p ON p.id = e.place_id
			  WHERE e.id = ?`

	row := querier.QueryRowContext(ctx, query, id.String())
	event, err := scanEventWithPlace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}

	return event, nil
}
