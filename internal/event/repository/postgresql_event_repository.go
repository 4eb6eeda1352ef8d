// Package repository provides data persistence implementations for the event catalog.
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

// PostgreSQLEventRepository handles event catalog persistence for PostgreSQL
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQLEventRepository
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{
		db: db,
	}
}

// UpsertPlace inserts or updates a place mirrored from the Events Provider
func (r *PostgreSQLEventRepository) UpsertPlace(ctx context.Context, place *domain.Place) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO places (id, name, city, address, seats_pattern, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			  ON CONFLICT (id) DO UPDATE
			  SET name = EXCLUDED.name, city = EXCLUDED.city, address = EXCLUDED.address,
			      seats_pattern = EXCLUDED.seats_pattern, updated_at = NOW()`

	_, err := querier.ExecContext(ctx, query, place.ID, place.Name, place.City, place.Address, place.SeatsPattern)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert place")
	}
	return nil
}

// UpsertEvent inserts or updates an event mirrored from the Events Provider
func (r *PostgreSQLEventRepository) UpsertEvent(ctx context.Context, event *domain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO events
			  (id, name, place_id, event_time, registration_deadline, status, number_of_visitors, changed_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			  ON CONFLICT (id) DO UPDATE
			  SET name = EXCLUDED.name, place_id = EXCLUDED.place_id, event_time = EXCLUDED.event_time,
			      registration_deadline = EXCLUDED.registration_deadline, status = EXCLUDED.status,
			      number_of_visitors = EXCLUDED.number_of_visitors, changed_at = EXCLUDED.changed_at,
			      updated_at = NOW()`

	_, err := querier.ExecContext(ctx, query, event.ID, event.Name, event.PlaceID, event.EventTime,
		event.RegistrationDeadline, event.Status, event.NumberOfVisitors, event.ChangedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert event")
	}
	return nil
}

// List returns a page of events ordered by event time, with their places,
// optionally filtered to events starting at or after dateFrom.
func (r *PostgreSQLEventRepository) List(
	ctx context.Context,
	dateFrom *time.Time,
	page int,
	pageSize int,
) ([]*domain.Event, int, error) {
	querier := database.GetTx(ctx, r.db)

	countQuery := `SELECT COUNT(*) FROM events e WHERE ($1::timestamptz IS NULL OR e.event_time >= $1)`

	var total int
	if err := querier.QueryRowContext(ctx, countQuery, dateFrom).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count events")
	}

	query := `SELECT e.id, e.name, e.place_id, e.event_time, e.registration_deadline, e.status,
			         e.number_of_visitors, e.changed_at, e.created_at, e.updated_at,
			         p.id, p.name, p.city, p.address, p.seats_pattern, p.created_at, p.updated_at
			  FROM events e
			  JOIN places p ON p.id = e.place_id
			  WHERE ($1::timestamptz IS NULL OR e.event_time >= $1)
			  ORDER BY e.event_time ASC
			  OFFSET $2 LIMIT $3`

	offset := (page - 1) * pageSize
	rows, err := querier.QueryContext(ctx, query, dateFrom, offset, pageSize)
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
func (r *PostgreSQLEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT e.id, e.name, e.place_id, e.event_time, e.registration_deadline, e.status,
			         e.number_of_visitors, e.changed_at, e.created_at, e.updated_at,
			         p.id, p.name, p.city, p.address, p.seats_pattern, p.created_at, p.updated_at
			  FROM events e
			  JOIN places p ON p.id = e.place_id
			  WHERE e.id = $1`

	row := querier.QueryRowContext(ctx, query, id)
	event, err := scanEventWithPlace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}

	return event, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEventWithPlace(row rowScanner) (*domain.Event, error) {
	var event domain.Event
	var place domain.Place

	err := row.Scan(
		&event.ID, &event.Name, &event.PlaceID, &event.EventTime, &event.RegistrationDeadline,
		&event.Status, &event.NumberOfVisitors, &event.ChangedAt, &event.CreatedAt, &event.UpdatedAt,
		&place.ID, &place.Name, &place.City, &place.Address, &place.SeatsPattern,
		&place.CreatedAt, &place.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan event")
	}

	event.Place = &place
	return &event, nil
}
