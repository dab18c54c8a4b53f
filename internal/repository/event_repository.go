package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hearthworks/volunteer-api/internal/models"
)

// EventRepository persists events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events ordered by start, optionally bounded to a window.
func (r *EventRepository) List(ctx context.Context, from, to *time.Time) ([]models.Event, error) {
	query := `SELECT id, project_id, title, location, start_at, end_at, created_at FROM events`
	args := []interface{}{}
	if from != nil && to != nil {
		query += ` WHERE start_at < $2 AND $1 < end_at`
		args = append(args, *from, *to)
	}
	query += ` ORDER BY start_at ASC`

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// FindByID fetches one event.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	const query = `SELECT id, project_id, title, location, start_at, end_at, created_at FROM events WHERE id = $1`
	var e models.Event
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event row.
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO events (id, project_id, title, location, start_at, end_at, created_at)
VALUES (:id, :project_id, :title, :location, :start_at, :end_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update overwrites mutable event fields.
func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	const query = `UPDATE events SET title = :title, location = :location, start_at = :start_at, end_at = :end_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, e)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event; its shifts (and their dependents) cascade.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
