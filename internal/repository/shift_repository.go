package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hearthworks/volunteer-api/internal/models"
)

// ShiftRepository persists shifts and their skill requirements.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs the repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// FindByID fetches a shift with its event title.
func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	const query = `SELECT s.id, s.event_id, s.start_at, s.end_at, s.description, s.created_at,
       e.title AS event_title
FROM shifts s
JOIN events e ON e.id = s.event_id
WHERE s.id = $1`
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, id); err != nil {
		return nil, err
	}
	return &shift, nil
}

// ListByEvent returns an event's shifts ordered by start.
func (r *ShiftRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Shift, error) {
	const query = `SELECT s.id, s.event_id, s.start_at, s.end_at, s.description, s.created_at,
       e.title AS event_title
FROM shifts s
JOIN events e ON e.id = s.event_id
WHERE s.event_id = $1
ORDER BY s.start_at ASC`
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, eventID); err != nil {
		return nil, fmt.Errorf("list shifts by event: %w", err)
	}
	return shifts, nil
}

// Create inserts a shift row.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	shift.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO shifts (id, event_id, start_at, end_at, description, created_at)
VALUES (:id, :event_id, :start_at, :end_at, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// Update overwrites shift bounds and description.
func (r *ShiftRepository) Update(ctx context.Context, shift *models.Shift) error {
	const query = `UPDATE shifts SET start_at = :start_at, end_at = :end_at, description = :description
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, shift)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shift affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a shift; requirements and signups cascade.
func (r *ShiftRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete shift affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListRequirements returns the shift's requirement rows ordered by skill.
func (r *ShiftRepository) ListRequirements(ctx context.Context, shiftID string) ([]models.Requirement, error) {
	const query = `SELECT id, shift_id, skill, min_count FROM requirements WHERE shift_id = $1 ORDER BY skill ASC`
	var reqs []models.Requirement
	if err := r.db.SelectContext(ctx, &reqs, query, shiftID); err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	return reqs, nil
}

// AddRequirement inserts a requirement, or bumps the existing minimum by
// one when the (shift, skill) pair already exists. The increment-on-repeat
// behaviour is intentional: coordinators click "add" once per extra head.
func (r *ShiftRepository) AddRequirement(ctx context.Context, shiftID, skill string, minCount int) (*models.Requirement, error) {
	if minCount <= 0 {
		minCount = 1
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin requirement tx: %w", err)
	}

	var existing models.Requirement
	err = tx.GetContext(ctx, &existing,
		`SELECT id, shift_id, skill, min_count FROM requirements WHERE shift_id = $1 AND skill = $2`,
		shiftID, skill)
	switch {
	case err == nil:
		existing.MinCount++
		if _, err := tx.ExecContext(ctx, `UPDATE requirements SET min_count = $1 WHERE id = $2`, existing.MinCount, existing.ID); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("increment requirement: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		existing = models.Requirement{ID: uuid.NewString(), ShiftID: shiftID, Skill: skill, MinCount: minCount}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO requirements (id, shift_id, skill, min_count) VALUES ($1, $2, $3, $4)`,
			existing.ID, existing.ShiftID, existing.Skill, existing.MinCount); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("insert requirement: %w", err)
		}
	default:
		_ = tx.Rollback()
		return nil, fmt.Errorf("find requirement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit requirement tx: %w", err)
	}
	return &existing, nil
}

// DeleteRequirement removes one requirement row.
func (r *ShiftRepository) DeleteRequirement(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM requirements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete requirement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete requirement affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
