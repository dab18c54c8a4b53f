package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hearthworks/volunteer-api/internal/models"
)

// VolunteerRepository persists volunteers and their recurring rules.
type VolunteerRepository struct {
	db *sqlx.DB
}

// NewVolunteerRepository constructs the repository.
func NewVolunteerRepository(db *sqlx.DB) *VolunteerRepository {
	return &VolunteerRepository{db: db}
}

const volunteerColumns = `id, name, email, phone, skills, is_active, notes, created_at, updated_at`

// List returns volunteers matching the filter. Availability windows and
// blackouts are attached so callers can evaluate eligibility in memory.
func (r *VolunteerRepository) List(ctx context.Context, filter models.VolunteerFilter) ([]models.Volunteer, error) {
	query := fmt.Sprintf(`SELECT %s FROM volunteers`, volunteerColumns)
	conditions := []string{}
	args := []interface{}{}

	if filter.Skill != "" {
		args = append(args, filter.Skill)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(skills)", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	var volunteers []models.Volunteer
	if err := r.db.SelectContext(ctx, &volunteers, query, args...); err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	if err := r.attachRules(ctx, volunteers); err != nil {
		return nil, err
	}
	return volunteers, nil
}

// ListActive returns active volunteers with rules attached, the candidate
// pool for eligibility listings.
func (r *VolunteerRepository) ListActive(ctx context.Context) ([]models.Volunteer, error) {
	active := true
	return r.List(ctx, models.VolunteerFilter{Active: &active})
}

// FindByID fetches one volunteer with windows and blackouts attached.
func (r *VolunteerRepository) FindByID(ctx context.Context, id string) (*models.Volunteer, error) {
	query := fmt.Sprintf(`SELECT %s FROM volunteers WHERE id = $1`, volunteerColumns)
	var v models.Volunteer
	if err := r.db.GetContext(ctx, &v, query, id); err != nil {
		return nil, err
	}
	vs := []models.Volunteer{v}
	if err := r.attachRules(ctx, vs); err != nil {
		return nil, err
	}
	return &vs[0], nil
}

// Create inserts a volunteer row.
func (r *VolunteerRepository) Create(ctx context.Context, v *models.Volunteer) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	if v.Skills == nil {
		v.Skills = pq.StringArray{}
	}
	const query = `INSERT INTO volunteers (id, name, email, phone, skills, is_active, notes, created_at, updated_at)
VALUES (:id, :name, :email, :phone, :skills, :is_active, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, v); err != nil {
		return fmt.Errorf("create volunteer: %w", err)
	}
	return nil
}

// Update overwrites mutable volunteer fields.
func (r *VolunteerRepository) Update(ctx context.Context, v *models.Volunteer) error {
	v.UpdatedAt = time.Now().UTC()
	const query = `UPDATE volunteers
SET name = :name, email = :email, phone = :phone, skills = :skills,
    is_active = :is_active, notes = :notes, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, v)
	if err != nil {
		return fmt.Errorf("update volunteer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update volunteer affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a volunteer; signups, windows and blackouts cascade at
// the schema level.
func (r *VolunteerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM volunteers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete volunteer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete volunteer affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceWindows swaps the volunteer's availability window list within a
// transaction.
func (r *VolunteerRepository) ReplaceWindows(ctx context.Context, volunteerID string, windows []models.AvailabilityWindow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace windows tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM availability_windows WHERE volunteer_id = $1`, volunteerID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear availability windows: %w", err)
	}
	const insert = `INSERT INTO availability_windows (id, volunteer_id, weekday, start_time, end_time)
VALUES (:id, :volunteer_id, :weekday, :start_time, :end_time)`
	for i := range windows {
		windows[i].ID = uuid.NewString()
		windows[i].VolunteerID = volunteerID
		if _, err := tx.NamedExecContext(ctx, insert, windows[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert availability window: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace windows tx: %w", err)
	}
	return nil
}

// AddBlackout inserts a blackout exception.
func (r *VolunteerRepository) AddBlackout(ctx context.Context, b *models.Blackout) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	const query = `INSERT INTO blackouts (id, volunteer_id, date, weekday, start_time, end_time, notes)
VALUES (:id, :volunteer_id, :date, :weekday, :start_time, :end_time, :notes)`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("add blackout: %w", err)
	}
	return nil
}

// DeleteBlackout removes one blackout row owned by the volunteer.
func (r *VolunteerRepository) DeleteBlackout(ctx context.Context, volunteerID, blackoutID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blackouts WHERE id = $1 AND volunteer_id = $2`, blackoutID, volunteerID)
	if err != nil {
		return fmt.Errorf("delete blackout: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blackout affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *VolunteerRepository) attachRules(ctx context.Context, volunteers []models.Volunteer) error {
	if len(volunteers) == 0 {
		return nil
	}
	ids := make([]string, len(volunteers))
	index := make(map[string]int, len(volunteers))
	for i := range volunteers {
		ids[i] = volunteers[i].ID
		index[volunteers[i].ID] = i
	}

	var windows []models.AvailabilityWindow
	const windowQuery = `SELECT id, volunteer_id, weekday, start_time, end_time
FROM availability_windows WHERE volunteer_id = ANY($1) ORDER BY weekday, start_time`
	if err := r.db.SelectContext(ctx, &windows, windowQuery, pq.Array(ids)); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("list availability windows: %w", err)
	}
	for _, w := range windows {
		i := index[w.VolunteerID]
		volunteers[i].Availability = append(volunteers[i].Availability, w)
	}

	var blackouts []models.Blackout
	const blackoutQuery = `SELECT id, volunteer_id, date, weekday, start_time, end_time, notes
FROM blackouts WHERE volunteer_id = ANY($1) ORDER BY date NULLS LAST, weekday NULLS LAST, start_time`
	if err := r.db.SelectContext(ctx, &blackouts, blackoutQuery, pq.Array(ids)); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("list blackouts: %w", err)
	}
	for _, b := range blackouts {
		i := index[b.VolunteerID]
		volunteers[i].Blackouts = append(volunteers[i].Blackouts, b)
	}
	return nil
}
