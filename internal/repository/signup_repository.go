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

// SignupRepository persists volunteer-shift signups. The table carries a
// UNIQUE (volunteer_id, shift_id) constraint; Upsert leans on it so
// repeated assignments of the same pair are serialised by the database.
// The availability/conflict validation that precedes the upsert is NOT
// atomic with it: two racing assignments of one volunteer onto two
// different overlapping shifts can both pass the check. That race is
// accepted and surfaced through the conflict listing instead.
type SignupRepository struct {
	db *sqlx.DB
}

// NewSignupRepository constructs the repository.
func NewSignupRepository(db *sqlx.DB) *SignupRepository {
	return &SignupRepository{db: db}
}

// Upsert creates the signup or re-confirms the existing row, updating its
// role. Idempotent by construction.
func (r *SignupRepository) Upsert(ctx context.Context, signup *models.Signup) error {
	if signup.ID == "" {
		signup.ID = uuid.NewString()
	}
	if signup.Status == "" {
		signup.Status = models.SignupStatusConfirmed
	}
	now := time.Now().UTC()
	signup.CreatedAt = now
	signup.UpdatedAt = now
	const query = `INSERT INTO signups (id, shift_id, volunteer_id, role, status, created_at, updated_at)
VALUES (:id, :shift_id, :volunteer_id, :role, :status, :created_at, :updated_at)
ON CONFLICT (volunteer_id, shift_id)
DO UPDATE SET role = EXCLUDED.role, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
`
	if _, err := r.db.NamedExecContext(ctx, query, signup); err != nil {
		return fmt.Errorf("upsert signup: %w", err)
	}
	return nil
}

// Get fetches the signup for one (shift, volunteer) pair.
func (r *SignupRepository) Get(ctx context.Context, shiftID, volunteerID string) (*models.Signup, error) {
	const query = `SELECT id, shift_id, volunteer_id, role, status, created_at, updated_at
FROM signups WHERE shift_id = $1 AND volunteer_id = $2`
	var s models.Signup
	if err := r.db.GetContext(ctx, &s, query, shiftID, volunteerID); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByShift returns a shift's signups with volunteer names attached.
func (r *SignupRepository) ListByShift(ctx context.Context, shiftID string) ([]models.Signup, error) {
	const query = `SELECT s.id, s.shift_id, s.volunteer_id, s.role, s.status, s.created_at, s.updated_at,
       v.name AS volunteer_name
FROM signups s
JOIN volunteers v ON v.id = s.volunteer_id
WHERE s.shift_id = $1
ORDER BY v.name ASC`
	var signups []models.Signup
	if err := r.db.SelectContext(ctx, &signups, query, shiftID); err != nil {
		return nil, fmt.Errorf("list signups: %w", err)
	}
	return signups, nil
}

// FindConfirmedOverlapping returns the volunteer's confirmed signups whose
// shifts overlap [start, end) in absolute time, excluding the candidate
// shift itself. The WHERE clause mirrors models.IntervalsOverlap: a shift
// ending exactly at start does not conflict.
func (r *SignupRepository) FindConfirmedOverlapping(ctx context.Context, volunteerID string, start, end time.Time, excludeShiftID string) ([]models.SignupConflict, error) {
	const query = `SELECT s.id AS signup_id, sh.id AS shift_id, e.title AS event_title, sh.start_at, sh.end_at
FROM signups s
JOIN shifts sh ON sh.id = s.shift_id
JOIN events e ON e.id = sh.event_id
WHERE s.volunteer_id = $1
  AND s.status = 'confirmed'
  AND s.shift_id <> $2
  AND sh.start_at < $4
  AND $3 < sh.end_at
ORDER BY sh.start_at ASC`
	var conflicts []models.SignupConflict
	if err := r.db.SelectContext(ctx, &conflicts, query, volunteerID, excludeShiftID, start, end); err != nil {
		return nil, fmt.Errorf("find overlapping signups: %w", err)
	}
	return conflicts, nil
}

// ConflictsByVolunteer bulk-loads confirmed overlapping signups for every
// volunteer against one interval, keyed by volunteer id. One query per
// eligibility listing instead of one per candidate.
func (r *SignupRepository) ConflictsByVolunteer(ctx context.Context, start, end time.Time, excludeShiftID string) (map[string][]models.SignupConflict, error) {
	const query = `SELECT s.volunteer_id, s.id AS signup_id, sh.id AS shift_id, e.title AS event_title, sh.start_at, sh.end_at
FROM signups s
JOIN shifts sh ON sh.id = s.shift_id
JOIN events e ON e.id = sh.event_id
WHERE s.status = 'confirmed'
  AND s.shift_id <> $1
  AND sh.start_at < $3
  AND $2 < sh.end_at
ORDER BY sh.start_at ASC`
	rows := []struct {
		VolunteerID string `db:"volunteer_id"`
		models.SignupConflict
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, excludeShiftID, start, end); err != nil {
		return nil, fmt.Errorf("bulk overlapping signups: %w", err)
	}
	result := make(map[string][]models.SignupConflict, len(rows))
	for _, row := range rows {
		result[row.VolunteerID] = append(result[row.VolunteerID], row.SignupConflict)
	}
	return result, nil
}

// CountConfirmedByRole returns confirmed signup counts per role for a
// shift, used for requirement fill reporting.
func (r *SignupRepository) CountConfirmedByRole(ctx context.Context, shiftID string) (map[string]int, error) {
	const query = `SELECT COALESCE(role, '') AS role, COUNT(*) AS total
FROM signups WHERE shift_id = $1 AND status = 'confirmed'
GROUP BY role`
	rows := []struct {
		Role  string `db:"role"`
		Total int    `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, shiftID); err != nil {
		return nil, fmt.Errorf("count signups by role: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}

// Delete removes the signup for a (shift, volunteer) pair.
func (r *SignupRepository) Delete(ctx context.Context, shiftID, volunteerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM signups WHERE shift_id = $1 AND volunteer_id = $2`, shiftID, volunteerID)
	if err != nil {
		return fmt.Errorf("delete signup: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete signup affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SumConfirmedHours aggregates confirmed signup hours per volunteer over a
// period, feeding the hours report.
func (r *SignupRepository) SumConfirmedHours(ctx context.Context, from, to time.Time) ([]VolunteerHoursRow, error) {
	const query = `SELECT v.id AS volunteer_id, v.name, COUNT(s.id) AS shift_count,
       COALESCE(SUM(EXTRACT(EPOCH FROM (sh.end_at - sh.start_at)) / 3600.0), 0) AS hours
FROM signups s
JOIN shifts sh ON sh.id = s.shift_id
JOIN volunteers v ON v.id = s.volunteer_id
WHERE s.status = 'confirmed'
  AND sh.start_at >= $1
  AND sh.start_at < $2
GROUP BY v.id, v.name
ORDER BY hours DESC, v.name ASC`
	var report []VolunteerHoursRow
	if err := r.db.SelectContext(ctx, &report, query, from, to); err != nil {
		return nil, fmt.Errorf("sum confirmed hours: %w", err)
	}
	return report, nil
}

// VolunteerHoursRow is one aggregated hours report row.
type VolunteerHoursRow struct {
	VolunteerID string  `db:"volunteer_id"`
	Name        string  `db:"name"`
	ShiftCount  int     `db:"shift_count"`
	Hours       float64 `db:"hours"`
}
