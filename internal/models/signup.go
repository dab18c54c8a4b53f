package models

import "time"

// SignupStatus enumerates signup lifecycle states. Only confirmed signups
// count toward conflict detection and requirement fill counts.
type SignupStatus string

const (
	SignupStatusConfirmed SignupStatus = "confirmed"
	SignupStatusTentative SignupStatus = "tentative"
	SignupStatusCancelled SignupStatus = "cancelled"
)

// Signup is a volunteer's claim on a shift, unique per (volunteer, shift).
type Signup struct {
	ID          string       `db:"id" json:"id"`
	ShiftID     string       `db:"shift_id" json:"shift_id"`
	VolunteerID string       `db:"volunteer_id" json:"volunteer_id"`
	Role        *string      `db:"role" json:"role,omitempty"`
	Status      SignupStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`

	VolunteerName string `db:"volunteer_name" json:"volunteer_name,omitempty"`
}

// IntervalsOverlap reports whether [start, end) intersects
// [otherStart, otherEnd). The bound is half-open: back-to-back shifts
// sharing an instant do not conflict. The signup conflict queries apply
// the same predicate in SQL (start_at < end AND start < end_at).
func IntervalsOverlap(start, end, otherStart, otherEnd time.Time) bool {
	return start.Before(otherEnd) && otherStart.Before(end)
}

// OverlappingConflicts keeps only the conflicts whose bounds intersect
// the half-open interval [start, end).
func OverlappingConflicts(conflicts []SignupConflict, start, end time.Time) []SignupConflict {
	out := conflicts[:0:0]
	for _, c := range conflicts {
		if IntervalsOverlap(start, end, c.StartAt, c.EndAt) {
			out = append(out, c)
		}
	}
	return out
}

// SignupConflict carries the identity and bounds of an existing confirmed
// signup that overlaps a candidate interval, for surfacing to coordinators.
type SignupConflict struct {
	SignupID   string    `db:"signup_id" json:"signup_id"`
	ShiftID    string    `db:"shift_id" json:"shift_id"`
	EventTitle string    `db:"event_title" json:"event_title"`
	StartAt    time.Time `db:"start_at" json:"start_at"`
	EndAt      time.Time `db:"end_at" json:"end_at"`
}

// AssignmentConflictError is returned when an assignment collides with an
// existing confirmed signup.
type AssignmentConflictError struct {
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Conflict SignupConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *AssignmentConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
