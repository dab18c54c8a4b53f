package models

import "time"

// AvailabilityWindow is a recurring weekly permission window. Weekday uses
// 0=Sunday through 6=Saturday; times are HH:MM with minute precision.
// Multiple windows per weekday combine with OR semantics.
type AvailabilityWindow struct {
	ID          string `db:"id" json:"id"`
	VolunteerID string `db:"volunteer_id" json:"volunteer_id"`
	Weekday     int    `db:"weekday" json:"weekday"`
	StartTime   string `db:"start_time" json:"start_time"`
	EndTime     string `db:"end_time" json:"end_time"`
}

// Blackout denies availability for either one specific calendar date or a
// recurring weekday. Exactly one of Date and Weekday is set; the two are
// mutually exclusive and any matching blackout overrides availability
// windows.
type Blackout struct {
	ID          string     `db:"id" json:"id"`
	VolunteerID string     `db:"volunteer_id" json:"volunteer_id"`
	Date        *time.Time `db:"date" json:"date,omitempty"`
	Weekday     *int       `db:"weekday" json:"weekday,omitempty"`
	StartTime   string     `db:"start_time" json:"start_time"`
	EndTime     string     `db:"end_time" json:"end_time"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
}

// IsDateScoped reports whether the blackout targets one calendar date.
func (b *Blackout) IsDateScoped() bool {
	return b.Date != nil
}

// IsWeekdayScoped reports whether the blackout recurs on a weekday.
func (b *Blackout) IsWeekdayScoped() bool {
	return b.Weekday != nil
}
