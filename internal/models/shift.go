package models

import "time"

// Shift is a concrete, absolutely-timed unit of work under an event.
// StartAt/EndAt are instants, not times of day; availability checks
// translate them to wall-clock terms, conflict checks compare them raw.
type Shift struct {
	ID          string    `db:"id" json:"id"`
	EventID     string    `db:"event_id" json:"event_id"`
	StartAt     time.Time `db:"start_at" json:"start_at"`
	EndAt       time.Time `db:"end_at" json:"end_at"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	EventTitle   string        `db:"event_title" json:"event_title,omitempty"`
	Requirements []Requirement `db:"-" json:"requirements,omitempty"`
	Signups      []Signup      `db:"-" json:"signups,omitempty"`
}

// Requirement is a (skill, minimum headcount) need on a shift, unique per
// (shift, skill). Adding the same skill again bumps the existing minimum
// by one instead of inserting a second row.
type Requirement struct {
	ID       string `db:"id" json:"id"`
	ShiftID  string `db:"shift_id" json:"shift_id"`
	Skill    string `db:"skill" json:"skill"`
	MinCount int    `db:"min_count" json:"min_count"`
}

// RequiredSkills returns the deduplicated skill labels across requirements.
func RequiredSkills(reqs []Requirement) []string {
	seen := make(map[string]struct{}, len(reqs))
	skills := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if _, ok := seen[r.Skill]; ok {
			continue
		}
		seen[r.Skill] = struct{}{}
		skills = append(skills, r.Skill)
	}
	return skills
}
