package models

import (
	"time"

	"github.com/lib/pq"
)

// Volunteer is a person who can be signed up for shifts. Skills are an
// unordered, deduplicated set of labels matched against shift requirements.
type Volunteer struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Email     *string        `db:"email" json:"email,omitempty"`
	Phone     *string        `db:"phone" json:"phone,omitempty"`
	Skills    pq.StringArray `db:"skills" json:"skills"`
	IsActive  bool           `db:"is_active" json:"is_active"`
	Notes     *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`

	Availability []AvailabilityWindow `db:"-" json:"availability,omitempty"`
	Blackouts    []Blackout           `db:"-" json:"blackouts,omitempty"`
}

// HasSkill reports whether the volunteer declares the given skill label.
func (v *Volunteer) HasSkill(skill string) bool {
	for _, s := range v.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// VolunteerFilter describes query params for listing volunteers.
type VolunteerFilter struct {
	Skill       string
	Active      *bool
	AvailableAt *time.Time
}
