package dto

import (
	"time"

	"github.com/hearthworks/volunteer-api/internal/availability"
)

// Engine-level exclusion reasons layered on top of the availability
// evaluator's codes.
const (
	ReasonDoubleBooked         = "double_booked"
	ReasonOutsideAvailability  = availability.ReasonOutsideAvailability
	ReasonMissingRequiredSkill = "missing_required_skill"
)

// EligibilityQuery parameterises an eligible-volunteer listing. Nil
// RequireSkills defers to the persisted setting.
type EligibilityQuery struct {
	ShiftID       string
	RequireSkills *bool
	Debug         bool
}

// EligibleVolunteer is one candidate who survived all checks.
type EligibleVolunteer struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// ConflictDetail describes the confirmed signup that blocks a candidate.
type ConflictDetail struct {
	ShiftID    string    `json:"shiftId"`
	EventTitle string    `json:"eventTitle"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
}

// ExcludedVolunteer annotates a rejected candidate with every applicable
// reason plus diagnostic context. Only populated in debug mode.
type ExcludedVolunteer struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Skills              []string             `json:"skills"`
	Reasons             []string             `json:"reasons"`
	Conflict            *ConflictDetail      `json:"conflict,omitempty"`
	AvailabilityContext *availability.Result `json:"availabilityContext,omitempty"`
	RequiredSkills      []string             `json:"requiredSkills,omitempty"`
}

// EligibilityResult is the engine's answer for one shift.
type EligibilityResult struct {
	ShiftID       string              `json:"shiftId"`
	RequireSkills bool                `json:"requireSkills"`
	Eligible      []EligibleVolunteer `json:"eligible"`
	Excluded      []ExcludedVolunteer `json:"excluded,omitempty"`
}
