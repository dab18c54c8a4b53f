package dto

import (
	"time"

	"github.com/hearthworks/volunteer-api/internal/models"
)

// CreateShiftRequest adds a shift under an event.
type CreateShiftRequest struct {
	StartAt     time.Time `json:"start" validate:"required"`
	EndAt       time.Time `json:"end" validate:"required,gtfield=StartAt"`
	Description *string   `json:"description"`
}

// UpdateShiftRequest patches shift bounds or description.
type UpdateShiftRequest struct {
	StartAt     *time.Time `json:"start"`
	EndAt       *time.Time `json:"end"`
	Description *string    `json:"description"`
}

// AddRequirementRequest attaches a skill need to a shift. MinCount below 1
// defaults to 1; a duplicate skill increments the stored minimum instead.
type AddRequirementRequest struct {
	Skill    string `json:"skill" validate:"required,min=1,max=80"`
	MinCount int    `json:"minCount" validate:"omitempty,min=0"`
}

// ShiftDetail is the shift read model with both UTC and local renderings
// of its bounds, mirroring what the calendar client consumes.
type ShiftDetail struct {
	models.Shift
	StartLocal string `json:"startLocal"`
	EndLocal   string `json:"endLocal"`
}

// RequirementFill pairs a requirement with its confirmed fill count.
type RequirementFill struct {
	models.Requirement
	Filled int `json:"filled"`
}
