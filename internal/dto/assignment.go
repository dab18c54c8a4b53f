package dto

// AssignRequest asks to sign a volunteer up for a shift. Force bypasses
// both the availability and the conflict re-validation; it is a deliberate
// coordinator escape hatch.
type AssignRequest struct {
	VolunteerID string  `json:"volunteerId" validate:"required"`
	Role        *string `json:"role" validate:"omitempty,max=120"`
	Force       bool    `json:"force"`
}
