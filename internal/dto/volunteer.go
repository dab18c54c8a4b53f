package dto

// CreateVolunteerRequest registers a new volunteer.
type CreateVolunteerRequest struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Email    *string  `json:"email" validate:"omitempty,email"`
	Phone    *string  `json:"phone" validate:"omitempty,max=40"`
	Skills   []string `json:"skills" validate:"omitempty,dive,min=1,max=80"`
	Notes    *string  `json:"notes"`
	IsActive *bool    `json:"isActive"`
}

// UpdateVolunteerRequest patches volunteer fields; nil fields are untouched.
type UpdateVolunteerRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Email    *string  `json:"email" validate:"omitempty,email"`
	Phone    *string  `json:"phone" validate:"omitempty,max=40"`
	Skills   []string `json:"skills" validate:"omitempty,dive,min=1,max=80"`
	Notes    *string  `json:"notes"`
	IsActive *bool    `json:"isActive"`
}

// AvailabilityWindowRequest is one recurring weekly window.
type AvailabilityWindowRequest struct {
	Weekday   int    `json:"weekday" validate:"min=0,max=6"`
	StartTime string `json:"startTime" validate:"required,len=5"`
	EndTime   string `json:"endTime" validate:"required,len=5"`
}

// ReplaceAvailabilityRequest swaps a volunteer's full window list.
type ReplaceAvailabilityRequest struct {
	Windows []AvailabilityWindowRequest `json:"windows" validate:"dive"`
}

// CreateBlackoutRequest adds a denial exception. Exactly one of Date and
// Weekday must be present; the service enforces the exclusivity.
type CreateBlackoutRequest struct {
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Weekday   *int    `json:"weekday" validate:"omitempty,min=0,max=6"`
	StartTime string  `json:"startTime" validate:"required,len=5"`
	EndTime   string  `json:"endTime" validate:"required,len=5"`
	Notes     *string `json:"notes"`
}
