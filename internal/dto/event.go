package dto

import "time"

// CreateEventRequest registers an event, optionally under a project.
type CreateEventRequest struct {
	ProjectID *string   `json:"projectId"`
	Title     string    `json:"title" validate:"required,max=200"`
	Location  *string   `json:"location" validate:"omitempty,max=200"`
	StartAt   time.Time `json:"start" validate:"required"`
	EndAt     time.Time `json:"end" validate:"required,gtfield=StartAt"`
}

// UpdateEventRequest patches event fields.
type UpdateEventRequest struct {
	Title    *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Location *string    `json:"location" validate:"omitempty,max=200"`
	StartAt  *time.Time `json:"start"`
	EndAt    *time.Time `json:"end"`
}
