package dto

import "time"

// HoursReportQuery bounds the reporting period.
type HoursReportQuery struct {
	From   time.Time
	To     time.Time
	Format string
}

// VolunteerHours is one report row: confirmed signup hours per volunteer.
type VolunteerHours struct {
	VolunteerID string  `json:"volunteerId"`
	Name        string  `json:"name"`
	ShiftCount  int     `json:"shiftCount"`
	Hours       float64 `json:"hours"`
}

// CreateExportRequest starts a background hours export.
type CreateExportRequest struct {
	From   time.Time `json:"from" validate:"required"`
	To     time.Time `json:"to" validate:"required,gtfield=From"`
	Format string    `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse reports the state of an export job.
type ExportJobResponse struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	ResultURL *string `json:"resultUrl,omitempty"`
	Error     *string `json:"error,omitempty"`
}
