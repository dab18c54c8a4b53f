package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/repository"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
	"github.com/hearthworks/volunteer-api/pkg/export"
)

type hoursReader interface {
	SumConfirmedHours(ctx context.Context, from, to time.Time) ([]repository.VolunteerHoursRow, error)
}

// ReportService aggregates confirmed signup hours and renders them as
// JSON rows, CSV, or PDF.
type ReportService struct {
	signups hoursReader
	logger  *zap.Logger
}

func NewReportService(signups hoursReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{signups: signups, logger: logger}
}

// Hours returns per-volunteer confirmed hours over the period.
func (s *ReportService) Hours(ctx context.Context, q dto.HoursReportQuery) ([]dto.VolunteerHours, error) {
	if !q.To.After(q.From) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report period end must be after start")
	}
	rows, err := s.signups.SumConfirmedHours(ctx, q.From, q.To)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "aggregate hours")
	}
	report := make([]dto.VolunteerHours, 0, len(rows))
	for _, row := range rows {
		report = append(report, dto.VolunteerHours{
			VolunteerID: row.VolunteerID,
			Name:        row.Name,
			ShiftCount:  row.ShiftCount,
			Hours:       row.Hours,
		})
	}
	return report, nil
}

// HoursCSV renders the hours report as CSV bytes.
func (s *ReportService) HoursCSV(ctx context.Context, q dto.HoursReportQuery) ([]byte, error) {
	report, err := s.Hours(ctx, q)
	if err != nil {
		return nil, err
	}
	data, err := export.CSV(hoursDataset(report))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv")
	}
	return data, nil
}

// HoursPDF renders the hours report as PDF bytes.
func (s *ReportService) HoursPDF(ctx context.Context, q dto.HoursReportQuery) ([]byte, error) {
	report, err := s.Hours(ctx, q)
	if err != nil {
		return nil, err
	}
	subtitle := fmt.Sprintf("%s to %s", q.From.Format("2006-01-02"), q.To.Format("2006-01-02"))
	data, err := export.PDF(hoursDataset(report), "Volunteer Hours", subtitle)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf")
	}
	return data, nil
}

func hoursDataset(report []dto.VolunteerHours) export.Dataset {
	rows := make([][]string, 0, len(report))
	for _, r := range report {
		rows = append(rows, []string{
			r.Name,
			strconv.Itoa(r.ShiftCount),
			strconv.FormatFloat(r.Hours, 'f', 1, 64),
		})
	}
	return export.Dataset{
		Headers: []string{"Volunteer", "Shifts", "Hours"},
		Rows:    rows,
	}
}
