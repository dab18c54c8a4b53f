package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/repository"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
)

type mockHoursReader struct {
	rows []repository.VolunteerHoursRow
}

func (m *mockHoursReader) SumConfirmedHours(_ context.Context, _, _ time.Time) ([]repository.VolunteerHoursRow, error) {
	return m.rows, nil
}

func reportQuery() dto.HoursReportQuery {
	return dto.HoursReportQuery{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestReportHours(t *testing.T) {
	reader := &mockHoursReader{rows: []repository.VolunteerHoursRow{
		{VolunteerID: "v-1", Name: "Ana", ShiftCount: 3, Hours: 10.5},
		{VolunteerID: "v-2", Name: "Ben", ShiftCount: 1, Hours: 4},
	}}
	svc := NewReportService(reader, zap.NewNop())

	report, err := svc.Hours(context.Background(), reportQuery())
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, "Ana", report[0].Name)
	assert.InDelta(t, 10.5, report[0].Hours, 0.001)
}

func TestReportHoursRejectsInvertedPeriod(t *testing.T) {
	svc := NewReportService(&mockHoursReader{}, zap.NewNop())

	q := reportQuery()
	q.From, q.To = q.To, q.From
	_, err := svc.Hours(context.Background(), q)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportHoursCSV(t *testing.T) {
	reader := &mockHoursReader{rows: []repository.VolunteerHoursRow{
		{VolunteerID: "v-1", Name: "Ana", ShiftCount: 3, Hours: 10.5},
	}}
	svc := NewReportService(reader, zap.NewNop())

	data, err := svc.HoursCSV(context.Background(), reportQuery())
	require.NoError(t, err)
	assert.Contains(t, string(data), "Volunteer,Shifts,Hours")
	assert.Contains(t, string(data), "Ana,3,10.5")
}

func TestReportHoursPDF(t *testing.T) {
	reader := &mockHoursReader{rows: []repository.VolunteerHoursRow{
		{VolunteerID: "v-1", Name: "Ana", ShiftCount: 3, Hours: 10.5},
	}}
	svc := NewReportService(reader, zap.NewNop())

	data, err := svc.HoursPDF(context.Background(), reportQuery())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
