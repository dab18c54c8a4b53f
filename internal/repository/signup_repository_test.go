package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthworks/volunteer-api/internal/models"
)

func TestSignupRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSignupRepository(db)
	mock.ExpectExec("INSERT INTO signups").
		WithArgs(sqlmock.AnyArg(), "shift-1", "vol-1", "paint", "confirmed", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	role := "paint"
	signup := &models.Signup{ShiftID: "shift-1", VolunteerID: "vol-1", Role: &role}
	require.NoError(t, repo.Upsert(context.Background(), signup))
	assert.Equal(t, models.SignupStatusConfirmed, signup.Status)
	assert.NotEmpty(t, signup.ID)
}

func TestSignupRepositoryFindConfirmedOverlapping(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSignupRepository(db)
	start := time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	rows := sqlmock.NewRows([]string{"signup_id", "shift_id", "event_title", "start_at", "end_at"}).
		AddRow("sig-1", "shift-0", "Build Day", start.Add(-2*time.Hour), start.Add(time.Hour))
	mock.ExpectQuery("SELECT s.id AS signup_id").
		WithArgs("vol-1", "shift-1", start, end).
		WillReturnRows(rows)

	conflicts, err := repo.FindConfirmedOverlapping(context.Background(), "vol-1", start, end, "shift-1")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Build Day", conflicts[0].EventTitle)
	assert.Equal(t, "shift-0", conflicts[0].ShiftID)
}

func TestSignupRepositoryConflictsByVolunteerGroups(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSignupRepository(db)
	start := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)
	rows := sqlmock.NewRows([]string{"volunteer_id", "signup_id", "shift_id", "event_title", "start_at", "end_at"}).
		AddRow("vol-1", "sig-1", "shift-2", "Build Day", start, end).
		AddRow("vol-1", "sig-2", "shift-3", "Paint Day", start, end).
		AddRow("vol-2", "sig-3", "shift-2", "Build Day", start, end)
	mock.ExpectQuery("SELECT s.volunteer_id").
		WithArgs("shift-1", start, end).
		WillReturnRows(rows)

	byVolunteer, err := repo.ConflictsByVolunteer(context.Background(), start, end, "shift-1")
	require.NoError(t, err)
	assert.Len(t, byVolunteer["vol-1"], 2)
	assert.Len(t, byVolunteer["vol-2"], 1)
	assert.Empty(t, byVolunteer["vol-3"])
}

func TestSignupRepositorySumConfirmedHours(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSignupRepository(db)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows := sqlmock.NewRows([]string{"volunteer_id", "name", "shift_count", "hours"}).
		AddRow("vol-1", "Alex Carpenter", 3, 10.5)
	mock.ExpectQuery("SELECT v.id AS volunteer_id").
		WithArgs(from, to).
		WillReturnRows(rows)

	report, err := repo.SumConfirmedHours(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.InDelta(t, 10.5, report[0].Hours, 0.001)
}
