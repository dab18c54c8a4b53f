package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
)

type mockVolunteerFinder struct {
	volunteer *models.Volunteer
	err       error
}

func (m *mockVolunteerFinder) FindByID(_ context.Context, _ string) (*models.Volunteer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.volunteer, nil
}

type mockSignupRepo struct {
	overlapping []models.SignupConflict
	upserted    *models.Signup
	deleted     bool
	deleteErr   error
}

func (m *mockSignupRepo) Upsert(_ context.Context, signup *models.Signup) error {
	m.upserted = signup
	return nil
}

func (m *mockSignupRepo) FindConfirmedOverlapping(_ context.Context, _ string, _, _ time.Time, _ string) ([]models.SignupConflict, error) {
	return m.overlapping, nil
}

func (m *mockSignupRepo) Delete(_ context.Context, _, _ string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = true
	return nil
}

func availableVolunteer() *models.Volunteer {
	return &models.Volunteer{
		ID:   "v-1",
		Name: "Ana",
		Availability: []models.AvailabilityWindow{
			{VolunteerID: "v-1", Weekday: 1, StartTime: "08:00", EndTime: "17:00"},
		},
	}
}

func TestAssignConfirmsSignup(t *testing.T) {
	signups := &mockSignupRepo{}
	svc := NewAssignmentService(&mockShiftReader{shift: mondayShift()}, &mockVolunteerFinder{volunteer: availableVolunteer()}, signups, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	role := "painter"
	signup, err := svc.Assign(context.Background(), "shift-1", dto.AssignRequest{VolunteerID: "v-1", Role: &role})
	require.NoError(t, err)
	require.NotNil(t, signups.upserted)
	assert.Equal(t, models.SignupStatusConfirmed, signup.Status)
	assert.Equal(t, "shift-1", signup.ShiftID)
	assert.Equal(t, "v-1", signup.VolunteerID)
	require.NotNil(t, signup.Role)
	assert.Equal(t, "painter", *signup.Role)
}

func TestAssignAllowsBackToBackShifts(t *testing.T) {
	// The target runs 09:00-12:00; an existing signup starting exactly at
	// 12:00 shares only the boundary instant and must not count as a
	// double booking.
	signups := &mockSignupRepo{overlapping: []models.SignupConflict{{
		SignupID:   "sg-1",
		ShiftID:    "shift-9",
		EventTitle: "Roofing",
		StartAt:    time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2024, 1, 8, 14, 0, 0, 0, time.UTC),
	}}}
	svc := NewAssignmentService(&mockShiftReader{shift: mondayShift()}, &mockVolunteerFinder{volunteer: availableVolunteer()}, signups, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	signup, err := svc.Assign(context.Background(), "shift-1", dto.AssignRequest{VolunteerID: "v-1"})
	require.NoError(t, err)
	assert.Equal(t, models.SignupStatusConfirmed, signup.Status)
}

func TestAssignTwiceIsIdempotent(t *testing.T) {
	// The overlap lookup excludes the target shift, so repeating an
	// assignment just re-upserts the same row.
	signups := &mockSignupRepo{}
	svc := NewAssignmentService(&mockShiftReader{shift: mondayShift()}, &mockVolunteerFinder{volunteer: availableVolunteer()}, signups, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	first, err := svc.Assign(context.Background(), "shift-1", dto.AssignRequest{VolunteerID: "v-1"})
	require.NoError(t, err)
	second, err := svc.Assign(context.Background(), "shift-1", dto.AssignRequest{VolunteerID: "v-1"})
	require.NoError(t, err)
	assert.Equal(t, first.ShiftID, second.ShiftID)
	assert.Equal(t, first.VolunteerID, second.VolunteerID)
	assert.Equal(t, models.SignupStatusConfirmed, second.Status)
}

func TestAssignRejectsUnavailableVolunteer(t *testing.T) {
	volunteer := &models.Volunteer{
		ID:   "v-1",
		Name: "Ana",
		Availability: []models.AvailabilityWindow{
			{VolunteerID: "v-1", Weekday: 2, StartTime: "08:00", EndTime: "17:00"},
		},
	}
	signups := &mockSignupRepo{}
	svc := NewAssignmentService(&mockShiftReader{shift: mondayShift()}, &mockVolunteerFinder{volunteer: volunteer}, signups, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	_, err := svc.Assign(context.Background(), "shift-1", dto.AssignRequest{VolunteerID: "v-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotAvailable.Code, appErrors.FromError(err).Code)
	assert.Nil(t, signups.upserted)
}

func TestAssignRejectsDoubleBooking(t *testing.T) {
	signups := &mockSignupRepo{overlapping: []models.SignupConflict{{
		SignupID:   "sg-1",
		ShiftID:    "shift-9",
		EventTitle: "Roofing",
		StartAt:    time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2024, 1, 8, 13, 0, 0, 0, time.UTC),
	}}}
	svc := NewAssignmentService(&mockShiftReader{shift: mondayShift()}, &mockVolunteerFinder{volunteer: availableVolunteer()}, signups, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	_, err := svc.Assign(context.Background(), "shift-1", dto.AssignRequest{VolunteerID: "v-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDoubleBooked.Code, appErrors.FromError(err).Code)

	var detail *models.AssignmentConflictError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "shift-9", detail.Conflict.ShiftID)
	assert.Equal(t, "Roofing", detail.Conflict.EventTitle)
	assert.Equal(t, detail, appErrors.FromError(err).Details)
}

func TestAssignForceBypassesValidation(t *testing.T) {
	// Unavailable and double booked, but force pushes the signup through.
	volunteer := &models.Volunteer{ID: "v-1", Name: "Ana", Availability: []models.AvailabilityWindow{
		{VolunteerID: "v-1", Weekday: 2, StartTime: "08:00", EndTime: "17:00"},
	}}
	signups := &mockSignupRepo{overlapping: []models.SignupConflict{{SignupID: "sg-1", ShiftID: "shift-9"}}}
	svc := NewAssignmentService(&mockShiftReader{shift: mondayShift()}, &mockVolunteerFinder{volunteer: volunteer}, signups, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	signup, err := svc.Assign(context.Background(), "shift-1", dto.AssignRequest{VolunteerID: "v-1", Force: true})
	require.NoError(t, err)
	assert.Equal(t, models.SignupStatusConfirmed, signup.Status)
}

func TestAssignUTCFallbackPermits(t *testing.T) {
	loc := time.FixedZone("TEST", 7*3600)
	shift := &models.Shift{
		ID:      "shift-1",
		EventID: "event-1",
		StartAt: time.Date(2024, 1, 8, 19, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2024, 1, 8, 22, 0, 0, 0, time.UTC),
	}
	volunteer := &models.Volunteer{ID: "v-1", Name: "Eva", Availability: []models.AvailabilityWindow{
		{VolunteerID: "v-1", Weekday: 1, StartTime: "18:00", EndTime: "23:00"},
	}}
	policy := &mockPolicyReader{policy: EnginePolicy{AllowUTCFallback: true}}
	svc := NewAssignmentService(&mockShiftReader{shift: shift}, &mockVolunteerFinder{volunteer: volunteer}, &mockSignupRepo{}, policy, nil, loc, zap.NewNop())

	_, err := svc.Assign(context.Background(), "shift-1", dto.AssignRequest{VolunteerID: "v-1"})
	require.NoError(t, err)
}

func TestAssignNotFound(t *testing.T) {
	t.Run("shift", func(t *testing.T) {
		svc := NewAssignmentService(&mockShiftReader{shiftErr: sql.ErrNoRows}, &mockVolunteerFinder{}, &mockSignupRepo{}, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())
		_, err := svc.Assign(context.Background(), "missing", dto.AssignRequest{VolunteerID: "v-1"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	})

	t.Run("volunteer", func(t *testing.T) {
		svc := NewAssignmentService(&mockShiftReader{shift: mondayShift()}, &mockVolunteerFinder{err: sql.ErrNoRows}, &mockSignupRepo{}, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())
		_, err := svc.Assign(context.Background(), "shift-1", dto.AssignRequest{VolunteerID: "missing"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	})
}

func TestUnassign(t *testing.T) {
	signups := &mockSignupRepo{}
	svc := NewAssignmentService(&mockShiftReader{shift: mondayShift()}, &mockVolunteerFinder{}, signups, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	require.NoError(t, svc.Unassign(context.Background(), "shift-1", "v-1"))
	assert.True(t, signups.deleted)

	signups.deleteErr = sql.ErrNoRows
	err := svc.Unassign(context.Background(), "shift-1", "v-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
