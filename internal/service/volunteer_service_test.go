package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
)

type mockVolunteerRepo struct {
	volunteers []models.Volunteer
	found      *models.Volunteer
	findErr    error
	created    *models.Volunteer
	updated    *models.Volunteer
	windows    []models.AvailabilityWindow
	blackout   *models.Blackout
}

func (m *mockVolunteerRepo) List(_ context.Context, _ models.VolunteerFilter) ([]models.Volunteer, error) {
	return m.volunteers, nil
}

func (m *mockVolunteerRepo) FindByID(_ context.Context, _ string) (*models.Volunteer, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.found, nil
}

func (m *mockVolunteerRepo) Create(_ context.Context, v *models.Volunteer) error {
	v.ID = "v-new"
	m.created = v
	return nil
}

func (m *mockVolunteerRepo) Update(_ context.Context, v *models.Volunteer) error {
	m.updated = v
	return nil
}

func (m *mockVolunteerRepo) Delete(_ context.Context, _ string) error {
	return nil
}

func (m *mockVolunteerRepo) ReplaceWindows(_ context.Context, _ string, windows []models.AvailabilityWindow) error {
	m.windows = windows
	return nil
}

func (m *mockVolunteerRepo) AddBlackout(_ context.Context, b *models.Blackout) error {
	b.ID = "b-new"
	m.blackout = b
	return nil
}

func (m *mockVolunteerRepo) DeleteBlackout(_ context.Context, _, _ string) error {
	return nil
}

func TestVolunteerCreateCanonicalisesSkills(t *testing.T) {
	repo := &mockVolunteerRepo{}
	svc := NewVolunteerService(repo, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	v, err := svc.Create(context.Background(), dto.CreateVolunteerRequest{
		Name:   "Ana",
		Skills: []string{"paint", "carpentry", "paint", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"carpentry", "paint"}, []string(v.Skills))
	assert.True(t, v.IsActive)
}

func TestVolunteerListAvailableAtFilter(t *testing.T) {
	// Monday 2024-01-08 at 09:00 with a 4 hour default shift length:
	// only the Monday-morning window covers 09:00 through 13:00.
	at := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	repo := &mockVolunteerRepo{volunteers: []models.Volunteer{
		{ID: "v-morning", Availability: []models.AvailabilityWindow{
			{Weekday: 1, StartTime: "08:00", EndTime: "17:00"},
		}},
		{ID: "v-evening", Availability: []models.AvailabilityWindow{
			{Weekday: 1, StartTime: "18:00", EndTime: "22:00"},
		}},
	}}
	svc := NewVolunteerService(repo, &mockPolicyReader{policy: EnginePolicy{DefaultShiftHours: 4}}, nil, time.UTC, zap.NewNop())

	got, err := svc.List(context.Background(), models.VolunteerFilter{AvailableAt: &at})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v-morning", got[0].ID)
}

func TestVolunteerAddBlackoutScopes(t *testing.T) {
	repo := &mockVolunteerRepo{found: &models.Volunteer{ID: "v-1"}}
	svc := NewVolunteerService(repo, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	t.Run("date scoped", func(t *testing.T) {
		date := "2024-01-08"
		b, err := svc.AddBlackout(context.Background(), "v-1", dto.CreateBlackoutRequest{
			Date: &date, StartTime: "08:00", EndTime: "12:00",
		})
		require.NoError(t, err)
		require.NotNil(t, b.Date)
		assert.True(t, b.IsDateScoped())
	})

	t.Run("weekday scoped", func(t *testing.T) {
		weekday := 3
		b, err := svc.AddBlackout(context.Background(), "v-1", dto.CreateBlackoutRequest{
			Weekday: &weekday, StartTime: "08:00", EndTime: "12:00",
		})
		require.NoError(t, err)
		assert.True(t, b.IsWeekdayScoped())
	})

	t.Run("both scopes rejected", func(t *testing.T) {
		date := "2024-01-08"
		weekday := 3
		_, err := svc.AddBlackout(context.Background(), "v-1", dto.CreateBlackoutRequest{
			Date: &date, Weekday: &weekday, StartTime: "08:00", EndTime: "12:00",
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	})

	t.Run("neither scope rejected", func(t *testing.T) {
		_, err := svc.AddBlackout(context.Background(), "v-1", dto.CreateBlackoutRequest{
			StartTime: "08:00", EndTime: "12:00",
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	})

	t.Run("malformed clock rejected", func(t *testing.T) {
		weekday := 3
		_, err := svc.AddBlackout(context.Background(), "v-1", dto.CreateBlackoutRequest{
			Weekday: &weekday, StartTime: "8am", EndTime: "12:00",
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	})
}

func TestVolunteerReplaceAvailability(t *testing.T) {
	repo := &mockVolunteerRepo{found: &models.Volunteer{ID: "v-1"}}
	svc := NewVolunteerService(repo, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	err := svc.ReplaceAvailability(context.Background(), "v-1", dto.ReplaceAvailabilityRequest{
		Windows: []dto.AvailabilityWindowRequest{
			{Weekday: 1, StartTime: "08:00", EndTime: "17:00"},
			{Weekday: 2, StartTime: "22:00", EndTime: "02:00"},
		},
	})
	require.NoError(t, err)
	require.Len(t, repo.windows, 2)
	assert.Equal(t, "v-1", repo.windows[0].VolunteerID)

	err = svc.ReplaceAvailability(context.Background(), "v-1", dto.ReplaceAvailabilityRequest{
		Windows: []dto.AvailabilityWindowRequest{{Weekday: 9, StartTime: "08:00", EndTime: "17:00"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestVolunteerGetNotFound(t *testing.T) {
	repo := &mockVolunteerRepo{findErr: sql.ErrNoRows}
	svc := NewVolunteerService(repo, &mockPolicyReader{}, nil, time.UTC, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
