package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/availability"
	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
)

type volunteerRepository interface {
	List(ctx context.Context, filter models.VolunteerFilter) ([]models.Volunteer, error)
	FindByID(ctx context.Context, id string) (*models.Volunteer, error)
	Create(ctx context.Context, v *models.Volunteer) error
	Update(ctx context.Context, v *models.Volunteer) error
	Delete(ctx context.Context, id string) error
	ReplaceWindows(ctx context.Context, volunteerID string, windows []models.AvailabilityWindow) error
	AddBlackout(ctx context.Context, b *models.Blackout) error
	DeleteBlackout(ctx context.Context, volunteerID, blackoutID string) error
}

// VolunteerService owns volunteer records and their availability rules.
type VolunteerService struct {
	repo      volunteerRepository
	policy    policyReader
	validator *validator.Validate
	loc       *time.Location
	logger    *zap.Logger
}

func NewVolunteerService(repo volunteerRepository, policy policyReader, validate *validator.Validate, loc *time.Location, logger *zap.Logger) *VolunteerService {
	if validate == nil {
		validate = validator.New()
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VolunteerService{repo: repo, policy: policy, validator: validate, loc: loc, logger: logger}
}

// List returns volunteers matching the filter. The availableAt filter keeps
// only volunteers available for a default-length shift starting at that
// instant; it runs in memory since it needs the attached rules.
func (s *VolunteerService) List(ctx context.Context, filter models.VolunteerFilter) ([]models.Volunteer, error) {
	volunteers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list volunteers")
	}
	if filter.AvailableAt == nil {
		return volunteers, nil
	}

	policy, err := s.policy.EnginePolicy(ctx)
	if err != nil {
		return nil, err
	}
	start := *filter.AvailableAt
	end := start.Add(time.Duration(policy.DefaultShiftHours) * time.Hour)

	kept := volunteers[:0]
	for i := range volunteers {
		v := &volunteers[i]
		ok := availability.AvailableForRange(start, end, s.loc, v.Availability, v.Blackouts)
		if !ok && policy.AllowUTCFallback {
			ok = availability.AvailableForRangeUTC(start, end, v.Availability, v.Blackouts)
		}
		if ok {
			kept = append(kept, *v)
		}
	}
	return kept, nil
}

// Get returns one volunteer with windows and blackouts attached.
func (s *VolunteerService) Get(ctx context.Context, id string) (*models.Volunteer, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "volunteer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load volunteer")
	}
	return v, nil
}

// Create registers a volunteer. Blank skills are dropped and the rest
// deduplicated and sorted so the stored set is canonical regardless of
// input order.
func (s *VolunteerService) Create(ctx context.Context, req dto.CreateVolunteerRequest) (*models.Volunteer, error) {
	if req.Skills != nil {
		req.Skills = canonicalSkills(req.Skills)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid volunteer")
	}
	v := &models.Volunteer{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Skills:   canonicalSkills(req.Skills),
		Notes:    req.Notes,
		IsActive: true,
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create volunteer")
	}
	s.logger.Info("volunteer created", zap.String("volunteer_id", v.ID))
	return v, nil
}

// Update patches the given fields, leaving nil ones untouched.
func (s *VolunteerService) Update(ctx context.Context, id string, req dto.UpdateVolunteerRequest) (*models.Volunteer, error) {
	if req.Skills != nil {
		req.Skills = canonicalSkills(req.Skills)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid volunteer")
	}
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.Email != nil {
		v.Email = req.Email
	}
	if req.Phone != nil {
		v.Phone = req.Phone
	}
	if req.Skills != nil {
		v.Skills = canonicalSkills(req.Skills)
	}
	if req.Notes != nil {
		v.Notes = req.Notes
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update volunteer")
	}
	return v, nil
}

// Delete removes the volunteer; windows and blackouts cascade in the schema.
func (s *VolunteerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "volunteer not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete volunteer")
	}
	s.logger.Info("volunteer deleted", zap.String("volunteer_id", id))
	return nil
}

// ReplaceAvailability swaps the volunteer's full window list in one
// transaction. An empty list means default-available everywhere.
func (s *VolunteerService) ReplaceAvailability(ctx context.Context, volunteerID string, req dto.ReplaceAvailabilityRequest) error {
	if _, err := s.Get(ctx, volunteerID); err != nil {
		return err
	}
	windows := make([]models.AvailabilityWindow, 0, len(req.Windows))
	for _, w := range req.Windows {
		if err := validateClock(w.StartTime); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("window start %q: %v", w.StartTime, err))
		}
		if err := validateClock(w.EndTime); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("window end %q: %v", w.EndTime, err))
		}
		if w.Weekday < 0 || w.Weekday > 6 {
			return appErrors.Clone(appErrors.ErrValidation, "weekday must be 0 through 6")
		}
		windows = append(windows, models.AvailabilityWindow{
			VolunteerID: volunteerID,
			Weekday:     w.Weekday,
			StartTime:   w.StartTime,
			EndTime:     w.EndTime,
		})
	}
	if err := s.repo.ReplaceWindows(ctx, volunteerID, windows); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "replace availability")
	}
	return nil
}

// AddBlackout records a denial exception. Exactly one of date and weekday
// must be present.
func (s *VolunteerService) AddBlackout(ctx context.Context, volunteerID string, req dto.CreateBlackoutRequest) (*models.Blackout, error) {
	if _, err := s.Get(ctx, volunteerID); err != nil {
		return nil, err
	}
	if (req.Date == nil) == (req.Weekday == nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exactly one of date and weekday is required")
	}
	if err := validateClock(req.StartTime); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("blackout start %q: %v", req.StartTime, err))
	}
	if err := validateClock(req.EndTime); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("blackout end %q: %v", req.EndTime, err))
	}

	b := &models.Blackout{
		VolunteerID: volunteerID,
		Weekday:     req.Weekday,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Notes:       req.Notes,
	}
	if req.Date != nil {
		date, err := time.ParseInLocation("2006-01-02", *req.Date, s.loc)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		b.Date = &date
	}
	if req.Weekday != nil && (*req.Weekday < 0 || *req.Weekday > 6) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekday must be 0 through 6")
	}
	if err := s.repo.AddBlackout(ctx, b); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "add blackout")
	}
	return b, nil
}

// DeleteBlackout removes one blackout owned by the volunteer.
func (s *VolunteerService) DeleteBlackout(ctx context.Context, volunteerID, blackoutID string) error {
	if err := s.repo.DeleteBlackout(ctx, volunteerID, blackoutID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "blackout not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete blackout")
	}
	return nil
}

func canonicalSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// validateClock accepts HH:MM with 24-hour hours and minute precision.
func validateClock(value string) error {
	if len(value) != 5 || value[2] != ':' {
		return errors.New("must be HH:MM")
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return errors.New("must be HH:MM")
	}
	return nil
}
