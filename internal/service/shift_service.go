package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
)

type shiftRepository interface {
	FindByID(ctx context.Context, id string) (*models.Shift, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
	Update(ctx context.Context, shift *models.Shift) error
	Delete(ctx context.Context, id string) error
	ListRequirements(ctx context.Context, shiftID string) ([]models.Requirement, error)
	AddRequirement(ctx context.Context, shiftID, skill string, minCount int) (*models.Requirement, error)
	DeleteRequirement(ctx context.Context, id string) error
}

type shiftSignupReader interface {
	ListByShift(ctx context.Context, shiftID string) ([]models.Signup, error)
	CountConfirmedByRole(ctx context.Context, shiftID string) (map[string]int, error)
}

type shiftEventReader interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

// ShiftService owns shifts, their skill requirements, and the shift read
// model the calendar consumes.
type ShiftService struct {
	repo      shiftRepository
	signups   shiftSignupReader
	events    shiftEventReader
	validator *validator.Validate
	loc       *time.Location
	logger    *zap.Logger
}

func NewShiftService(repo shiftRepository, signups shiftSignupReader, events shiftEventReader, validate *validator.Validate, loc *time.Location, logger *zap.Logger) *ShiftService {
	if validate == nil {
		validate = validator.New()
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftService{repo: repo, signups: signups, events: events, validator: validate, loc: loc, logger: logger}
}

// Get returns the shift detail: bounds in both UTC and the configured
// timezone, requirements with confirmed fill counts, and current signups.
func (s *ShiftService) Get(ctx context.Context, id string) (*dto.ShiftDetail, error) {
	shift, err := s.findShift(ctx, id)
	if err != nil {
		return nil, err
	}

	requirements, err := s.repo.ListRequirements(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load requirements")
	}
	signups, err := s.signups.ListByShift(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list signups")
	}

	shift.Requirements = requirements
	shift.Signups = signups
	detail := &dto.ShiftDetail{
		Shift:      *shift,
		StartLocal: shift.StartAt.In(s.loc).Format("2006-01-02 15:04"),
		EndLocal:   shift.EndAt.In(s.loc).Format("2006-01-02 15:04"),
	}
	return detail, nil
}

// Requirements returns a shift's requirements with confirmed fill counts,
// matching signup roles against requirement skills.
func (s *ShiftService) Requirements(ctx context.Context, shiftID string) ([]dto.RequirementFill, error) {
	if _, err := s.findShift(ctx, shiftID); err != nil {
		return nil, err
	}
	requirements, err := s.repo.ListRequirements(ctx, shiftID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load requirements")
	}
	fills, err := s.signups.CountConfirmedByRole(ctx, shiftID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "count signups")
	}
	out := make([]dto.RequirementFill, 0, len(requirements))
	for _, r := range requirements {
		out = append(out, dto.RequirementFill{Requirement: r, Filled: fills[r.Skill]})
	}
	return out, nil
}

// ListByEvent returns an event's shifts ordered by start.
func (s *ShiftService) ListByEvent(ctx context.Context, eventID string) ([]models.Shift, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load event")
	}
	shifts, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list shifts")
	}
	return shifts, nil
}

// Create adds a shift under an event.
func (s *ShiftService) Create(ctx context.Context, eventID string, req dto.CreateShiftRequest) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift")
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load event")
	}
	if !req.EndAt.After(req.StartAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "shift end must be after start")
	}
	shift := &models.Shift{
		EventID:     eventID,
		StartAt:     req.StartAt.UTC(),
		EndAt:       req.EndAt.UTC(),
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create shift")
	}
	s.logger.Info("shift created", zap.String("shift_id", shift.ID), zap.String("event_id", eventID))
	return shift, nil
}

// Update patches shift bounds or description.
func (s *ShiftService) Update(ctx context.Context, id string, req dto.UpdateShiftRequest) (*models.Shift, error) {
	shift, err := s.findShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.StartAt != nil {
		shift.StartAt = req.StartAt.UTC()
	}
	if req.EndAt != nil {
		shift.EndAt = req.EndAt.UTC()
	}
	if req.Description != nil {
		shift.Description = req.Description
	}
	if !shift.EndAt.After(shift.StartAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "shift end must be after start")
	}
	if err := s.repo.Update(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update shift")
	}
	return shift, nil
}

// Delete removes the shift; requirements and signups cascade in the schema.
func (s *ShiftService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete shift")
	}
	s.logger.Info("shift deleted", zap.String("shift_id", id))
	return nil
}

// Clone copies a shift under the same event, including all requirements
// but no signups. Bounds default to the base shift's unless overridden.
func (s *ShiftService) Clone(ctx context.Context, id string, req dto.UpdateShiftRequest) (*models.Shift, error) {
	base, err := s.findShift(ctx, id)
	if err != nil {
		return nil, err
	}
	clone := &models.Shift{
		EventID:     base.EventID,
		StartAt:     base.StartAt,
		EndAt:       base.EndAt,
		Description: base.Description,
	}
	if req.StartAt != nil {
		clone.StartAt = req.StartAt.UTC()
	}
	if req.EndAt != nil {
		clone.EndAt = req.EndAt.UTC()
	}
	if req.Description != nil {
		clone.Description = req.Description
	}
	if !clone.EndAt.After(clone.StartAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "shift end must be after start")
	}
	if err := s.repo.Create(ctx, clone); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create shift")
	}

	requirements, err := s.repo.ListRequirements(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load requirements")
	}
	for _, r := range requirements {
		if _, err := s.repo.AddRequirement(ctx, clone.ID, r.Skill, r.MinCount); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "copy requirement")
		}
	}
	s.logger.Info("shift cloned", zap.String("base_id", id), zap.String("clone_id", clone.ID))
	return clone, nil
}

// AddRequirement attaches a skill need. Duplicate skills bump the stored
// minimum by one instead of adding a row.
func (s *ShiftService) AddRequirement(ctx context.Context, shiftID string, req dto.AddRequirementRequest) (*models.Requirement, error) {
	if _, err := s.findShift(ctx, shiftID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requirement")
	}
	requirement, err := s.repo.AddRequirement(ctx, shiftID, req.Skill, req.MinCount)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "add requirement")
	}
	return requirement, nil
}

// DeleteRequirement removes one requirement row.
func (s *ShiftService) DeleteRequirement(ctx context.Context, id string) error {
	if err := s.repo.DeleteRequirement(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "requirement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete requirement")
	}
	return nil
}

func (s *ShiftService) findShift(ctx context.Context, id string) (*models.Shift, error) {
	shift, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load shift")
	}
	return shift, nil
}
