package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/availability"
	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
)

type assignmentVolunteerReader interface {
	FindByID(ctx context.Context, id string) (*models.Volunteer, error)
}

type assignmentSignupRepository interface {
	Upsert(ctx context.Context, signup *models.Signup) error
	FindConfirmedOverlapping(ctx context.Context, volunteerID string, start, end time.Time, excludeShiftID string) ([]models.SignupConflict, error)
	Delete(ctx context.Context, shiftID, volunteerID string) error
}

// AssignmentService performs the assign transaction: re-validate the
// candidate against the same rules the eligibility listing applies, then
// upsert the signup as confirmed. The validation and the write are not
// atomic; the unique (volunteer, shift) constraint is the only hard
// guarantee, so two concurrent assigns to overlapping shifts can both
// land. Force skips validation entirely.
type AssignmentService struct {
	shifts     eligibilityShiftReader
	volunteers assignmentVolunteerReader
	signups    assignmentSignupRepository
	policy     policyReader
	validator  *validator.Validate
	loc        *time.Location
	logger     *zap.Logger
}

func NewAssignmentService(
	shifts eligibilityShiftReader,
	volunteers assignmentVolunteerReader,
	signups assignmentSignupRepository,
	policy policyReader,
	validate *validator.Validate,
	loc *time.Location,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		shifts:     shifts,
		volunteers: volunteers,
		signups:    signups,
		policy:     policy,
		validator:  validate,
		loc:        loc,
		logger:     logger,
	}
}

// Assign signs the volunteer up for the shift. Re-assigning an already
// signed-up volunteer updates the role and re-confirms instead of failing.
func (s *AssignmentService) Assign(ctx context.Context, shiftID string, req dto.AssignRequest) (*models.Signup, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment")
	}
	shift, err := s.shifts.FindByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load shift")
	}

	volunteer, err := s.volunteers.FindByID(ctx, req.VolunteerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "volunteer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load volunteer")
	}

	if !req.Force {
		if err := s.validate(ctx, shift, volunteer); err != nil {
			return nil, err
		}
	}

	signup := &models.Signup{
		ShiftID:     shift.ID,
		VolunteerID: volunteer.ID,
		Role:        req.Role,
		Status:      models.SignupStatusConfirmed,
	}
	if err := s.signups.Upsert(ctx, signup); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "save signup")
	}

	s.logger.Info("volunteer assigned",
		zap.String("shift_id", shift.ID),
		zap.String("volunteer_id", volunteer.ID),
		zap.Bool("forced", req.Force))
	return signup, nil
}

// Unassign removes a volunteer's signup from a shift.
func (s *AssignmentService) Unassign(ctx context.Context, shiftID, volunteerID string) error {
	if err := s.signups.Delete(ctx, shiftID, volunteerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "signup not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete signup")
	}
	s.logger.Info("volunteer unassigned",
		zap.String("shift_id", shiftID),
		zap.String("volunteer_id", volunteerID))
	return nil
}

func (s *AssignmentService) validate(ctx context.Context, shift *models.Shift, volunteer *models.Volunteer) error {
	policy, err := s.policy.EnginePolicy(ctx)
	if err != nil {
		return err
	}

	available := availability.AvailableForRange(shift.StartAt, shift.EndAt, s.loc, volunteer.Availability, volunteer.Blackouts)
	if !available && policy.AllowUTCFallback {
		available = availability.AvailableForRangeUTC(shift.StartAt, shift.EndAt, volunteer.Availability, volunteer.Blackouts)
	}
	if !available {
		return appErrors.Clone(appErrors.ErrNotAvailable, "volunteer is not available for this shift")
	}

	conflicts, err := s.signups.FindConfirmedOverlapping(ctx, volunteer.ID, shift.StartAt, shift.EndAt, shift.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "scan signups")
	}
	conflicts = models.OverlappingConflicts(conflicts, shift.StartAt, shift.EndAt)
	if len(conflicts) > 0 {
		c := conflicts[0]
		detail := &models.AssignmentConflictError{
			Type:    "DOUBLE_BOOKED",
			Message: fmt.Sprintf("volunteer already confirmed for %q (%s to %s)", c.EventTitle, c.StartAt.Format(time.RFC3339), c.EndAt.Format(time.RFC3339)),
			Conflict: models.SignupConflict{
				SignupID:   c.SignupID,
				ShiftID:    c.ShiftID,
				EventTitle: c.EventTitle,
				StartAt:    c.StartAt,
				EndAt:      c.EndAt,
			},
		}
		return appErrors.Wrap(detail, appErrors.ErrDoubleBooked.Code, appErrors.ErrDoubleBooked.Status, "overlapping confirmed shift").WithDetails(detail)
	}
	return nil
}
