package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/availability"
	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
)

type eligibilityShiftReader interface {
	FindByID(ctx context.Context, id string) (*models.Shift, error)
	ListRequirements(ctx context.Context, shiftID string) ([]models.Requirement, error)
}

type eligibilityVolunteerReader interface {
	ListActive(ctx context.Context) ([]models.Volunteer, error)
}

type eligibilityConflictReader interface {
	ConflictsByVolunteer(ctx context.Context, start, end time.Time, excludeShiftID string) (map[string][]models.SignupConflict, error)
}

type policyReader interface {
	EnginePolicy(ctx context.Context) (EnginePolicy, error)
}

// EligibilityService answers "who can take this shift". Checks run in a
// fixed order per candidate: double booking, then availability, then
// skills. Outside debug mode the first failure short-circuits.
type EligibilityService struct {
	shifts     eligibilityShiftReader
	volunteers eligibilityVolunteerReader
	signups    eligibilityConflictReader
	policy     policyReader
	metrics    *MetricsService
	loc        *time.Location
	logger     *zap.Logger
}

func NewEligibilityService(
	shifts eligibilityShiftReader,
	volunteers eligibilityVolunteerReader,
	signups eligibilityConflictReader,
	policy policyReader,
	metrics *MetricsService,
	loc *time.Location,
	logger *zap.Logger,
) *EligibilityService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{
		shifts:     shifts,
		volunteers: volunteers,
		signups:    signups,
		policy:     policy,
		metrics:    metrics,
		loc:        loc,
		logger:     logger,
	}
}

// ListEligible evaluates every active volunteer against the shift. The
// requireSkills query override, when present, wins over the persisted
// setting for this call only.
func (s *EligibilityService) ListEligible(ctx context.Context, q dto.EligibilityQuery) (*dto.EligibilityResult, error) {
	started := time.Now()
	shift, err := s.shifts.FindByID(ctx, q.ShiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load shift")
	}

	policy, err := s.policy.EnginePolicy(ctx)
	if err != nil {
		return nil, err
	}
	requireSkills := policy.RequireSkills
	if q.RequireSkills != nil {
		requireSkills = *q.RequireSkills
	}

	requirements, err := s.shifts.ListRequirements(ctx, q.ShiftID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load requirements")
	}
	requiredSkills := models.RequiredSkills(requirements)

	volunteers, err := s.volunteers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list volunteers")
	}

	conflicts, err := s.signups.ConflictsByVolunteer(ctx, shift.StartAt, shift.EndAt, shift.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "scan signups")
	}

	result := &dto.EligibilityResult{
		ShiftID:       shift.ID,
		RequireSkills: requireSkills,
		Eligible:      make([]dto.EligibleVolunteer, 0, len(volunteers)),
	}

	for i := range volunteers {
		v := &volunteers[i]
		excluded := s.evaluate(v, shift, conflicts[v.ID], requiredSkills, requireSkills, policy.AllowUTCFallback, q.Debug)
		if excluded == nil {
			result.Eligible = append(result.Eligible, dto.EligibleVolunteer{
				ID:     v.ID,
				Name:   v.Name,
				Skills: v.Skills,
			})
			continue
		}
		if q.Debug {
			result.Excluded = append(result.Excluded, *excluded)
		}
	}

	s.metrics.ObserveEvaluation(len(volunteers), time.Since(started))
	s.logger.Debug("eligibility evaluated",
		zap.String("shift_id", shift.ID),
		zap.Int("eligible", len(result.Eligible)),
		zap.Int("excluded", len(volunteers)-len(result.Eligible)),
		zap.Bool("require_skills", requireSkills))
	return result, nil
}

// evaluate returns nil when the volunteer passes every check, otherwise
// the exclusion record. In debug mode all failing checks are collected;
// otherwise evaluation stops at the first failure.
func (s *EligibilityService) evaluate(
	v *models.Volunteer,
	shift *models.Shift,
	conflicts []models.SignupConflict,
	requiredSkills []string,
	requireSkills bool,
	allowUTCFallback bool,
	debug bool,
) *dto.ExcludedVolunteer {
	excluded := &dto.ExcludedVolunteer{ID: v.ID, Name: v.Name, Skills: v.Skills}

	conflicts = models.OverlappingConflicts(conflicts, shift.StartAt, shift.EndAt)
	if len(conflicts) > 0 {
		excluded.Reasons = append(excluded.Reasons, dto.ReasonDoubleBooked)
		c := conflicts[0]
		excluded.Conflict = &dto.ConflictDetail{
			ShiftID:    c.ShiftID,
			EventTitle: c.EventTitle,
			StartAt:    c.StartAt,
			EndAt:      c.EndAt,
		}
		if !debug {
			return excluded
		}
	}

	if debug {
		res := availability.DebugForRange(shift.StartAt, shift.EndAt, s.loc, v.Availability, v.Blackouts)
		if !res.OK && allowUTCFallback &&
			availability.AvailableForRangeUTC(shift.StartAt, shift.EndAt, v.Availability, v.Blackouts) {
			// Admitted by the legacy UTC interpretation, so the local-time
			// exclusion reasons no longer apply.
			res.OK = true
			res.Reasons = []string{}
		}
		excluded.AvailabilityContext = &res
		if !res.OK {
			excluded.Reasons = append(excluded.Reasons, res.Reasons...)
		}
	} else {
		ok := availability.AvailableForRange(shift.StartAt, shift.EndAt, s.loc, v.Availability, v.Blackouts)
		if !ok && allowUTCFallback {
			ok = availability.AvailableForRangeUTC(shift.StartAt, shift.EndAt, v.Availability, v.Blackouts)
		}
		if !ok {
			excluded.Reasons = append(excluded.Reasons, dto.ReasonOutsideAvailability)
			return excluded
		}
	}

	if requireSkills && len(requiredSkills) > 0 {
		hasAny := false
		for _, skill := range requiredSkills {
			if v.HasSkill(skill) {
				hasAny = true
				break
			}
		}
		if !hasAny {
			excluded.Reasons = append(excluded.Reasons, dto.ReasonMissingRequiredSkill)
			if debug {
				excluded.RequiredSkills = requiredSkills
			}
		}
	}

	if len(excluded.Reasons) == 0 {
		return nil
	}
	return excluded
}
