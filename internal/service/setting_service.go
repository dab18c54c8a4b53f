package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/hearthworks/volunteer-api/internal/dto"
	"github.com/hearthworks/volunteer-api/internal/models"
	appErrors "github.com/hearthworks/volunteer-api/pkg/errors"
)

type settingRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	ListByKeys(ctx context.Context, keys []string) ([]models.Setting, error)
	BulkUpsert(ctx context.Context, settings []models.Setting) error
}

var allowedSettingKeys = map[string]struct{}{
	models.SettingDefaultShiftHours:      {},
	models.SettingRequireSkills:          {},
	models.SettingAllowUTCLegacyFallback: {},
}

// EnginePolicy is the per-request configuration snapshot the eligibility
// engine runs under. Loaded fresh on every call so admin toggles apply to
// the next request without a restart.
type EnginePolicy struct {
	RequireSkills     bool
	AllowUTCFallback  bool
	DefaultShiftHours int
}

// SettingService manages the persisted settings allow-list.
type SettingService struct {
	repo              settingRepository
	logger            *zap.Logger
	defaultShiftHours int
}

// NewSettingService constructs a SettingService. fallbackShiftHours is used
// when the persisted value is absent or malformed.
func NewSettingService(repo settingRepository, logger *zap.Logger, fallbackShiftHours int) *SettingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallbackShiftHours <= 0 {
		fallbackShiftHours = 4
	}
	return &SettingService{repo: repo, logger: logger, defaultShiftHours: fallbackShiftHours}
}

// GetAll returns every persisted setting as a flat key/value map.
func (s *SettingService) GetAll(ctx context.Context) (*dto.SettingsResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load settings")
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return &dto.SettingsResponse{Settings: settings}, nil
}

// Update upserts allow-listed keys; unknown keys or unparseable values are
// rejected wholesale so a typo never half-applies.
func (s *SettingService) Update(ctx context.Context, req dto.UpdateSettingsRequest) error {
	if len(req) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no settings provided")
	}
	settings := make([]models.Setting, 0, len(req))
	for key, value := range req {
		if _, ok := allowedSettingKeys[key]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown setting key %q", key))
		}
		switch key {
		case models.SettingRequireSkills, models.SettingAllowUTCLegacyFallback:
			if _, err := strconv.ParseBool(value); err != nil {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("setting %q must be a boolean", key))
			}
		case models.SettingDefaultShiftHours:
			hours, err := strconv.Atoi(value)
			if err != nil || hours <= 0 || hours > 24 {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("setting %q must be an hour count between 1 and 24", key))
			}
		}
		settings = append(settings, models.Setting{Key: key, Value: value})
	}
	if err := s.repo.BulkUpsert(ctx, settings); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "save settings")
	}
	return nil
}

// EnginePolicy reads the eligibility engine's flags. Missing rows fall back
// to defaults (both booleans default off).
func (s *SettingService) EnginePolicy(ctx context.Context) (EnginePolicy, error) {
	policy := EnginePolicy{DefaultShiftHours: s.defaultShiftHours}
	rows, err := s.repo.ListByKeys(ctx, []string{
		models.SettingRequireSkills,
		models.SettingAllowUTCLegacyFallback,
		models.SettingDefaultShiftHours,
	})
	if err != nil {
		return policy, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load engine policy")
	}
	for _, row := range rows {
		switch row.Key {
		case models.SettingRequireSkills:
			if v, err := strconv.ParseBool(row.Value); err == nil {
				policy.RequireSkills = v
			}
		case models.SettingAllowUTCLegacyFallback:
			if v, err := strconv.ParseBool(row.Value); err == nil {
				policy.AllowUTCFallback = v
			}
		case models.SettingDefaultShiftHours:
			if v, err := strconv.Atoi(row.Value); err == nil && v > 0 {
				policy.DefaultShiftHours = v
			}
		}
	}
	return policy, nil
}
