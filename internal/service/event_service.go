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

type eventRepository interface {
	List(ctx context.Context, from, to *time.Time) ([]models.Event, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, e *models.Event) error
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id string) error
}

// EventService owns event records.
type EventService struct {
	repo      eventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, validator: validate, logger: logger}
}

// List returns events, optionally bounded to those overlapping [from, to).
func (s *EventService) List(ctx context.Context, from, to *time.Time) ([]models.Event, error) {
	events, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list events")
	}
	return events, nil
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load event")
	}
	return e, nil
}

// Create registers an event.
func (s *EventService) Create(ctx context.Context, req dto.CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event")
	}
	if !req.EndAt.After(req.StartAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event end must be after start")
	}
	e := &models.Event{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Location:  req.Location,
		StartAt:   req.StartAt.UTC(),
		EndAt:     req.EndAt.UTC(),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create event")
	}
	s.logger.Info("event created", zap.String("event_id", e.ID))
	return e, nil
}

// Update patches event fields.
func (s *EventService) Update(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.Event, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Location != nil {
		e.Location = req.Location
	}
	if req.StartAt != nil {
		e.StartAt = req.StartAt.UTC()
	}
	if req.EndAt != nil {
		e.EndAt = req.EndAt.UTC()
	}
	if !e.EndAt.After(e.StartAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event end must be after start")
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update event")
	}
	return e, nil
}

// Delete removes the event; shifts cascade in the schema.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete event")
	}
	s.logger.Info("event deleted", zap.String("event_id", id))
	return nil
}
