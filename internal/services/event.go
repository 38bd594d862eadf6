package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventgate/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repository.
func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.CreatedBy == "" {
		return fmt.Errorf("%w: event creator is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(event.Name) == "" {
		return fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}
	if event.EndDate.Before(event.StartDate) {
		return fmt.Errorf("%w: end date before start date", domain.ErrInvalidInput)
	}

	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, createdBy string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByCreator(ctx, createdBy)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// requireOwnership loads the event and checks the actor created it.
func (s *eventService) requireOwnership(ctx context.Context, eventID, actorID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != actorID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, actorID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.requireOwnership(ctx, eventID, actorID); err != nil {
		return nil, err
	}
	if upd.StartDate != nil && upd.EndDate != nil && upd.EndDate.Before(*upd.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) SetEventActive(ctx context.Context, eventID, actorID string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.requireOwnership(ctx, eventID, actorID); err != nil {
		return err
	}
	if err := s.eventRepo.SetActive(ctx, eventID, active); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("set event active: %w", err)
	}
	return nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.requireOwnership(ctx, eventID, actorID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
