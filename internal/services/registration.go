package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventgate/internal/domain"
)

var registrationEmailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	emailService     domain.EmailService
	logger           *slog.Logger
}

// NewRegistrationService creates a RegistrationService. emailService may be
// nil, in which case no confirmation emails are sent.
func NewRegistrationService(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		emailService:     emailService,
		logger:           logger,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, name, email string, phone, userID *string) (*domain.Registration, bool, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" {
		return nil, false, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if !registrationEmailRegexp.MatchString(email) {
		return nil, false, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get event: %w", err)
	}
	// Registration closes once the event has started.
	if event.StartDate.Before(time.Now()) {
		return nil, false, fmt.Errorf("%w: registration is closed for this event", domain.ErrInvalidInput)
	}

	// Same email registering twice for one event returns the existing row.
	if existing, err := s.registrationRepo.GetByEventAndEmail(ctx, eventID, email); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get registration: %w", err)
	}

	now := time.Now()
	reg := domain.NewRegistration(eventID, name, email, now, now)
	reg.Phone = phone
	reg.UserID = userID
	reg.Code = uuid.NewString()
	if event.IsFree {
		reg.PaymentStatus = domain.PaymentStatusPaid
		reg.Status = domain.RegistrationStatusConfirmed
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, false, fmt.Errorf("create registration: %w", err)
	}

	if s.emailService != nil {
		data := &domain.RegistrationConfirmationEmailData{
			Email:            reg.Email,
			AttendeeName:     reg.Name,
			EventName:        event.Name,
			EventStartDate:   event.StartDate.Format("Mon, 2 Jan 2006 15:04"),
			RegistrationCode: reg.Code,
		}
		// A failed email must not fail the registration.
		if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "confirmation email failed", "registration_id", reg.ID, "err", err)
		}
	}
	return reg, true, nil
}

func (s *registrationService) GetRegistration(ctx context.Context, id string) (*domain.RegistrationWithEvent, error) {
	reg, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return s.withEvent(ctx, reg)
}

func (s *registrationService) GetRegistrationByCode(ctx context.Context, code string) (*domain.RegistrationWithEvent, error) {
	reg, err := s.registrationRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration by code: %w", err)
	}
	return s.withEvent(ctx, reg)
}

func (s *registrationService) withEvent(ctx context.Context, reg *domain.Registration) (*domain.RegistrationWithEvent, error) {
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event for registration: %w", err)
	}
	return &domain.RegistrationWithEvent{Registration: reg, Event: event}, nil
}

func (s *registrationService) ListEventRegistrations(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.Registration, int, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	regs, total, err := s.registrationRepo.ListByEventID(ctx, eventID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, total, nil
}

func (s *registrationService) ConfirmRegistration(ctx context.Context, id string) error {
	if err := s.registrationRepo.UpdateStatus(ctx, id, domain.RegistrationStatusConfirmed); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("confirm registration: %w", err)
	}
	return nil
}
