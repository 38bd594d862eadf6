package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"eventgate/internal/domain"
)

type mockRegistrationRepo struct {
	byEventAndEmail map[string]*domain.Registration
	created         []*domain.Registration
	createErr       error
}

func (m *mockRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	if m.createErr != nil {
		return m.createErr
	}
	reg.ID = "reg-new"
	m.created = append(m.created, reg)
	return nil
}

func (m *mockRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	return nil, domain.ErrNotFound
}

func (m *mockRegistrationRepo) GetByCode(ctx context.Context, code string) (*domain.Registration, error) {
	return nil, domain.ErrNotFound
}

func (m *mockRegistrationRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Registration, error) {
	if reg, ok := m.byEventAndEmail[eventID+":"+email]; ok {
		return reg, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockRegistrationRepo) ListByEventID(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.Registration, int, error) {
	return nil, 0, nil
}

func (m *mockRegistrationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return nil
}

type mockEmailService struct {
	sent []*domain.RegistrationConfirmationEmailData
	err  error
}

func (m *mockEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, data)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func futureEventRepo() *stubEventRepo {
	return &stubEventRepo{
		events: map[string]*domain.Event{
			"ev-free": {
				ID: "ev-free", Name: "Community Day", IsActive: true, IsFree: true,
				StartDate: time.Now().Add(48 * time.Hour),
			},
			"ev-paid": {
				ID: "ev-paid", Name: "Expo", IsActive: true,
				StartDate: time.Now().Add(48 * time.Hour),
			},
			"ev-past": {
				ID: "ev-past", Name: "Old Conf",
				StartDate: time.Now().Add(-time.Hour),
			},
		},
	}
}

func TestRegistrationService_Register_FreeEvent(t *testing.T) {
	regRepo := &mockRegistrationRepo{}
	emails := &mockEmailService{}
	svc := NewRegistrationService(regRepo, futureEventRepo(), emails, testLogger())

	reg, created, err := svc.Register(context.Background(), "ev-free", "Ada Lovelace", "Ada@Example.com", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("expected a new registration")
	}
	if reg.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", reg.Email)
	}
	if reg.Code == "" {
		t.Fatalf("expected a registration code")
	}
	if reg.PaymentStatus != domain.PaymentStatusPaid || reg.Status != domain.RegistrationStatusConfirmed {
		t.Fatalf("free event should register as paid+confirmed, got %s/%s", reg.PaymentStatus, reg.Status)
	}
	if len(emails.sent) != 1 {
		t.Fatalf("expected 1 confirmation email, got %d", len(emails.sent))
	}
	if emails.sent[0].EventName != "Community Day" {
		t.Fatalf("unexpected email event name %q", emails.sent[0].EventName)
	}
}

func TestRegistrationService_Register_PaidEventIsPendingUnpaid(t *testing.T) {
	regRepo := &mockRegistrationRepo{}
	svc := NewRegistrationService(regRepo, futureEventRepo(), nil, testLogger())

	reg, _, err := svc.Register(context.Background(), "ev-paid", "Ada", "ada@example.com", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.PaymentStatus != domain.PaymentStatusUnpaid || reg.Status != domain.RegistrationStatusPending {
		t.Fatalf("paid event should register as unpaid+pending, got %s/%s", reg.PaymentStatus, reg.Status)
	}
}

func TestRegistrationService_Register_Idempotent(t *testing.T) {
	existing := &domain.Registration{ID: "reg-1", EventID: "ev-free", Email: "ada@example.com"}
	regRepo := &mockRegistrationRepo{
		byEventAndEmail: map[string]*domain.Registration{"ev-free:ada@example.com": existing},
	}
	emails := &mockEmailService{}
	svc := NewRegistrationService(regRepo, futureEventRepo(), emails, testLogger())

	reg, created, err := svc.Register(context.Background(), "ev-free", "Ada", "ada@example.com", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("expected existing registration, not a new one")
	}
	if reg.ID != "reg-1" {
		t.Fatalf("expected existing registration returned")
	}
	if len(emails.sent) != 0 {
		t.Fatalf("no email should be sent for an existing registration")
	}
}

func TestRegistrationService_Register_ClosedForPastEvent(t *testing.T) {
	svc := NewRegistrationService(&mockRegistrationRepo{}, futureEventRepo(), nil, testLogger())

	_, _, err := svc.Register(context.Background(), "ev-past", "Ada", "ada@example.com", nil, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for past event, got %v", err)
	}
}

func TestRegistrationService_Register_UnknownEvent(t *testing.T) {
	svc := NewRegistrationService(&mockRegistrationRepo{}, futureEventRepo(), nil, testLogger())

	_, _, err := svc.Register(context.Background(), "ev-missing", "Ada", "ada@example.com", nil, nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistrationService_Register_EmailFailureDoesNotFailRegistration(t *testing.T) {
	regRepo := &mockRegistrationRepo{}
	emails := &mockEmailService{err: errors.New("ses down")}
	svc := NewRegistrationService(regRepo, futureEventRepo(), emails, testLogger())

	_, created, err := svc.Register(context.Background(), "ev-free", "Ada", "ada@example.com", nil, nil)
	if err != nil {
		t.Fatalf("registration should survive a failed email, got %v", err)
	}
	if !created {
		t.Fatalf("expected a new registration")
	}
}

func TestRegistrationService_Register_InvalidInput(t *testing.T) {
	svc := NewRegistrationService(&mockRegistrationRepo{}, futureEventRepo(), nil, testLogger())

	if _, _, err := svc.Register(context.Background(), "ev-free", "", "ada@example.com", nil, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, _, err := svc.Register(context.Background(), "ev-free", "Ada", "not-an-email", nil, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}
}
