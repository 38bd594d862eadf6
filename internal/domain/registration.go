package domain

import (
	"context"
	"time"
)

// Registration statuses.
const (
	RegistrationStatusPending   = "pending"
	RegistrationStatusConfirmed = "confirmed"
)

// Payment statuses.
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Registration represents one attendee's enrollment in one event. The attendee
// identity is inline (name/email/phone) with an optional linked user account.
// Code is the opaque value embedded in the attendee's QR badge.
// swagger:model Registration
type Registration struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	UserID        *string   `json:"user_id,omitempty"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         *string   `json:"phone,omitempty"`
	Code          string    `json:"code"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewRegistration creates a new Registration. ID is typically set by the repository on create.
func NewRegistration(eventID, name, email string, createdAt, updatedAt time.Time) *Registration {
	return &Registration{
		EventID:       eventID,
		Name:          name,
		Email:         email,
		Status:        RegistrationStatusPending,
		PaymentStatus: PaymentStatusUnpaid,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByCode(ctx context.Context, code string) (*Registration, error)
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string, p PaginationParams) ([]*Registration, int, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationService defines attendee-registration operations.
type RegistrationService interface {
	// Register enrolls an attendee in an event. Returns (reg, created, err):
	// created is false when the same email is already registered for the event.
	Register(ctx context.Context, eventID, name, email string, phone, userID *string) (*Registration, bool, error)
	GetRegistration(ctx context.Context, id string) (*RegistrationWithEvent, error)
	GetRegistrationByCode(ctx context.Context, code string) (*RegistrationWithEvent, error)
	ListEventRegistrations(ctx context.Context, eventID string, p PaginationParams) ([]*Registration, int, error)
	ConfirmRegistration(ctx context.Context, id string) error
}
