package domain

import (
	"context"
	"time"
)

// Event represents an event that attendees register for and check in to.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Venue       *string   `json:"venue,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IsActive    bool      `json:"is_active"`
	IsFree      bool      `json:"is_free"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(name string, startDate, endDate time.Time, createdBy string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
		CreatedBy: createdBy,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// EventUpdate carries the optional fields of a partial event update.
// Nil fields are left unchanged.
type EventUpdate struct {
	Name        *string
	Description *string
	Venue       *string
	StartDate   *time.Time
	EndDate     *time.Time
	IsFree      *bool
}

// EventRepository defines storage operations for events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByCreator(ctx context.Context, createdBy string) ([]*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListMyEvents(ctx context.Context, createdBy string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, actorID string, upd EventUpdate) (*Event, error)
	SetEventActive(ctx context.Context, eventID, actorID string, active bool) error
	DeleteEvent(ctx context.Context, eventID, actorID string) error
}
