package domain

import (
	"context"
	"time"
)

// ScanAction is the resolved direction of a recorded attendance action.
type ScanAction string

const (
	ActionCheckin  ScanAction = "checkin"
	ActionCheckout ScanAction = "checkout"
)

// Checkin is one recorded entry (and optionally exit) event for a registration.
// A row with a nil CheckOutTime is an open session: the attendee is inside.
// Rows are retained indefinitely as the audit trail.
// swagger:model Checkin
type Checkin struct {
	ID             string     `json:"id"`
	RegistrationID string     `json:"registration_id"`
	ActingUserID   string     `json:"acting_user_id"`
	CheckInTime    time.Time  `json:"check_in_time"`
	CheckOutTime   *time.Time `json:"check_out_time,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// Open reports whether the check-in has no check-out time yet.
func (c *Checkin) Open() bool {
	return c != nil && c.CheckOutTime == nil
}

// VisitorLog is a derived, immutable record of one completed entry/exit interval.
// It is created exactly once, when a checkout closes an open Checkin, and never
// mutated afterward. DurationMinutes is check-out minus check-in, floored to
// whole minutes, never negative.
// swagger:model VisitorLog
type VisitorLog struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	RegistrationID  string    `json:"registration_id"`
	CheckInTime     time.Time `json:"check_in_time"`
	CheckOutTime    time.Time `json:"check_out_time"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

// ScanOptions carries the optional parts of a scan request. A nil Action means
// auto-detect (the unattended QR path); a non-nil Action is the manual path,
// where the operator's stated action is authoritative.
type ScanOptions struct {
	Action *ScanAction
	Note   *string
}

// ScanResult is the structured outcome of one recorded attendance action.
type ScanResult struct {
	Action       ScanAction  `json:"action"`
	Checkin      *Checkin    `json:"checkin"`
	VisitorLog   *VisitorLog `json:"visitor_log,omitempty"`
	AttendeeName string      `json:"attendee_name"`
}

// AttendanceTx exposes the writes available inside one attendance transaction.
// All methods operate within the transaction opened by WithRegistrationLock;
// nothing is visible to readers until the transaction commits.
type AttendanceTx interface {
	// LatestCheckin returns the most recent check-in for the registration by
	// check-in time descending, or ErrNotFound if none exists.
	LatestCheckin(ctx context.Context, registrationID string) (*Checkin, error)
	// GetCheckin returns the check-in with the given id, or ErrNotFound.
	GetCheckin(ctx context.Context, checkinID string) (*Checkin, error)
	InsertCheckin(ctx context.Context, c *Checkin) error
	// CloseCheckin sets the check-out time on an open check-in. It returns
	// ErrAlreadyClosed if the row already has a check-out time.
	CloseCheckin(ctx context.Context, checkinID string, at time.Time) error
	InsertVisitorLog(ctx context.Context, v *VisitorLog) error
}

// AttendanceStore provides the atomic, per-registration-serialized unit of work
// the attendance engine runs its decide-and-write sequence in. Implementations
// must guarantee that two concurrent calls for the same registration cannot
// both commit contradictory writes: one wins, the other fails with ErrConflict
// or observes the winner's committed state.
type AttendanceStore interface {
	// WithRegistrationLock runs fn inside a transaction that holds a lock on
	// the registration row for the duration of fn. Returns ErrNotFound if the
	// registration does not exist. If fn returns an error the transaction is
	// rolled back and no partial state is visible.
	WithRegistrationLock(ctx context.Context, registrationID string, fn func(tx AttendanceTx) error) error
}

// CheckinRepository is the read side of check-in storage used by dashboards.
// The attendance engine is the sole writer of check-ins and visitor logs.
type CheckinRepository interface {
	GetByID(ctx context.Context, id string) (*Checkin, error)
	// ListRecent returns check-ins whose check-in time falls on the given day,
	// most recent first, limited to limit rows.
	ListRecent(ctx context.Context, day time.Time, limit int) ([]*Checkin, error)
	// CountForDay returns the number of check-ins recorded on the given day.
	CountForDay(ctx context.Context, day time.Time) (int, error)
}

// AttendanceService is the check-in/check-out state engine. It decides whether
// each recorded action is a check-in or a check-out, persists the Checkin row,
// and derives the VisitorLog on checkout, all within one atomic unit.
type AttendanceService interface {
	// RecordScan records one attendance action for a registration. With no
	// explicit action it auto-toggles on the registration's most recent
	// check-in state; with an explicit action the operator's choice is taken
	// as-is. The unattended path requires the parent event to be active.
	RecordScan(ctx context.Context, registrationID, actingUserID string, opts ScanOptions) (*ScanResult, error)
	// ProcessCheckout closes the specific open check-in and records its
	// visitor log. Fails with ErrAlreadyClosed if it is already closed.
	ProcessCheckout(ctx context.Context, checkinID, actingUserID string) (*ScanResult, error)
}
