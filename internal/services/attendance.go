package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventgate/internal/domain"
)

type attendanceService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	checkinRepo      domain.CheckinRepository
	store            domain.AttendanceStore
	now              func() time.Time
}

// NewAttendanceService creates the check-in/check-out state engine. The now
// function defaults to time.Now and exists so tests can pin the clock.
func NewAttendanceService(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	checkinRepo domain.CheckinRepository,
	store domain.AttendanceStore,
	now func() time.Time,
) domain.AttendanceService {
	if now == nil {
		now = time.Now
	}
	return &attendanceService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		checkinRepo:      checkinRepo,
		store:            store,
		now:              now,
	}
}

// durationMinutes floors the interval to whole minutes and clamps at zero.
// The stored duration is always a non-negative integer.
func durationMinutes(in, out time.Time) int {
	d := out.Sub(in)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

func (s *attendanceService) RecordScan(ctx context.Context, registrationID, actingUserID string, opts domain.ScanOptions) (*domain.ScanResult, error) {
	if registrationID == "" || actingUserID == "" {
		return nil, fmt.Errorf("%w: registration and acting user are required", domain.ErrInvalidInput)
	}
	if opts.Action != nil && *opts.Action != domain.ActionCheckin && *opts.Action != domain.ActionCheckout {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, *opts.Action)
	}

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}

	// The unattended QR path only admits scans while the event is open for
	// check-in. Manual actions by privileged operators bypass this; the role
	// check happens upstream in the authorization layer.
	if opts.Action == nil {
		event, err := s.eventRepo.GetByID(ctx, reg.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get event: %w", err)
		}
		if !event.IsActive {
			return nil, domain.ErrEventInactive
		}
	}

	var result *domain.ScanResult
	err = s.store.WithRegistrationLock(ctx, reg.ID, func(tx domain.AttendanceTx) error {
		last, err := tx.LatestCheckin(ctx, reg.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("latest checkin: %w", err)
		}

		action := s.resolveAction(opts.Action, last)
		switch action {
		case domain.ActionCheckin:
			result, err = s.doCheckin(ctx, tx, reg, actingUserID, opts.Note)
		case domain.ActionCheckout:
			// The toggle only lands here when last is the open session, but
			// an explicit checkout may arrive with nothing open.
			if !last.Open() {
				return fmt.Errorf("%w: no open check-in for registration", domain.ErrNotFound)
			}
			result, err = s.doCheckout(ctx, tx, reg, last, opts.Note)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	result.AttendeeName = reg.Name
	return result, nil
}

// resolveAction applies the auto-toggle unless the operator stated an action.
// No prior check-in, or a closed latest one, toggles to checkin; an open one
// toggles to checkout. A stated action is taken as-is, even a checkin while a
// session is already open.
func (s *attendanceService) resolveAction(explicit *domain.ScanAction, last *domain.Checkin) domain.ScanAction {
	if explicit != nil {
		return *explicit
	}
	if last.Open() {
		return domain.ActionCheckout
	}
	return domain.ActionCheckin
}

func (s *attendanceService) doCheckin(ctx context.Context, tx domain.AttendanceTx, reg *domain.Registration, actingUserID string, note *string) (*domain.ScanResult, error) {
	c := &domain.Checkin{
		RegistrationID: reg.ID,
		ActingUserID:   actingUserID,
		CheckInTime:    s.now(),
		Notes:          note,
	}
	if err := tx.InsertCheckin(ctx, c); err != nil {
		return nil, fmt.Errorf("insert checkin: %w", err)
	}
	return &domain.ScanResult{Action: domain.ActionCheckin, Checkin: c}, nil
}

func (s *attendanceService) doCheckout(ctx context.Context, tx domain.AttendanceTx, reg *domain.Registration, open *domain.Checkin, note *string) (*domain.ScanResult, error) {
	at := s.now()
	if err := tx.CloseCheckin(ctx, open.ID, at); err != nil {
		return nil, err
	}
	open.CheckOutTime = &at
	if note != nil {
		open.Notes = note
	}

	log := &domain.VisitorLog{
		EventID:         reg.EventID,
		RegistrationID:  reg.ID,
		CheckInTime:     open.CheckInTime,
		CheckOutTime:    at,
		DurationMinutes: durationMinutes(open.CheckInTime, at),
	}
	if err := tx.InsertVisitorLog(ctx, log); err != nil {
		return nil, fmt.Errorf("insert visitor log: %w", err)
	}
	return &domain.ScanResult{Action: domain.ActionCheckout, Checkin: open, VisitorLog: log}, nil
}

func (s *attendanceService) ProcessCheckout(ctx context.Context, checkinID, actingUserID string) (*domain.ScanResult, error) {
	if checkinID == "" || actingUserID == "" {
		return nil, fmt.Errorf("%w: checkin and acting user are required", domain.ErrInvalidInput)
	}

	// Resolve the registration first so the lock is taken on the right row.
	// The check-in is re-read under the lock before any write, so a racing
	// checkout of the same row surfaces as ErrAlreadyClosed, not a double log.
	c, err := s.checkinRepo.GetByID(ctx, checkinID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get checkin: %w", err)
	}
	reg, err := s.registrationRepo.GetByID(ctx, c.RegistrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}

	var result *domain.ScanResult
	err = s.store.WithRegistrationLock(ctx, reg.ID, func(tx domain.AttendanceTx) error {
		locked, err := tx.GetCheckin(ctx, checkinID)
		if err != nil {
			return err
		}
		if !locked.Open() {
			return domain.ErrAlreadyClosed
		}
		result, err = s.doCheckout(ctx, tx, reg, locked, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.AttendeeName = reg.Name
	return result, nil
}
