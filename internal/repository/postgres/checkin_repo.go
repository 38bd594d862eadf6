package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventgate/internal/domain"
)

type attendanceStore struct {
	DB *sql.DB
}

// NewAttendanceStore returns an AttendanceStore backed by Postgres. Callers
// are serialized per registration by a row lock on the registrations row held
// for the duration of the decide-and-write sequence.
func NewAttendanceStore(db *sql.DB) domain.AttendanceStore {
	return &attendanceStore{DB: db}
}

func (s *attendanceStore) WithRegistrationLock(ctx context.Context, registrationID string, fn func(tx domain.AttendanceTx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var locked string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM registrations WHERE id = $1 FOR UPDATE`,
		registrationID,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapLockErr(err)
	}

	if err := fn(&attendanceTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapLockErr(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// mapLockErr converts Postgres serialization failures and deadlocks into
// domain.ErrConflict so callers know the whole operation is safe to retry.
func mapLockErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return domain.ErrConflict
		}
	}
	return err
}

type attendanceTx struct {
	tx *sql.Tx
}

func (t *attendanceTx) LatestCheckin(ctx context.Context, registrationID string) (*domain.Checkin, error) {
	query := `
		SELECT id, registration_id, acting_user_id, check_in_time, check_out_time, notes
		FROM checkins
		WHERE registration_id = $1
		ORDER BY check_in_time DESC
		LIMIT 1
	`
	return scanCheckinRow(t.tx.QueryRowContext(ctx, query, registrationID))
}

func (t *attendanceTx) GetCheckin(ctx context.Context, checkinID string) (*domain.Checkin, error) {
	query := `
		SELECT id, registration_id, acting_user_id, check_in_time, check_out_time, notes
		FROM checkins
		WHERE id = $1
	`
	return scanCheckinRow(t.tx.QueryRowContext(ctx, query, checkinID))
}

func (t *attendanceTx) InsertCheckin(ctx context.Context, c *domain.Checkin) error {
	query := `
		INSERT INTO checkins (registration_id, acting_user_id, check_in_time, check_out_time, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var out sql.NullTime
	if c.CheckOutTime != nil {
		out = sql.NullTime{Time: *c.CheckOutTime, Valid: true}
	}
	var notes sql.NullString
	if c.Notes != nil {
		notes = sql.NullString{String: *c.Notes, Valid: true}
	}
	return t.tx.QueryRowContext(ctx, query, c.RegistrationID, c.ActingUserID, c.CheckInTime, out, notes).
		Scan(&c.ID)
}

func (t *attendanceTx) CloseCheckin(ctx context.Context, checkinID string, at time.Time) error {
	// The IS NULL guard makes a double close impossible even if two callers
	// somehow reach this point with the same row.
	query := `
		UPDATE checkins
		SET check_out_time = $2
		WHERE id = $1 AND check_out_time IS NULL
	`
	result, err := t.tx.ExecContext(ctx, query, checkinID, at)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAlreadyClosed
	}
	return nil
}

func (t *attendanceTx) InsertVisitorLog(ctx context.Context, v *domain.VisitorLog) error {
	query := `
		INSERT INTO visitor_logs (event_id, registration_id, check_in_time, check_out_time, duration_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	return t.tx.QueryRowContext(ctx, query, v.EventID, v.RegistrationID, v.CheckInTime, v.CheckOutTime, v.DurationMinutes).
		Scan(&v.ID, &v.CreatedAt)
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckinRow(row rowScanner) (*domain.Checkin, error) {
	c := &domain.Checkin{}
	var outNull sql.NullTime
	var notesNull sql.NullString
	err := row.Scan(&c.ID, &c.RegistrationID, &c.ActingUserID, &c.CheckInTime, &outNull, &notesNull)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if outNull.Valid {
		c.CheckOutTime = &outNull.Time
	}
	if notesNull.Valid {
		c.Notes = &notesNull.String
	}
	return c, nil
}

type checkinRepository struct {
	DB *sql.DB
}

// NewCheckinRepository returns the read side of check-in storage.
func NewCheckinRepository(db *sql.DB) domain.CheckinRepository {
	return &checkinRepository{DB: db}
}

func (r *checkinRepository) GetByID(ctx context.Context, id string) (*domain.Checkin, error) {
	query := `
		SELECT id, registration_id, acting_user_id, check_in_time, check_out_time, notes
		FROM checkins
		WHERE id = $1
	`
	return scanCheckinRow(r.DB.QueryRowContext(ctx, query, id))
}

func (r *checkinRepository) ListRecent(ctx context.Context, day time.Time, limit int) ([]*domain.Checkin, error) {
	query := `
		SELECT id, registration_id, acting_user_id, check_in_time, check_out_time, notes
		FROM checkins
		WHERE check_in_time::date = $1::date
		ORDER BY check_in_time DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, day, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checkins := make([]*domain.Checkin, 0)
	for rows.Next() {
		c, err := scanCheckinRow(rows)
		if err != nil {
			return nil, err
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

func (r *checkinRepository) CountForDay(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM checkins WHERE check_in_time::date = $1::date`,
		day,
	).Scan(&count)
	return count, err
}
