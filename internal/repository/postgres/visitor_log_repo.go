package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"eventgate/internal/domain"
)

type visitorLogRepository struct {
	DB *sql.DB
}

// NewVisitorLogRepository returns the read side of visitor-log storage.
// Visitor logs are inserted only by the attendance store and never updated.
func NewVisitorLogRepository(db *sql.DB) domain.VisitorLogRepository {
	return &visitorLogRepository{DB: db}
}

func buildLogFilter(f domain.VisitorLogFilter) (string, []any) {
	clauses := []string{}
	args := []any{}
	n := 1
	if f.EventID != "" {
		clauses = append(clauses, fmt.Sprintf("event_id = $%d", n))
		args = append(args, f.EventID)
		n++
	}
	if f.DateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("check_in_time >= $%d", n))
		args = append(args, *f.DateFrom)
		n++
	}
	if f.DateTo != nil {
		clauses = append(clauses, fmt.Sprintf("check_in_time <= $%d", n))
		args = append(args, *f.DateTo)
		n++
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *visitorLogRepository) List(ctx context.Context, f domain.VisitorLogFilter, p domain.PaginationParams) ([]*domain.VisitorLog, int, error) {
	where, args := buildLogFilter(f)

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM visitor_logs "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, event_id, registration_id, check_in_time, check_out_time, duration_minutes, created_at
		FROM visitor_logs
		%s
		ORDER BY check_in_time DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, p.PageSize, p.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]*domain.VisitorLog, 0)
	for rows.Next() {
		v := &domain.VisitorLog{}
		if err := rows.Scan(&v.ID, &v.EventID, &v.RegistrationID, &v.CheckInTime, &v.CheckOutTime, &v.DurationMinutes, &v.CreatedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, v)
	}
	return logs, total, rows.Err()
}

func (r *visitorLogRepository) Stats(ctx context.Context, eventID string, now time.Time) (*domain.AttendanceStats, error) {
	stats := &domain.AttendanceStats{}

	var avg sql.NullFloat64
	var totalMinutes sql.NullInt64
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(duration_minutes), 0), AVG(duration_minutes)
		FROM visitor_logs
		WHERE event_id = $1
	`, eventID).Scan(&stats.TotalVisits, &totalMinutes, &avg)
	if err != nil {
		return nil, err
	}
	stats.TotalMinutes = int(totalMinutes.Int64)
	if avg.Valid {
		stats.AverageMinutes = avg.Float64
	}

	// Open check-ins are attendees currently inside the venue.
	err = r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM checkins c
		JOIN registrations r ON r.id = c.registration_id
		WHERE r.event_id = $1 AND c.check_out_time IS NULL
	`, eventID).Scan(&stats.CurrentlyInside)
	if err != nil {
		return nil, err
	}

	err = r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM checkins c
		JOIN registrations r ON r.id = c.registration_id
		WHERE r.event_id = $1 AND c.check_in_time::date = $2::date
	`, eventID, now).Scan(&stats.CheckinsToday)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *visitorLogRepository) HourlyDistribution(ctx context.Context, f domain.VisitorLogFilter) ([]domain.BucketCount, error) {
	where, args := buildLogFilter(f)
	query := fmt.Sprintf(`
		SELECT EXTRACT(HOUR FROM check_in_time)::int AS hour, COUNT(*)
		FROM visitor_logs
		%s
		GROUP BY hour
		ORDER BY hour
	`, where)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]domain.BucketCount, 0)
	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, err
		}
		buckets = append(buckets, domain.BucketCount{Bucket: fmt.Sprintf("%02d:00", hour), Count: count})
	}
	return buckets, rows.Err()
}

func (r *visitorLogRepository) DailyDistribution(ctx context.Context, f domain.VisitorLogFilter) ([]domain.BucketCount, error) {
	where, args := buildLogFilter(f)
	query := fmt.Sprintf(`
		SELECT check_in_time::date AS day, COUNT(*)
		FROM visitor_logs
		%s
		GROUP BY day
		ORDER BY day
	`, where)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]domain.BucketCount, 0)
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		buckets = append(buckets, domain.BucketCount{Bucket: day.Format("2006-01-02"), Count: count})
	}
	return buckets, rows.Err()
}
