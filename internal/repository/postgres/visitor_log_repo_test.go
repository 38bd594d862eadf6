package postgres

import (
	"context"
	"testing"
	"time"

	"eventgate/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestVisitorLogRepository_List_WithFilter(t *testing.T) {
	ctx := context.Background()
	in := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	out := in.Add(2 * time.Hour)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := in.Add(-24 * time.Hour)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM visitor_logs`).
		WithArgs("ev-1", from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT id, event_id, registration_id, check_in_time, check_out_time, duration_minutes`).
		WithArgs("ev-1", from, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "registration_id", "check_in_time", "check_out_time", "duration_minutes", "created_at"}).
			AddRow("vl-1", "ev-1", "reg-1", in, out, 120, out))

	repo := NewVisitorLogRepository(db)
	logs, total, err := repo.List(ctx,
		domain.VisitorLogFilter{EventID: "ev-1", DateFrom: &from},
		domain.PaginationParams{Page: 1, PageSize: 20},
	)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, logs, 1)
	require.Equal(t, 120, logs[0].DurationMinutes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorLogRepository_Stats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(duration_minutes\), 0\), AVG\(duration_minutes\)`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum", "avg"}).AddRow(10, 900, 90.0))
	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM checkins c\s+JOIN registrations r`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM checkins c\s+JOIN registrations r`).
		WithArgs("ev-1", now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	repo := NewVisitorLogRepository(db)
	stats, err := repo.Stats(ctx, "ev-1", now)
	require.NoError(t, err)
	require.Equal(t, 10, stats.TotalVisits)
	require.Equal(t, 900, stats.TotalMinutes)
	require.InDelta(t, 90.0, stats.AverageMinutes, 0.001)
	require.Equal(t, 3, stats.CurrentlyInside)
	require.Equal(t, 7, stats.CheckinsToday)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitorLogRepository_HourlyDistribution(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXTRACT\(HOUR FROM check_in_time\)::int AS hour`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"hour", "count"}).
			AddRow(9, 12).
			AddRow(14, 5))

	repo := NewVisitorLogRepository(db)
	buckets, err := repo.HourlyDistribution(ctx, domain.VisitorLogFilter{EventID: "ev-1"})
	require.NoError(t, err)
	require.Equal(t, []domain.BucketCount{
		{Bucket: "09:00", Count: 12},
		{Bucket: "14:00", Count: 5},
	}, buckets)
	require.NoError(t, mock.ExpectationsWereMet())
}
