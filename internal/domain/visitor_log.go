package domain

import (
	"context"
	"time"
)

// VisitorLogFilter narrows visitor-log queries. Nil fields are not applied.
type VisitorLogFilter struct {
	EventID  string
	DateFrom *time.Time
	DateTo   *time.Time
}

// AttendanceStats are aggregate figures over a set of visitor logs.
// swagger:model AttendanceStats
type AttendanceStats struct {
	TotalVisits     int     `json:"total_visits"`
	TotalMinutes    int     `json:"total_minutes"`
	AverageMinutes  float64 `json:"average_minutes"`
	CurrentlyInside int     `json:"currently_inside"`
	CheckinsToday   int     `json:"checkins_today"`
}

// BucketCount is one bucket of an hourly or daily distribution chart.
type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// VisitorLogRepository is the read side of visitor-log storage, consumed by
// reporting. Visitor logs are written only by the attendance engine.
type VisitorLogRepository interface {
	List(ctx context.Context, f VisitorLogFilter, p PaginationParams) ([]*VisitorLog, int, error)
	Stats(ctx context.Context, eventID string, now time.Time) (*AttendanceStats, error)
	// HourlyDistribution returns visit counts grouped by check-in hour (00:00..23:00).
	HourlyDistribution(ctx context.Context, f VisitorLogFilter) ([]BucketCount, error)
	// DailyDistribution returns visit counts grouped by check-in date (YYYY-MM-DD).
	DailyDistribution(ctx context.Context, f VisitorLogFilter) ([]BucketCount, error)
}

// AttendanceReport bundles the figures the reporting dashboard renders for one event.
// swagger:model AttendanceReport
type AttendanceReport struct {
	Event  *Event           `json:"event"`
	Stats  *AttendanceStats `json:"stats"`
	Hourly []BucketCount    `json:"hourly"`
	Daily  []BucketCount    `json:"daily"`
}

// ReportService produces read-only attendance reporting for dashboards.
type ReportService interface {
	ListVisitorLogs(ctx context.Context, f VisitorLogFilter, p PaginationParams) ([]*VisitorLog, int, error)
	AttendanceReport(ctx context.Context, eventID string) (*AttendanceReport, error)
}
