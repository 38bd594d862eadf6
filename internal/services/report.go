package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventgate/internal/domain"
)

type reportService struct {
	eventRepo      domain.EventRepository
	visitorLogRepo domain.VisitorLogRepository
	now            func() time.Time
}

// NewReportService creates the read-only attendance reporting service. It only
// reads check-in and visitor-log rows; it never writes them.
func NewReportService(eventRepo domain.EventRepository, visitorLogRepo domain.VisitorLogRepository, now func() time.Time) domain.ReportService {
	if now == nil {
		now = time.Now
	}
	return &reportService{
		eventRepo:      eventRepo,
		visitorLogRepo: visitorLogRepo,
		now:            now,
	}
}

func (s *reportService) ListVisitorLogs(ctx context.Context, f domain.VisitorLogFilter, p domain.PaginationParams) ([]*domain.VisitorLog, int, error) {
	if f.EventID != "" {
		if _, err := s.eventRepo.GetByID(ctx, f.EventID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, 0, domain.ErrNotFound
			}
			return nil, 0, fmt.Errorf("get event: %w", err)
		}
	}
	logs, total, err := s.visitorLogRepo.List(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list visitor logs: %w", err)
	}
	if logs == nil {
		logs = []*domain.VisitorLog{}
	}
	return logs, total, nil
}

func (s *reportService) AttendanceReport(ctx context.Context, eventID string) (*domain.AttendanceReport, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	stats, err := s.visitorLogRepo.Stats(ctx, eventID, s.now())
	if err != nil {
		return nil, fmt.Errorf("attendance stats: %w", err)
	}

	f := domain.VisitorLogFilter{EventID: eventID}
	hourly, err := s.visitorLogRepo.HourlyDistribution(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("hourly distribution: %w", err)
	}
	daily, err := s.visitorLogRepo.DailyDistribution(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("daily distribution: %w", err)
	}
	if hourly == nil {
		hourly = []domain.BucketCount{}
	}
	if daily == nil {
		daily = []domain.BucketCount{}
	}

	return &domain.AttendanceReport{
		Event:  event,
		Stats:  stats,
		Hourly: hourly,
		Daily:  daily,
	}, nil
}
