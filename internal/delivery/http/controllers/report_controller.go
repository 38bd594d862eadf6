package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	h "eventgate/internal/delivery/http/helpers"
	"eventgate/internal/delivery/http/middleware"
	"eventgate/internal/domain"
)

// ListVisitorLogsResponse is the data payload for GET /events/{eventID}/visitor-logs (200).
type ListVisitorLogsResponse struct {
	Items      []*domain.VisitorLog `json:"items"`
	Pagination h.PaginationMeta     `json:"pagination"`
}

type ReportController struct {
	Logger  *slog.Logger
	Service domain.ReportService
}

func NewReportController(logger *slog.Logger, svc domain.ReportService) *ReportController {
	return &ReportController{
		Logger:  logger,
		Service: svc,
	}
}

// parseDateParam parses a query date as RFC3339 or YYYY-MM-DD. Returns nil when absent.
func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListVisitorLogs godoc
// @Summary List visitor logs for an event
// @Description Returns the event's completed entry/exit records, newest first, optionally filtered by date range. Use page and page_size query params. Dates accept RFC3339 or YYYY-MM-DD.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param date_from query string false "Include logs with check-in at or after this time"
// @Param date_to query string false "Include logs with check-in before this time"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/visitor-logs [get]
func (c *ReportController) ListVisitorLogs(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	dateFrom, err := parseDateParam(r, "date_from")
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid date_from")
		return
	}
	dateTo, err := parseDateParam(r, "date_to")
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid date_to")
		return
	}

	params := h.ParsePagination(r)
	filter := domain.VisitorLogFilter{EventID: eventID, DateFrom: dateFrom, DateTo: dateTo}
	items, total, err := c.Service.ListVisitorLogs(r.Context(), filter, params)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if items == nil {
		items = []*domain.VisitorLog{}
	}
	meta := h.NewPaginationMeta(params.Page, params.PageSize, total)
	h.WriteJSONSuccess(w, http.StatusOK, ListVisitorLogsResponse{Items: items, Pagination: meta})
}

// AttendanceReport godoc
// @Summary Attendance report for an event
// @Description Returns aggregate attendance figures: total visits, total and average duration, currently-inside count, today's check-ins, plus hourly and daily visit distributions.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains event, stats, hourly, and daily"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/reports/attendance [get]
func (c *ReportController) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	report, err := c.Service.AttendanceReport(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, report)
}
