package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	h "eventgate/internal/delivery/http/helpers"
	"eventgate/internal/delivery/http/middleware"
	"eventgate/internal/domain"
)

// defaultRecentLimit caps GET /checkins/recent when no limit is given.
const defaultRecentLimit = 20

// ScanRequest is the request body for POST /checkins/scan. Exactly one of
// registration_code (the QR payload) or registration_id must be set.
type ScanRequest struct {
	RegistrationCode string `json:"registration_code"`
	RegistrationID   string `json:"registration_id"`
}

// Validate implements Validator.
func (s ScanRequest) Validate() []string {
	code := strings.TrimSpace(s.RegistrationCode)
	id := strings.TrimSpace(s.RegistrationID)
	if code == "" && id == "" {
		return []string{"registration_code or registration_id is required"}
	}
	if code != "" && id != "" {
		return []string{"provide registration_code or registration_id, not both"}
	}
	return nil
}

// ManualCheckinRequest is the request body for POST /checkins/manual. The
// operator's stated action is applied as-is.
type ManualCheckinRequest struct {
	RegistrationID string  `json:"registration_id"`
	Action         string  `json:"action"`
	Note           *string `json:"note"`
}

// Validate implements Validator.
func (m ManualCheckinRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(m.RegistrationID) == "" {
		errs = append(errs, "registration_id is required")
	}
	switch m.Action {
	case string(domain.ActionCheckin), string(domain.ActionCheckout):
	default:
		errs = append(errs, "action must be \"checkin\" or \"checkout\"")
	}
	return errs
}

// RecentCheckinsResponse is the data payload for GET /checkins/recent (200).
type RecentCheckinsResponse struct {
	Items      []*domain.Checkin `json:"items"`
	CountToday int               `json:"count_today"`
}

// ScanSuccessResponse is the success response envelope for scan and manual endpoints (200).
type ScanSuccessResponse struct {
	Data  *domain.ScanResult `json:"data"`
	Error *h.APIError        `json:"error"`
}

type CheckinController struct {
	Logger        *slog.Logger
	Attendance    domain.AttendanceService
	Registrations domain.RegistrationService
	Checkins      domain.CheckinRepository
}

func NewCheckinController(logger *slog.Logger, attendance domain.AttendanceService, registrations domain.RegistrationService, checkins domain.CheckinRepository) *CheckinController {
	return &CheckinController{
		Logger:        logger,
		Attendance:    attendance,
		Registrations: registrations,
		Checkins:      checkins,
	}
}

// Scan godoc
// @Summary Record a QR scan
// @Description Records one attendance action for a registration, identified by its QR code or id. The direction is auto-detected: no open check-in means check-in, an open one means check-out. A check-out returns the derived visitor log. Requires an active event.
// @Tags checkins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScanRequest true "Registration code (QR payload) or id"
// @Success 200 {object} controllers.ScanSuccessResponse "data contains action, checkin, and visitor_log on checkout"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown registration)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (inactive event, or concurrent scan; retry)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkins/scan [post]
func (c *CheckinController) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actingUserID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	registrationID := strings.TrimSpace(req.RegistrationID)
	if registrationID == "" {
		reg, err := c.Registrations.GetRegistrationByCode(r.Context(), req.RegistrationCode)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "unknown registration code")
				return
			}
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
			return
		}
		registrationID = reg.Registration.ID
	}

	result, err := c.Attendance.RecordScan(r.Context(), registrationID, actingUserID, domain.ScanOptions{})
	if err != nil {
		c.writeScanError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, result)
}

// ManualCheckin godoc
// @Summary Record a manual check-in or check-out
// @Description Records an attendance action with an operator-chosen direction. The stated action is authoritative: it does not auto-toggle, and it skips the active-event requirement. A manual checkout with no open check-in fails with 404.
// @Tags checkins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ManualCheckinRequest true "Registration id, action, and optional note"
// @Success 200 {object} controllers.ScanSuccessResponse "data contains action, checkin, and visitor_log on checkout"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown registration, or no open check-in)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (concurrent scan; retry)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkins/manual [post]
func (c *CheckinController) ManualCheckin(w http.ResponseWriter, r *http.Request) {
	var req ManualCheckinRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actingUserID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	action := domain.ScanAction(req.Action)
	result, err := c.Attendance.RecordScan(r.Context(), strings.TrimSpace(req.RegistrationID), actingUserID, domain.ScanOptions{
		Action: &action,
		Note:   req.Note,
	})
	if err != nil {
		c.writeScanError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, result)
}

// Checkout godoc
// @Summary Close a specific open check-in
// @Description Administratively closes the given check-in, stamping its check-out time and deriving the visitor log. Fails with 409 if it is already closed.
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Param checkinID path string true "Check-in ID"
// @Success 200 {object} controllers.ScanSuccessResponse "data contains the closed checkin and its visitor_log"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already closed, or concurrent scan)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkins/{checkinID}/checkout [post]
func (c *CheckinController) Checkout(w http.ResponseWriter, r *http.Request) {
	checkinID := r.PathValue("checkinID")
	if checkinID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing checkinID")
		return
	}
	actingUserID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Attendance.ProcessCheckout(r.Context(), checkinID, actingUserID)
	if err != nil {
		c.writeScanError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, result)
}

// RecentCheckins godoc
// @Summary List today's recent check-ins
// @Description Returns today's check-ins, most recent first, plus today's total count. Use the limit query param (default 20).
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum rows to return (default 20)"
// @Success 200 {object} helpers.APIResponse "data contains items and count_today"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkins/recent [get]
func (c *CheckinController) RecentCheckins(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	limit := defaultRecentLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			limit = v
		}
	}
	now := time.Now()
	items, err := c.Checkins.ListRecent(r.Context(), now, limit)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	count, err := c.Checkins.CountForDay(r.Context(), now)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if items == nil {
		items = []*domain.Checkin{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, RecentCheckinsResponse{Items: items, CountToday: count})
}

// writeScanError maps attendance engine errors to the response envelope.
func (c *CheckinController) writeScanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrEventInactive):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "event is not active")
	case errors.Is(err, domain.ErrAlreadyClosed):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "check-in already closed")
	case errors.Is(err, domain.ErrConflict):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "concurrent scan, retry")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}
