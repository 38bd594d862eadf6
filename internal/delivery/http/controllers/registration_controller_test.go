package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventgate/internal/delivery/http/helpers"
	"eventgate/internal/domain"
)

type mockRegistrationService struct {
	reg     *domain.Registration
	created bool
	err     error

	list  []*domain.Registration
	total int

	gotEventID string
	gotName    string
	gotEmail   string
	gotUserID  *string
}

func (m *mockRegistrationService) Register(_ context.Context, eventID, name, email string, _ *string, userID *string) (*domain.Registration, bool, error) {
	m.gotEventID = eventID
	m.gotName = name
	m.gotEmail = email
	m.gotUserID = userID
	if m.err != nil {
		return nil, false, m.err
	}
	return m.reg, m.created, nil
}

func (m *mockRegistrationService) GetRegistration(_ context.Context, _ string) (*domain.RegistrationWithEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RegistrationWithEvent{Registration: m.reg}, nil
}

func (m *mockRegistrationService) GetRegistrationByCode(_ context.Context, _ string) (*domain.RegistrationWithEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RegistrationWithEvent{Registration: m.reg}, nil
}

func (m *mockRegistrationService) ListEventRegistrations(_ context.Context, _ string, _ domain.PaginationParams) ([]*domain.Registration, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.list, m.total, nil
}

func (m *mockRegistrationService) ConfirmRegistration(_ context.Context, _ string) error {
	return m.err
}

func registerRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/events/ev-1/registrations", strings.NewReader(body))
	req.SetPathValue("eventID", "ev-1")
	return req
}

func TestRegistrationController_Register_Created(t *testing.T) {
	svc := &mockRegistrationService{
		reg:     &domain.Registration{ID: "reg-1", EventID: "ev-1", Code: "code-1"},
		created: true,
	}
	ctrl := NewRegistrationController(testLogger(), svc)

	w := httptest.NewRecorder()
	ctrl.Register(w, registerRequest(`{"name":"Ada Lovelace","email":"ada@example.com"}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	if svc.gotEventID != "ev-1" {
		t.Errorf("expected event ev-1, got %q", svc.gotEventID)
	}
	// anonymous registration carries no user link
	if svc.gotUserID != nil {
		t.Errorf("expected nil userID for anonymous registration, got %v", *svc.gotUserID)
	}
}

func TestRegistrationController_Register_ExistingReturns200(t *testing.T) {
	svc := &mockRegistrationService{
		reg:     &domain.Registration{ID: "reg-1", EventID: "ev-1"},
		created: false,
	}
	ctrl := NewRegistrationController(testLogger(), svc)

	w := httptest.NewRecorder()
	ctrl.Register(w, registerRequest(`{"name":"Ada Lovelace","email":"ada@example.com"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d for existing registration, got %d", http.StatusOK, w.Code)
	}
}

func TestRegistrationController_Register_Closed(t *testing.T) {
	svc := &mockRegistrationService{err: fmt.Errorf("registration is closed: %w", domain.ErrInvalidInput)}
	ctrl := NewRegistrationController(testLogger(), svc)

	w := httptest.NewRecorder()
	ctrl.Register(w, registerRequest(`{"name":"Ada Lovelace","email":"ada@example.com"}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestRegistrationController_Register_UnknownEvent(t *testing.T) {
	svc := &mockRegistrationService{err: domain.ErrNotFound}
	ctrl := NewRegistrationController(testLogger(), svc)

	w := httptest.NewRecorder()
	ctrl.Register(w, registerRequest(`{"name":"Ada Lovelace","email":"ada@example.com"}`))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRegistrationController_Register_Validation(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{})

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"ada@example.com"}`},
		{"missing email", `{"name":"Ada"}`},
		{"bad email", `{"name":"Ada","email":"not-an-email"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctrl.Register(w, registerRequest(tt.body))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestRegistrationController_ListEventRegistrations(t *testing.T) {
	svc := &mockRegistrationService{
		list: []*domain.Registration{
			{ID: "reg-1", EventID: "ev-1"},
			{ID: "reg-2", EventID: "ev-1"},
		},
		total: 42,
	}
	ctrl := NewRegistrationController(testLogger(), svc)

	req := authedRequest(http.MethodGet, "/events/ev-1/registrations?page=2&page_size=20", "")
	req.SetPathValue("eventID", "ev-1")
	w := httptest.NewRecorder()
	ctrl.ListEventRegistrations(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp struct {
		Data ListRegistrationsResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Data.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(resp.Data.Items))
	}
	if resp.Data.Pagination.Total != 42 || resp.Data.Pagination.Page != 2 {
		t.Errorf("unexpected pagination meta: %+v", resp.Data.Pagination)
	}
}

func TestRegistrationController_GetRegistrationByCode_NotFound(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{err: domain.ErrNotFound})

	req := authedRequest(http.MethodGet, "/registrations/code/nope", "")
	req.SetPathValue("code", "nope")
	w := httptest.NewRecorder()
	ctrl.GetRegistrationByCode(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != helpers.ErrCodeNotFound {
		t.Fatalf("expected not_found error code, got %+v", resp.Error)
	}
}

func TestRegistrationController_ConfirmRegistration(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{})

	req := authedRequest(http.MethodPost, "/registrations/reg-1/confirm", "")
	req.SetPathValue("registrationID", "reg-1")
	w := httptest.NewRecorder()
	ctrl.ConfirmRegistration(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}
