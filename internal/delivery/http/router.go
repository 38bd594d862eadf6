package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventgate/internal/delivery/http/controllers"
	"eventgate/internal/delivery/http/middleware"
	"eventgate/internal/domain"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Logger       *slog.Logger
	Verifier     domain.TokenVerifier
	Metrics      *middleware.Metrics
	ScanLimiter  middleware.Limiter
	Auth         *controllers.AuthController
	Events       *controllers.EventController
	Registration *controllers.RegistrationController
	Checkins     *controllers.CheckinController
	Reports      *controllers.ReportController
}

// NewRouter initializes the HTTP router with all application routes.
// Check-in and reporting routes require admin, event_manager, or usher;
// event management requires admin or event_manager; registration creation is public.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(d.Verifier, d.Logger)
	staff := middleware.RequireRole(domain.RoleAdmin, domain.RoleEventManager, domain.RoleUsher)
	managers := middleware.RequireRole(domain.RoleAdmin, domain.RoleEventManager)
	scanLimit := middleware.RateLimit(d.ScanLimiter, d.Logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", d.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", d.Auth.Login)

	// Events
	mux.HandleFunc("POST /events", requireAuth(managers(d.Events.CreateEvent)))
	mux.HandleFunc("GET /events", requireAuth(d.Events.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(d.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", requireAuth(managers(d.Events.UpdateEvent)))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(managers(d.Events.DeleteEvent)))
	mux.HandleFunc("POST /events/{eventID}/activate", requireAuth(managers(d.Events.ActivateEvent)))
	mux.HandleFunc("POST /events/{eventID}/deactivate", requireAuth(managers(d.Events.DeactivateEvent)))

	// Registrations (creation is public)
	mux.HandleFunc("POST /events/{eventID}/registrations", d.Registration.Register)
	mux.HandleFunc("GET /events/{eventID}/registrations", requireAuth(staff(d.Registration.ListEventRegistrations)))
	mux.HandleFunc("GET /registrations/{registrationID}", requireAuth(staff(d.Registration.GetRegistration)))
	mux.HandleFunc("GET /registrations/code/{code}", requireAuth(staff(d.Registration.GetRegistrationByCode)))
	mux.HandleFunc("POST /registrations/{registrationID}/confirm", requireAuth(managers(d.Registration.ConfirmRegistration)))

	// Check-ins
	mux.HandleFunc("POST /checkins/scan", scanLimit(requireAuth(staff(d.Checkins.Scan))))
	mux.HandleFunc("POST /checkins/manual", requireAuth(staff(d.Checkins.ManualCheckin)))
	mux.HandleFunc("POST /checkins/{checkinID}/checkout", requireAuth(staff(d.Checkins.Checkout)))
	mux.HandleFunc("GET /checkins/recent", requireAuth(staff(d.Checkins.RecentCheckins)))

	// Reporting
	mux.HandleFunc("GET /events/{eventID}/visitor-logs", requireAuth(staff(d.Reports.ListVisitorLogs)))
	mux.HandleFunc("GET /events/{eventID}/reports/attendance", requireAuth(staff(d.Reports.AttendanceReport)))

	// Observability
	mux.Handle("GET /metrics", d.Metrics.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return d.Metrics.Instrument(mux)
}
