// Package server wires the HTTP routes and runs the HTTP server.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/studytracker/internal/api"
	"github.com/mmynk/studytracker/internal/auth"
	"github.com/mmynk/studytracker/internal/config"
	"github.com/mmynk/studytracker/internal/middleware"
	"github.com/mmynk/studytracker/internal/service"
	"github.com/mmynk/studytracker/internal/storage"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	Store         storage.Store
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Metrics       *middleware.Metrics
	Logger        *slog.Logger
}

// NewRouter builds the HTTP handler. API routes live under /api.
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = middleware.NewMetrics()
	}

	authSvc := service.NewAuthService(deps.Authenticator, deps.JWT, logger)
	participantSvc := service.NewParticipantService(deps.Store)
	sessionSvc := service.NewSessionService(deps.Store)
	attendanceSvc := service.NewAttendanceService(deps.Store)
	dashboardSvc := service.NewDashboardService(deps.Store)
	adminSvc := service.NewAdminService(deps.Store, deps.Authenticator)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(cfg.CORSOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusNotFound, api.ErrorResponse{
			Error:   "Not Found",
			Message: "The requested resource " + r.URL.Path + " was not found on this server.",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusMethodNotAllowed, api.ErrorResponse{
			Error:   "Method Not Allowed",
			Message: "Method " + r.Method + " is not allowed on " + r.URL.Path + ".",
		})
	})

	r.Get("/health", healthHandler(deps.Store))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.ClientRateLimit(cfg.LoginRateLimit, cfg.LoginBurst))
				r.Post("/register", authSvc.Register)
				r.Post("/login", authSvc.Login)
			})
			r.Post("/logout", authSvc.Logout)
			r.With(middleware.RequireAuth(deps.JWT)).Get("/me", authSvc.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.JWT))

			r.Route("/participants", func(r chi.Router) {
				r.Get("/", participantSvc.List)
				r.Post("/", participantSvc.Create)
				r.Get("/attendance-summary", participantSvc.AttendanceSummary)
				r.Get("/interested-in-baptism", participantSvc.BaptismCandidates)
				r.Get("/{id}", participantSvc.Get)
				r.Put("/{id}", participantSvc.Update)
				r.Patch("/{id}/baptism-interest", participantSvc.SetBaptismInterest)
				r.Delete("/{id}", participantSvc.Delete)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionSvc.List)
				r.Post("/", sessionSvc.Create)
				r.Get("/{id}", sessionSvc.Get)
				r.Put("/{id}", sessionSvc.Update)
				r.Delete("/{id}", sessionSvc.Delete)
			})

			r.Get("/attendance/{sessionId}", attendanceSvc.Roster)
			r.Post("/attendance", attendanceSvc.Save)

			r.Get("/dashboard/stats", dashboardSvc.Stats)

			r.Route("/admin/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", adminSvc.ListUsers)
				r.Post("/", adminSvc.CreateUser)
				r.Put("/{id}/approve", adminSvc.Approve)
				r.Put("/{id}", adminSvc.UpdateUser)
				r.Delete("/{id}", adminSvc.DeleteUser)
			})
		})
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// healthHandler reports whether the database answers a ping.
func healthHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.Error("Health check failed", "error", err)
			api.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: "database unreachable"})
			return
		}
		api.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
