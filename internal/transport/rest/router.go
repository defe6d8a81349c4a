package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prasetyow/expense-reimbursement/internal/auth"
	"github.com/prasetyow/expense-reimbursement/internal/reimbursement"
	"github.com/prasetyow/expense-reimbursement/internal/transport/middleware"
	"github.com/prasetyow/expense-reimbursement/internal/transport/swagger"
	"github.com/prasetyow/expense-reimbursement/internal/user"
)

type RouterDeps struct {
	DB             *sql.DB
	AuthHandler    *auth.Handler
	UserHandler    *user.Handler
	ReimbHandler   *reimbursement.Handler
	LegacyHandler  *LegacyHandler
	Logger         *slog.Logger
	AllowedOrigins string
	OpenAPIPath    string
}

func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)

	// Apply global middleware
	router.Use(middleware.CORSWithOrigins(deps.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))

	// API docs
	if deps.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, deps.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	// Legacy flat routes with token-in-body semantics
	if deps.LegacyHandler != nil {
		router.Post("/register", deps.LegacyHandler.Register)
		router.Post("/login", deps.LegacyHandler.Login)
		router.Post("/reimbursement", deps.LegacyHandler.CreateReimbursement)
		router.Post("/reimbursement/edit", deps.LegacyHandler.EditReimbursement)
	}

	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if deps.AuthHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/register", deps.AuthHandler.Register)
				sr.Post("/login", deps.AuthHandler.Login)
			})
		}

		if deps.AuthHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(deps.AuthHandler.AuthMiddleware)

				// Current user
				if deps.UserHandler != nil {
					pr.Get("/users/me", deps.UserHandler.GetCurrentUser)
				}

				// Reimbursement routes
				if deps.ReimbHandler != nil {
					pr.Route("/reimbursements", func(er chi.Router) {
						er.Post("/", deps.ReimbHandler.CreateReimbursement)
						er.Get("/mine", deps.ReimbHandler.ListOwnReimbursements)

						// Manager routes
						er.Group(func(mr chi.Router) {
							mr.Use(middleware.RequireManager())
							mr.Get("/", deps.ReimbHandler.ListReimbursements)
							mr.Get("/pending", deps.ReimbHandler.ListPendingReimbursements)
							mr.Patch("/{id}/approve", deps.ReimbHandler.ApproveReimbursement)
							mr.Patch("/{id}/deny", deps.ReimbHandler.DenyReimbursement)
						})
					})
				}
			})
		}
	})
}
