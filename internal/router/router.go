package router

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/auth"
	"github.com/waygalih/suratdesa/internal/handler"
	mw "github.com/waygalih/suratdesa/internal/middleware"
	"github.com/waygalih/suratdesa/internal/models"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Submission *handler.SubmissionHandler
	Review     *handler.ReviewHandler
	Admin      *handler.AdminHandler
}

func New(jwtSecret string, revoker auth.Revoker, log *zap.Logger, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery(log))
	r.Use(mw.Logger(log))
	r.Use(mw.CORS())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/register", h.Auth.Register)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret, revoker, log))

			// Auth
			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/logout", h.Auth.Logout)

			// Letter intake
			r.Get("/letters", h.Submission.Letters)
			r.Post("/letters/{slug}/submissions", h.Submission.Create)

			// Staff only
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))

				r.Post("/review/session", h.Review.Enter)
				r.Get("/review", h.Review.View)
				r.Put("/review/search", h.Review.SetSearch)
				r.Put("/review/status-filter", h.Review.SetStatusFilter)
				r.Put("/review/page", h.Review.SetPage)
				r.Post("/review/records/{ownerId}/{recordId}/approve", h.Review.Approve)
				r.Post("/review/records/{ownerId}/{recordId}/reject", h.Review.OpenReject)
				r.Put("/review/reject/reason", h.Review.SetReason)
				r.Post("/review/reject/confirm", h.Review.ConfirmReject)
				r.Delete("/review/reject", h.Review.CloseReject)

				r.Get("/submissions/{ownerId}/{recordId}", h.Submission.Get)

				r.Get("/admin/stats", h.Admin.Stats)
				r.Post("/admin/indexes", h.Admin.EnsureIndexes)
			})
		})
	})

	return r
}
