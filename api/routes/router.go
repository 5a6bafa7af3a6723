package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schoolbridge/schoolbridge-backend/api/controllers"
	"github.com/schoolbridge/schoolbridge-backend/api/middleware"
	"github.com/schoolbridge/schoolbridge-backend/internal/auth"
	"github.com/schoolbridge/schoolbridge-backend/internal/complaints"
	"github.com/schoolbridge/schoolbridge-backend/internal/dashboard"
	"github.com/schoolbridge/schoolbridge-backend/internal/feedback"
	"github.com/schoolbridge/schoolbridge-backend/internal/messaging"
	"github.com/schoolbridge/schoolbridge-backend/internal/notifications"
	"github.com/schoolbridge/schoolbridge-backend/internal/pricing"
	"github.com/schoolbridge/schoolbridge-backend/internal/ratings"
	"github.com/schoolbridge/schoolbridge-backend/internal/suppliers"
	"github.com/schoolbridge/schoolbridge-backend/pkg/auth/session"
	"github.com/schoolbridge/schoolbridge-backend/pkg/config"
	"github.com/schoolbridge/schoolbridge-backend/pkg/db"
	"github.com/schoolbridge/schoolbridge-backend/pkg/logger"
	"github.com/schoolbridge/schoolbridge-backend/pkg/redis"
	"github.com/schoolbridge/schoolbridge-backend/pkg/storage/gcs"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services groups the domain services the router exposes over HTTP.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	AdminRegister auth.AdminRegisterService
	Suppliers     suppliers.Service
	Ratings       ratings.Service
	Feedback      feedback.Service
	Messaging     messaging.Service
	Complaints    complaints.Service
	Pricing       pricing.Service
	Dashboard     dashboard.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AdminAuthRegister(svcs.AdminRegister, svcs.Auth, cfg, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AdminAuthLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.ListSuppliers(svcs.Suppliers, logg))
			r.Route("/{supplierId}", func(r chi.Router) {
				r.Get("/", controllers.GetSupplier(svcs.Suppliers, logg))
				r.Get("/ratings", controllers.GetSupplierRatings(svcs.Ratings, logg))
				r.Get("/feedback", controllers.ListSupplierFeedback(svcs.Feedback, logg))
				r.Get("/pricing", controllers.ListSupplierPricing(svcs.Pricing, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole("school", logg))
					r.Post("/ratings", controllers.SubmitSupplierRating(svcs.Ratings, logg))
					r.Post("/feedback", controllers.SubmitSupplierFeedback(svcs.Feedback, logg))
				})
			})
		})

		r.Route("/conversations", func(r chi.Router) {
			r.With(middleware.RequireRole("school", logg)).Post("/", controllers.StartConversation(svcs.Messaging, logg))
			r.Get("/", controllers.ListConversations(svcs.Messaging, logg))
			r.Route("/{conversationId}", func(r chi.Router) {
				r.Get("/messages", controllers.ListConversationMessages(svcs.Messaging, logg))
				r.Post("/messages", controllers.SendMessage(svcs.Messaging, logg))
				r.Post("/read", controllers.MarkConversationRead(svcs.Messaging, logg))
			})
		})

		r.Route("/complaints", func(r chi.Router) {
			r.With(middleware.RequireRole("school", logg)).Post("/", controllers.FileComplaint(svcs.Complaints, logg))
			r.Get("/", controllers.ListComplaints(svcs.Complaints, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})

		r.Route("/supplier", func(r chi.Router) {
			r.Use(middleware.RequireRole("supplier", logg))

			r.Route("/application", func(r chi.Router) {
				r.Post("/", controllers.SubmitSupplierApplication(svcs.Suppliers, logg))
				r.Get("/", controllers.GetOwnSupplierApplication(svcs.Suppliers, logg))
				r.Patch("/", controllers.UpdateSupplierApplication(svcs.Suppliers, logg))
				r.Post("/brochure/upload-url", controllers.SupplierBrochureUploadURL(svcs.Suppliers, logg))
				r.Post("/brochure/attach", controllers.AttachSupplierBrochure(svcs.Suppliers, logg))
			})

			r.Get("/dashboard", controllers.SupplierDashboard(svcs.Dashboard, logg))

			r.Route("/pricing", func(r chi.Router) {
				r.Use(middleware.SupplierContext(logg))
				r.Get("/", controllers.ListOwnPricing(svcs.Pricing, logg))
				r.Post("/", controllers.CreatePricingEntry(svcs.Pricing, logg))
				r.Put("/{entryId}", controllers.UpdatePricingEntry(svcs.Pricing, logg))
				r.Delete("/{entryId}", controllers.DeletePricingEntry(svcs.Pricing, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.AdminPing())
		r.Get("/dashboard", controllers.AdminDashboard(svcs.Dashboard, logg))

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.AdminListSuppliers(svcs.Suppliers, logg))
			r.Post("/{supplierId}/decision", controllers.AdminDecideSupplier(svcs.Suppliers, logg))
			r.Route("/{supplierId}/rating-config", func(r chi.Router) {
				r.Get("/", controllers.AdminGetRatingConfig(svcs.Ratings, logg))
				r.Put("/", controllers.AdminSaveRatingConfig(svcs.Ratings, logg))
				r.Post("/reset", controllers.AdminResetRatingConfig(svcs.Ratings, logg))
			})
		})

		r.Route("/complaints", func(r chi.Router) {
			r.Get("/", controllers.AdminListComplaints(svcs.Complaints, logg))
			r.Post("/{complaintId}/status", controllers.AdminTransitionComplaint(svcs.Complaints, logg))
		})
	})

	return r
}
