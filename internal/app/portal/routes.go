// Package portal предоставляет маршруты портала заявок.
package portal

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/workabroad/application-portal/internal/http/handlers/admin/approve"
	"github.com/workabroad/application-portal/internal/http/handlers/admin/demote"
	"github.com/workabroad/application-portal/internal/http/handlers/admin/export"
	adminlist "github.com/workabroad/application-portal/internal/http/handlers/admin/list"
	"github.com/workabroad/application-portal/internal/http/handlers/admin/promote"
	"github.com/workabroad/application-portal/internal/http/handlers/admin/reject"
	"github.com/workabroad/application-portal/internal/http/handlers/admin/removeuser"
	"github.com/workabroad/application-portal/internal/http/handlers/admin/sendletter"
	"github.com/workabroad/application-portal/internal/http/handlers/admin/users"
	"github.com/workabroad/application-portal/internal/http/handlers/admin/view"
	"github.com/workabroad/application-portal/internal/http/handlers/application/dashboard"
	"github.com/workabroad/application-portal/internal/http/handlers/application/passportoptions"
	"github.com/workabroad/application-portal/internal/http/handlers/application/step1"
	"github.com/workabroad/application-portal/internal/http/handlers/application/step2"
	"github.com/workabroad/application-portal/internal/http/handlers/application/step3"
	"github.com/workabroad/application-portal/internal/http/handlers/application/submit"
	"github.com/workabroad/application-portal/internal/http/handlers/application/summary"
	"github.com/workabroad/application-portal/internal/http/handlers/auth/login"
	"github.com/workabroad/application-portal/internal/http/handlers/auth/register"
	"github.com/workabroad/application-portal/internal/http/handlers/health"
	"github.com/workabroad/application-portal/internal/http/middlewarectx"
	adminservice "github.com/workabroad/application-portal/internal/services/admin"
	applicationservice "github.com/workabroad/application-portal/internal/services/application"
	authservice "github.com/workabroad/application-portal/internal/services/auth"
	"github.com/workabroad/application-portal/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *repository.Storage,
	authService *authservice.AuthService,
	applicationService *applicationservice.ApplicationService,
	adminService *adminservice.AdminService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Анкета заявителя, доступна после входа
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/application/dashboard", dashboard.New(logger, applicationService).ServeHTTP)
			r.Get("/application/passport-options", passportoptions.New(logger).ServeHTTP)
			r.Post("/application/step1", step1.New(logger, applicationService).ServeHTTP)
			r.Post("/application/step2", step2.New(logger, applicationService).ServeHTTP)
			r.Post("/application/step3", step3.New(logger, applicationService).ServeHTTP)
			r.Post("/application/step4", submit.New(logger, applicationService).ServeHTTP)
			r.Get("/application/summary", summary.New(logger, applicationService).ServeHTTP)
		})

		// Административный кабинет
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.AdminOnlyMiddleware(logger))
			r.Get("/admin/applications", adminlist.New(logger, adminService).ServeHTTP)
			r.Get("/admin/applications/export", export.New(logger, adminService).ServeHTTP)
			r.Get("/admin/applications/{id}", view.New(logger, adminService).ServeHTTP)
			r.Post("/admin/applications/{id}/approve", approve.New(logger, adminService).ServeHTTP)
			r.Post("/admin/applications/{id}/reject", reject.New(logger, adminService).ServeHTTP)
			r.Post("/admin/applications/{id}/letter", sendletter.New(logger, adminService).ServeHTTP)
			r.Get("/admin/users", users.New(logger, adminService).ServeHTTP)
			r.Post("/admin/users/{uid}/promote", promote.New(logger, adminService).ServeHTTP)
			r.Post("/admin/users/{uid}/demote", demote.New(logger, adminService).ServeHTTP)
			r.Delete("/admin/users/{uid}", removeuser.New(logger, adminService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
