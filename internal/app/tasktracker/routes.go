// Package tasktracker собирает HTTP-приложение: маршруты, middleware и зависимости.
package tasktracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/tasktracker/internal/config"
	_ "github.com/magabrotheeeer/tasktracker/internal/docs"
	"github.com/magabrotheeeer/tasktracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/tasktracker/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/tasktracker/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/tasktracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/tasktracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/tasktracker/internal/http/handlers/tasks/create"
	"github.com/magabrotheeeer/tasktracker/internal/http/handlers/tasks/list"
	"github.com/magabrotheeeer/tasktracker/internal/http/handlers/tasks/remove"
	"github.com/magabrotheeeer/tasktracker/internal/http/handlers/tasks/update"
	"github.com/magabrotheeeer/tasktracker/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/tasktracker/internal/services/auth"
	taskservice "github.com/magabrotheeeer/tasktracker/internal/services/tasks"
)

// Deps зависимости, из которых собираются маршруты.
type Deps struct {
	Logger        *slog.Logger
	DB            health.Pinger
	AuthService   *authservice.AuthService
	TaskService   *taskservice.TaskService
	Cookies       middlewarectx.Cookies
	CheckIdentity bool
	RateLimit     config.RateLimit
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.Metrics,
	)

	var identities middlewarectx.IdentityChecker
	if d.CheckIdentity {
		identities = d.AuthService
	}
	authenticator := middlewarectx.NewAuthenticator(d.AuthService, identities)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(d.Logger, d.RateLimit.RPS, d.RateLimit.Burst))

		// Открытые конечные точки
		r.Post("/register", register.New(d.Logger, d.AuthService).ServeHTTP)
		r.Post("/login", login.New(d.Logger, d.AuthService, d.Cookies).ServeHTTP)
		logoutHandler := logout.New(d.Logger, d.Cookies)
		r.Get("/logout", logoutHandler.ServeHTTP)
		r.Post("/logout", logoutHandler.ServeHTTP)

		// Группа с проверкой cookie сессии
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth(authenticator, d.Cookies, d.Logger))
			r.Get("/me", me.New().ServeHTTP)
			r.Get("/tasks", list.New(d.Logger, d.TaskService).ServeHTTP)
			r.Post("/tasks", create.New(d.Logger, d.TaskService).ServeHTTP)
			r.Put("/tasks", update.New(d.Logger, d.TaskService).ServeHTTP)
			r.Delete("/tasks", remove.New(d.Logger, d.TaskService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(d.Logger, d.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
