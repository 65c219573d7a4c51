// Package subscriptionmanager предоставляет маршруты для основного приложения.
package subscriptionmanager

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/auth/login"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/auth/me"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/auth/refresh"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/auth/register"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/health"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/plan/plancreate"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/plan/planlist"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/plan/planread"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/plan/planremove"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/plan/planupdate"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/subscription/active"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/subscription/cancel"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/subscription/history"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/subscription/subscribe"
	"github.com/martin-karani/subscription-manager-api/internal/http/handlers/subscription/upgrade"
	"github.com/martin-karani/subscription-manager-api/internal/http/middlewarectx"
	"github.com/martin-karani/subscription-manager-api/internal/lib/jwt"
	authservice "github.com/martin-karani/subscription-manager-api/internal/services/auth"
	planservice "github.com/martin-karani/subscription-manager-api/internal/services/plan"
	subscriptionservice "github.com/martin-karani/subscription-manager-api/internal/services/subscription"

	"log/slog"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker, authService *authservice.AuthService, planService *planservice.PlanService, subscriptionService *subscriptionservice.SubscriptionService) {
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
		r.Post("/refresh", refresh.New(logger, authService).ServeHTTP)
		r.Get("/plans", planlist.New(logger, planService).ServeHTTP)
		r.Get("/plans/{id}", planread.New(logger, planService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/me", me.New(logger, authService).ServeHTTP)
			r.Post("/subscriptions/subscribe", subscribe.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/cancel", cancel.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/upgrade", upgrade.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/active", active.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/history", history.New(logger, subscriptionService).ServeHTTP)
		})

		// Группа администратора: управление каталогом планов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.AdminOnlyMiddleware(logger))
			r.Post("/plans", plancreate.New(logger, planService).ServeHTTP)
			r.Put("/plans/{id}", planupdate.New(logger, planService).ServeHTTP)
			r.Delete("/plans/{id}", planremove.New(logger, planService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
