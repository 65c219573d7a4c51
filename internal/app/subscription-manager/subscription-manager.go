package subscriptionmanager

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/martin-karani/subscription-manager-api/internal/cache"
	"github.com/martin-karani/subscription-manager-api/internal/config"
	"github.com/martin-karani/subscription-manager-api/internal/lib/jwt"
	"github.com/martin-karani/subscription-manager-api/internal/metrics"
	"github.com/martin-karani/subscription-manager-api/internal/migrations"
	authservice "github.com/martin-karani/subscription-manager-api/internal/services/auth"
	planservice "github.com/martin-karani/subscription-manager-api/internal/services/plan"
	subscriptionservice "github.com/martin-karani/subscription-manager-api/internal/services/subscription"
	"github.com/martin-karani/subscription-manager-api/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.AccessTTL, cfg.RefreshTTL)
	subscriptionMetrics := metrics.NewSubscriptionMetrics(prometheus.DefaultRegisterer)

	authService := authservice.NewAuthService(db, jwtMaker, logger)
	planService := planservice.NewPlanService(db, cacheRedis, subscriptionMetrics, logger)
	subscriptionService := subscriptionservice.NewSubscriptionService(db, cacheRedis, subscriptionMetrics, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, jwtMaker, authService, planService, subscriptionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
