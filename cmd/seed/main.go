// Команда seed наполняет базу стартовыми тарифными планами и учётной
// записью администратора. Уже существующие записи пропускаются, поэтому
// команду можно запускать повторно.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/martin-karani/subscription-manager-api/internal/config"
	"github.com/martin-karani/subscription-manager-api/internal/lib/password"
	"github.com/martin-karani/subscription-manager-api/internal/lib/sl"
	"github.com/martin-karani/subscription-manager-api/internal/migrations"
	"github.com/martin-karani/subscription-manager-api/internal/models"
	"github.com/martin-karani/subscription-manager-api/internal/storage/repository"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@example.com"
	adminPassword = "SecurePassword123!"
)

func strPtr(s string) *string {
	return &s
}

func defaultPlans() []models.Plan {
	return []models.Plan{
		{
			Name:         "Free Tier",
			Price:        decimal.RequireFromString("0.00"),
			DurationDays: 36500,
			Description:  strPtr("Basic access, free forever."),
			Features:     strPtr("Limited access to core features, Community support"),
			IsActive:     true,
		},
		{
			Name:         "Basic Monthly",
			Price:        decimal.RequireFromString("9.99"),
			DurationDays: 30,
			Description:  strPtr("Standard features for individual users, billed monthly."),
			Features:     strPtr("All core features, Standard email support, Access to basic content"),
			IsActive:     true,
		},
		{
			Name:         "Pro Monthly",
			Price:        decimal.RequireFromString("29.99"),
			DurationDays: 30,
			Description:  strPtr("Advanced features and priority support, billed monthly."),
			Features:     strPtr("All core features, Advanced analytics, Priority email support, Access to premium content"),
			IsActive:     true,
		},
		{
			Name:         "Basic Annual",
			Price:        decimal.RequireFromString("99.99"),
			DurationDays: 365,
			Description:  strPtr("Standard features, billed annually (save ~17%)."),
			Features:     strPtr("All core features, Standard email support, Access to basic content"),
			IsActive:     true,
		},
	}
}

func main() {
	cfg := config.MustLoad()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("seeding database", slog.String("env", cfg.Env))

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", sl.Err(err))
		os.Exit(1)
	}

	added := 0
	for _, plan := range defaultPlans() {
		exists, err := db.PlanNameExists(ctx, plan.Name, 0)
		if err != nil {
			logger.Error("failed to check plan", slog.String("name", plan.Name), sl.Err(err))
			os.Exit(1)
		}
		if exists {
			logger.Info("plan already exists, skipped", slog.String("name", plan.Name))
			continue
		}
		if _, err := db.CreatePlan(ctx, plan); err != nil {
			logger.Error("failed to create plan", slog.String("name", plan.Name), sl.Err(err))
			os.Exit(1)
		}
		logger.Info("added plan", slog.String("name", plan.Name))
		added++
	}
	logger.Info("subscription plans seeded", slog.Int("added", added))

	_, err = db.GetUserByUsername(ctx, adminUsername)
	switch {
	case err == nil:
		logger.Info("admin user already exists, skipped", slog.String("username", adminUsername))
	case errors.Is(err, sql.ErrNoRows):
		hash, err := password.GetHash(adminPassword)
		if err != nil {
			logger.Error("failed to hash admin password", sl.Err(err))
			os.Exit(1)
		}
		user, err := db.CreateUser(ctx, adminUsername, adminEmail, hash, true)
		if err != nil {
			logger.Error("failed to create admin user", sl.Err(err))
			os.Exit(1)
		}
		logger.Info("admin user created, change the default password immediately",
			slog.Int("id", user.ID), slog.String("username", user.Username))
	default:
		logger.Error("failed to check admin user", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("seed data committed successfully")
}
