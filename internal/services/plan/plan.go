// Package services содержит бизнес-логику каталога тарифных планов.
//
// Сервис выполняет доменные проверки поверх хранилища: уникальность имени
// плана, корректность цены и длительности, запрет удаления плана с активными
// подписчиками. Списки и отдельные планы кешируются, мутации инвалидируют кеш.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/martin-karani/subscription-manager-api/internal/lib/errs"
	"github.com/martin-karani/subscription-manager-api/internal/lib/money"
	"github.com/martin-karani/subscription-manager-api/internal/metrics"
	"github.com/martin-karani/subscription-manager-api/internal/models"
	"github.com/martin-karani/subscription-manager-api/internal/storage/repository"
)

// PlanRepository определяет методы для работы с тарифными планами в хранилище.
type PlanRepository interface {
	// CreatePlan сохраняет новый план и возвращает созданную запись.
	CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error)
	// GetPlan возвращает план по ID.
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	// ListPlans возвращает планы по фильтру активности в порядке возрастания цены.
	ListPlans(ctx context.Context, filter models.PlanFilter) ([]*models.Plan, error)
	// UpdatePlan применяет частичное обновление и возвращает обновлённую запись.
	UpdatePlan(ctx context.Context, id int, patch models.PlanPatch) (*models.Plan, error)
	// DeletePlan удаляет план и возвращает количество удалённых записей.
	DeletePlan(ctx context.Context, id int) (int, error)
	// PlanNameExists проверяет занятость имени плана, исключая план excludeID.
	PlanNameExists(ctx context.Context, name string, excludeID int) (bool, error)
	// CountActiveSubscriptionsByPlan возвращает число активных подписок на план.
	CountActiveSubscriptionsByPlan(ctx context.Context, planID int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// PlanService реализует бизнес-логику каталога планов, включая кеширование.
type PlanService struct {
	repo    PlanRepository
	cache   Cache
	metrics metrics.SubscriptionMetrics
	log     *slog.Logger
}

// NewPlanService создает новый экземпляр PlanService.
func NewPlanService(repo PlanRepository, cache Cache, m metrics.SubscriptionMetrics, log *slog.Logger) *PlanService {
	return &PlanService{
		repo:    repo,
		cache:   cache,
		metrics: m,
		log:     log,
	}
}

// CreatePlan создает новый тарифный план. Имя плана должно быть уникальным,
// цена — неотрицательным десятичным числом, длительность — неотрицательной.
func (s *PlanService) CreatePlan(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error) {
	price, err := money.ParsePrice(req.Price)
	if err != nil {
		return nil, errs.Validation("Invalid price format. Price must be a valid number.")
	}
	if req.DurationDays == nil || *req.DurationDays < 0 {
		return nil, errs.Validation("Duration (days) must be a non-negative integer.")
	}

	exists, err := s.repo.PlanNameExists(ctx, req.Name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.Conflictf("A plan with name '%s' already exists.", req.Name)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	plan := models.Plan{
		Name:         req.Name,
		Description:  req.Description,
		Price:        price,
		DurationDays: *req.DurationDays,
		Features:     req.Features,
		IsActive:     isActive,
	}

	created, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, errs.Conflictf("A plan with name '%s' already exists.", req.Name)
		}
		return nil, err
	}

	s.log.Info("created new plan", slog.Int("id", created.ID), slog.String("name", created.Name))
	s.metrics.IncPlanMutation("create")
	s.invalidateListCaches()

	return created, nil
}

// GetPlan возвращает план по ID, используя кеш или репозиторий.
func (s *PlanService) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	var result *models.Plan
	cacheKey := fmt.Sprintf("plan:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read plan from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found && result != nil {
		return result, nil
	}

	result, err = s.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFoundf("Subscription Plan with ID %d not found.", id)
		}
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache plan", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// ListPlans возвращает планы по фильтру активности, отсортированные
// по возрастанию цены. Список кешируется отдельно для каждого фильтра.
func (s *PlanService) ListPlans(ctx context.Context, filter models.PlanFilter) ([]*models.Plan, error) {
	var result []*models.Plan
	cacheKey := fmt.Sprintf("plans:list:%s", filter)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read plans from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListPlans(ctx, filter)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []*models.Plan{}
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache plans", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// UpdatePlan применяет частичное обновление плана. Пустой запрос без единого
// поля не выполняет записи и возвращает план без изменений. Переименование
// заново проверяет уникальность имени, цена и длительность — те же правила,
// что и при создании.
func (s *PlanService) UpdatePlan(ctx context.Context, id int, req models.UpdatePlanRequest) (*models.Plan, error) {
	current, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFoundf("Subscription Plan with ID %d not found.", id)
		}
		return nil, err
	}
	if req.IsEmpty() {
		return current, nil
	}

	patch := models.PlanPatch{
		Description: req.Description,
		Features:    req.Features,
		IsActive:    req.IsActive,
	}
	if req.Price != nil {
		price, err := money.ParsePrice(*req.Price)
		if err != nil {
			return nil, errs.Validation("Invalid price format for update.")
		}
		patch.Price = &price
	}
	if req.DurationDays != nil {
		if *req.DurationDays < 0 {
			return nil, errs.Validation("Duration (days) must be a non-negative integer.")
		}
		patch.DurationDays = req.DurationDays
	}
	if req.Name != nil && *req.Name != current.Name {
		exists, err := s.repo.PlanNameExists(ctx, *req.Name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errs.Conflictf("Plan name '%s' already exists.", *req.Name)
		}
		patch.Name = req.Name
	}

	updated, err := s.repo.UpdatePlan(ctx, id, patch)
	if err != nil {
		if patch.Name != nil && repository.IsUniqueViolation(err) {
			return nil, errs.Conflictf("Plan name '%s' already exists.", *patch.Name)
		}
		return nil, err
	}

	s.log.Info("updated plan", slog.Int("id", id))
	s.metrics.IncPlanMutation("update")
	s.invalidatePlanCaches(id)

	return updated, nil
}

// DeletePlan удаляет план. План с активными подписчиками удалить нельзя:
// вместо удаления его следует деактивировать.
func (s *PlanService) DeletePlan(ctx context.Context, id int) error {
	current, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFoundf("Subscription Plan with ID %d not found.", id)
		}
		return err
	}

	count, err := s.repo.CountActiveSubscriptionsByPlan(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errs.Conflictf(
			"Cannot delete plan '%s'. It has %d active subscription(s). Consider deactivating the plan instead.",
			current.Name, count)
	}

	deleted, err := s.repo.DeletePlan(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return errs.NotFoundf("Subscription Plan with ID %d not found.", id)
	}

	s.log.Info("deleted plan", slog.Int("id", id), slog.String("name", current.Name))
	s.metrics.IncPlanMutation("delete")
	s.invalidatePlanCaches(id)

	return nil
}

func (s *PlanService) invalidatePlanCaches(id int) {
	cacheKey := fmt.Sprintf("plan:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate plan cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	s.invalidateListCaches()
}

func (s *PlanService) invalidateListCaches() {
	for _, filter := range []models.PlanFilter{models.PlanFilterActive, models.PlanFilterInactive, models.PlanFilterAll} {
		cacheKey := fmt.Sprintf("plans:list:%s", filter)
		if err := s.cache.Invalidate(cacheKey); err != nil {
			s.log.Warn("failed to invalidate plans cache", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
}
