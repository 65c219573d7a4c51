// Package services содержит бизнес-логику жизненного цикла подписок.
//
// История подписок ведётся в режиме дозаписи: оформление при действующей
// подписке вытесняет её, переход на другой план закрывает старую запись
// со статусом upgraded, отмена помечает запись без удаления. Все переходы,
// затрагивающие две записи, выполняются в одной транзакции хранилища.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/martin-karani/subscription-manager-api/internal/lib/errs"
	"github.com/martin-karani/subscription-manager-api/internal/metrics"
	"github.com/martin-karani/subscription-manager-api/internal/models"
)

// SubscriptionRepository определяет методы для работы с записями подписок в хранилище.
type SubscriptionRepository interface {
	// InTx выполняет fn внутри транзакции с сериализуемой изоляцией.
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	// GetUser возвращает пользователя по ID.
	GetUser(ctx context.Context, userID int) (*models.User, error)
	// GetPlan возвращает тарифный план по ID.
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	// FindActiveForUpdate возвращает активную подписку пользователя под блокировкой
	// строки или nil, если активной подписки нет.
	FindActiveForUpdate(ctx context.Context, tx *sql.Tx, userID int) (*models.Subscription, error)
	// GetSubscriptionForUpdate возвращает подписку пользователя по ID под блокировкой строки.
	GetSubscriptionForUpdate(ctx context.Context, tx *sql.Tx, id, userID int) (*models.Subscription, error)
	// InsertSubscription добавляет новую запись подписки.
	InsertSubscription(ctx context.Context, tx *sql.Tx, sub models.Subscription) (*models.Subscription, error)
	// CloseSubscription завершает запись при вытеснении или апгрейде.
	CloseSubscription(ctx context.Context, tx *sql.Tx, id int,
		status models.SubscriptionStatus, reason string, endDate time.Time) (*models.Subscription, error)
	// CancelSubscription помечает запись отменённой, не меняя дату окончания.
	CancelSubscription(ctx context.Context, tx *sql.Tx, id int, reason string) (*models.Subscription, error)
	// GetActiveWithPlan возвращает активную подписку вместе с данными плана или nil.
	GetActiveWithPlan(ctx context.Context, userID int) (*models.SubscriptionWithPlan, error)
	// ListHistoryWithPlan возвращает страницу истории подписок с данными планов.
	ListHistoryWithPlan(ctx context.Context, userID, limit, offset int) ([]*models.SubscriptionWithPlan, error)
	// CountSubscriptionsByUser подсчитывает все записи подписок пользователя.
	CountSubscriptionsByUser(ctx context.Context, userID int) (int, error)
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

// SubscriptionService реализует переходы жизненного цикла подписок и выборки истории.
type SubscriptionService struct {
	repo    SubscriptionRepository
	cache   Cache
	metrics metrics.SubscriptionMetrics
	log     *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache,
	m metrics.SubscriptionMetrics, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:    repo,
		cache:   cache,
		metrics: m,
		log:     log,
	}
}

// Subscribe оформляет подписку пользователя на план. Действующая подписка,
// если она есть, вытесняется: закрывается со статусом cancelled и причиной
// вытеснения, дата окончания ставится в момент перехода. Обе записи
// фиксируются в одной транзакции.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, planID int) (*models.Subscription, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFoundf("User with ID %d not found.", userID)
		}
		return nil, err
	}
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFoundf("Subscription Plan with ID %d not found.", planID)
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, errs.Conflictf("Plan '%s' is not active and cannot be subscribed to.", plan.Name)
	}

	var created *models.Subscription
	superseded := false
	err = s.repo.InTx(ctx, func(tx *sql.Tx) error {
		active, err := s.repo.FindActiveForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if active != nil {
			reason := fmt.Sprintf("Superseded by new subscription to plan '%s'.", plan.Name)
			if _, err := s.repo.CloseSubscription(ctx, tx, active.ID,
				models.SubscriptionStatusCancelled, reason, now); err != nil {
				return err
			}
			superseded = true
		}
		created, err = s.repo.InsertSubscription(ctx, tx, models.Subscription{
			UserID:    userID,
			PlanID:    planID,
			StartDate: now,
			EndDate:   models.CalculateEndDate(now, plan.DurationDays),
			Status:    models.SubscriptionStatusActive,
			AutoRenew: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	created.PlanDetails = &models.PlanSummary{
		Name:         plan.Name,
		Price:        plan.Price,
		DurationDays: plan.DurationDays,
	}

	s.log.Info("subscribed user to plan",
		slog.Int("user_id", userID), slog.Int("subscription_id", created.ID),
		slog.String("plan", plan.Name), slog.Bool("superseded", superseded))
	if superseded {
		s.metrics.IncSubscriptionSuperseded(plan.Name)
	}
	s.metrics.IncSubscriptionCreated(plan.Name)
	s.invalidateActiveCache(userID)

	return created, nil
}

// Cancel отменяет подписку пользователя. С указанным subscriptionID отменяется
// именно эта запись, и она должна принадлежать пользователю; без него —
// текущая активная подписка. Запись помечается отменённой, автопродление
// отключается, дата окончания не меняется: доступ сохраняется до конца
// оплаченного периода.
func (s *SubscriptionService) Cancel(ctx context.Context, userID int, req models.CancelRequest) (*models.Subscription, error) {
	reason := req.Reason
	if reason == "" {
		reason = "User initiated cancellation."
	}

	var cancelled *models.Subscription
	var plan *models.Plan
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		var sub *models.Subscription
		var err error
		if req.SubscriptionID > 0 {
			sub, err = s.repo.GetSubscriptionForUpdate(ctx, tx, req.SubscriptionID, userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return errs.NotFoundf("Subscription with ID %d not found or does not belong to this user.", req.SubscriptionID)
				}
				return err
			}
		} else {
			sub, err = s.repo.FindActiveForUpdate(ctx, tx, userID)
			if err != nil {
				return err
			}
			if sub == nil {
				return errs.NotFound("No active subscription found to cancel for this user.")
			}
		}
		if sub.Status != models.SubscriptionStatusActive &&
			sub.Status != models.SubscriptionStatusPendingCancellation {
			return errs.Conflictf("Subscription is already '%s' and cannot be cancelled.", sub.Status)
		}
		if plan, err = s.repo.GetPlan(ctx, sub.PlanID); err != nil {
			return err
		}
		cancelled, err = s.repo.CancelSubscription(ctx, tx, sub.ID, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	cancelled.PlanDetails = &models.PlanSummary{
		Name:         plan.Name,
		Price:        plan.Price,
		DurationDays: plan.DurationDays,
	}

	s.log.Info("cancelled subscription",
		slog.Int("user_id", userID), slog.Int("subscription_id", cancelled.ID),
		slog.String("reason", reason))
	s.metrics.IncSubscriptionCancelled(plan.Name)
	s.invalidateActiveCache(userID)

	return cancelled, nil
}

// Upgrade переводит пользователя на другой план. Активная подписка закрывается
// со статусом upgraded, новая создаётся в той же транзакции. Без активной
// подписки переход вырождается в обычное оформление. Переход на тот же план
// отклоняется как конфликт.
func (s *SubscriptionService) Upgrade(ctx context.Context, userID, newPlanID int) (*models.Subscription, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFoundf("User with ID %d not found.", userID)
		}
		return nil, err
	}
	newPlan, err := s.repo.GetPlan(ctx, newPlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFoundf("Subscription Plan with ID %d not found.", newPlanID)
		}
		return nil, err
	}
	if !newPlan.IsActive {
		return nil, errs.Conflictf("New plan '%s' is not active and cannot be upgraded to.", newPlan.Name)
	}

	var created *models.Subscription
	upgraded := false
	err = s.repo.InTx(ctx, func(tx *sql.Tx) error {
		active, err := s.repo.FindActiveForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if active != nil {
			if active.PlanID == newPlanID {
				return errs.Conflict("User is already subscribed to this plan.")
			}
			reason := fmt.Sprintf("Upgraded to plan '%s'.", newPlan.Name)
			if _, err := s.repo.CloseSubscription(ctx, tx, active.ID,
				models.SubscriptionStatusUpgraded, reason, now); err != nil {
				return err
			}
			upgraded = true
		}
		created, err = s.repo.InsertSubscription(ctx, tx, models.Subscription{
			UserID:    userID,
			PlanID:    newPlanID,
			StartDate: now,
			EndDate:   models.CalculateEndDate(now, newPlan.DurationDays),
			Status:    models.SubscriptionStatusActive,
			AutoRenew: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	created.PlanDetails = &models.PlanSummary{
		Name:         newPlan.Name,
		Price:        newPlan.Price,
		DurationDays: newPlan.DurationDays,
	}

	s.log.Info("upgraded user to plan",
		slog.Int("user_id", userID), slog.Int("subscription_id", created.ID),
		slog.String("plan", newPlan.Name), slog.Bool("had_active", upgraded))
	if upgraded {
		s.metrics.IncSubscriptionUpgraded(newPlan.Name)
	} else {
		s.metrics.IncSubscriptionCreated(newPlan.Name)
	}
	s.invalidateActiveCache(userID)

	return created, nil
}

// GetActive возвращает активную подписку пользователя вместе с данными плана,
// используя кеш или репозиторий. Отсутствие активной подписки — нормальный
// исход, возвращается nil без ошибки.
func (s *SubscriptionService) GetActive(ctx context.Context, userID int) (*models.SubscriptionWithPlan, error) {
	var result *models.SubscriptionWithPlan
	cacheKey := fmt.Sprintf("subscription:active:%d", userID)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read active subscription from cache",
			slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found && result != nil {
		return result, nil
	}

	result, err = s.repo.GetActiveWithPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	if result != nil {
		if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
			s.log.Warn("failed to cache active subscription",
				slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	return result, nil
}

// History возвращает страницу истории подписок пользователя, от новых к старым.
// Значения номера страницы и размера вне допустимых границ приводятся
// к ближайшим допустимым, а не отклоняются.
func (s *SubscriptionService) History(ctx context.Context, userID, page, perPage int) (*models.SubscriptionHistory, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	total, err := s.repo.CountSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListHistoryWithPlan(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.SubscriptionWithPlan{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return &models.SubscriptionHistory{
		Items: items,
		Pagination: models.Pagination{
			TotalItems:   total,
			CurrentPage:  page,
			ItemsPerPage: perPage,
			TotalPages:   totalPages,
		},
	}, nil
}

func (s *SubscriptionService) invalidateActiveCache(userID int) {
	cacheKey := fmt.Sprintf("subscription:active:%d", userID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate active subscription cache",
			slog.String("key", cacheKey), slog.Any("err", err))
	}
}
