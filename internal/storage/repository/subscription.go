package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/martin-karani/subscription-manager-api/internal/models"
)

const subscriptionColumns = `id, user_id, plan_id, start_date, end_date, status,
			      auto_renew, payment_intent_id, cancellation_reason, created_at, updated_at`

// scanSubscription читает одну строку user_subscriptions с учётом NULL-полей.
func scanSubscription(row interface{ Scan(dest ...any) error }) (*models.Subscription, error) {
	var sub models.Subscription
	var endDate sql.NullTime
	var paymentIntentID, cancellationReason sql.NullString

	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.StartDate, &endDate,
		&sub.Status, &sub.AutoRenew, &paymentIntentID, &cancellationReason,
		&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	if paymentIntentID.Valid {
		sub.PaymentIntentID = &paymentIntentID.String
	}
	if cancellationReason.Valid {
		sub.CancellationReason = &cancellationReason.String
	}
	return &sub, nil
}

// FindActiveForUpdate возвращает активную подписку пользователя с блокировкой строки
// или nil, если активной подписки нет. При нескольких активных записях берётся
// последняя по start_date.
func (s *Storage) FindActiveForUpdate(ctx context.Context, tx *sql.Tx, userID int) (*models.Subscription, error) {
	const op = "storage.FindActiveForUpdate"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM user_subscriptions
			  WHERE user_id = $1 AND status = 'active'
			  ORDER BY start_date DESC
			  LIMIT 1
			  FOR UPDATE`
	sub, err := scanSubscription(tx.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetSubscriptionForUpdate возвращает подписку по её ID и владельцу с блокировкой строки.
func (s *Storage) GetSubscriptionForUpdate(ctx context.Context, tx *sql.Tx, id, userID int) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionForUpdate"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM user_subscriptions
			  WHERE id = $1 AND user_id = $2
			  FOR UPDATE`
	sub, err := scanSubscription(tx.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// InsertSubscription вставляет новую запись подписки и возвращает её полностью.
func (s *Storage) InsertSubscription(ctx context.Context, tx *sql.Tx, sub models.Subscription) (*models.Subscription, error) {
	const op = "storage.InsertSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_subscriptions (user_id, plan_id, start_date, end_date, status, auto_renew)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + subscriptionColumns
	created, err := scanSubscription(tx.QueryRowContext(ctx, query,
		sub.UserID, sub.PlanID, sub.StartDate, sub.EndDate, sub.Status, sub.AutoRenew))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// CloseSubscription завершает запись подписки при вытеснении или апгрейде:
// проставляет итоговый статус, дату окончания и причину, отключает автопродление.
func (s *Storage) CloseSubscription(ctx context.Context, tx *sql.Tx, id int,
	status models.SubscriptionStatus, reason string, endDate time.Time) (*models.Subscription, error) {
	const op = "storage.CloseSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_subscriptions
			  SET status = $2, end_date = $3, auto_renew = FALSE,
			      cancellation_reason = $4, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + subscriptionColumns
	sub, err := scanSubscription(tx.QueryRowContext(ctx, query, id, status, endDate, reason))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// CancelSubscription помечает подписку отменённой по запросу пользователя.
// Дата окончания не изменяется: доступ сохраняется до конца оплаченного периода.
func (s *Storage) CancelSubscription(ctx context.Context, tx *sql.Tx, id int, reason string) (*models.Subscription, error) {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_subscriptions
			  SET status = 'cancelled', auto_renew = FALSE,
			      cancellation_reason = $2, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + subscriptionColumns
	sub, err := scanSubscription(tx.QueryRowContext(ctx, query, id, reason))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetActiveWithPlan возвращает активную подписку пользователя вместе с данными плана
// или nil, если активной подписки нет.
func (s *Storage) GetActiveWithPlan(ctx context.Context, userID int) (*models.SubscriptionWithPlan, error) {
	const op = "storage.GetActiveWithPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT us.id, us.user_id, us.plan_id, us.start_date, us.end_date, us.status,
				  us.auto_renew, us.created_at,
				  sp.name, sp.price, sp.duration_days, sp.features
			  FROM user_subscriptions us
			  JOIN subscription_plans sp ON us.plan_id = sp.id
			  WHERE us.user_id = $1 AND us.status = 'active'
			  ORDER BY us.start_date DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userID)

	var item models.SubscriptionWithPlan
	var endDate sql.NullTime
	var features sql.NullString
	err := row.Scan(&item.SubscriptionID, &item.UserID, &item.PlanID, &item.StartDate,
		&endDate, &item.Status, &item.AutoRenew, &item.SubscriptionCreatedAt,
		&item.PlanName, &item.PlanPrice, &item.PlanDurationDays, &features)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if endDate.Valid {
		item.EndDate = &endDate.Time
	}
	if features.Valid {
		item.PlanFeatures = &features.String
	}
	return &item, nil
}

// ListHistoryWithPlan возвращает страницу истории подписок пользователя
// вместе с данными планов, от новых записей к старым.
func (s *Storage) ListHistoryWithPlan(ctx context.Context, userID, limit, offset int) ([]*models.SubscriptionWithPlan, error) {
	const op = "storage.ListHistoryWithPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT us.id, us.user_id, us.plan_id, us.start_date, us.end_date, us.status,
				  us.auto_renew, us.created_at,
				  sp.name, sp.price, sp.duration_days
			  FROM user_subscriptions us
			  JOIN subscription_plans sp ON us.plan_id = sp.id
			  WHERE us.user_id = $1
			  ORDER BY us.start_date DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionWithPlan
	for rows.Next() {
		var item models.SubscriptionWithPlan
		var endDate sql.NullTime
		if err := rows.Scan(&item.SubscriptionID, &item.UserID, &item.PlanID, &item.StartDate,
			&endDate, &item.Status, &item.AutoRenew, &item.SubscriptionCreatedAt,
			&item.PlanName, &item.PlanPrice, &item.PlanDurationDays); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if endDate.Valid {
			item.EndDate = &endDate.Time
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountSubscriptionsByUser подсчитывает все записи подписок пользователя.
func (s *Storage) CountSubscriptionsByUser(ctx context.Context, userID int) (int, error) {
	const op = "storage.CountSubscriptionsByUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM user_subscriptions WHERE user_id = $1`
	var total int
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// CountActiveSubscriptionsByPlan подсчитывает активные подписки на план.
func (s *Storage) CountActiveSubscriptionsByPlan(ctx context.Context, planID int) (int, error) {
	const op = "storage.CountActiveSubscriptionsByPlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM user_subscriptions WHERE plan_id = $1 AND status = 'active'`
	var total int
	if err := s.DB.QueryRowContext(ctx, query, planID).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}
