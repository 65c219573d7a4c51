package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/martin-karani/subscription-manager-api/internal/models"
)

const planColumns = `id, name, description, price, duration_days, features, is_active, created_at, updated_at`

// scanPlan читает одну строку subscription_plans с учётом NULL-полей.
func scanPlan(row interface{ Scan(dest ...any) error }) (*models.Plan, error) {
	var p models.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays,
		&p.Features, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlan вставляет новый тарифный план и возвращает созданную запись.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscription_plans (name, description, price, duration_days, features, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + planColumns
	created, err := scanPlan(s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Description, plan.Price, plan.DurationDays, plan.Features, plan.IsActive))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetPlan возвращает тарифный план по его ID.
func (s *Storage) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`
	plan, err := scanPlan(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// ListPlans возвращает тарифные планы, отфильтрованные по признаку активности
// и отсортированные по возрастанию цены.
func (s *Storage) ListPlans(ctx context.Context, filter models.PlanFilter) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM subscription_plans`
	switch filter {
	case models.PlanFilterActive:
		query += ` WHERE is_active = TRUE`
	case models.PlanFilterInactive:
		query += ` WHERE is_active = FALSE`
	}
	query += ` ORDER BY price ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, plan)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePlan применяет частичное обновление тарифного плана и возвращает
// обновлённую запись. Изменяются только заданные в patch поля.
func (s *Storage) UpdatePlan(ctx context.Context, id int, patch models.PlanPatch) (*models.Plan, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	setClauses := make([]string, 0, 7)
	args := make([]any, 0, 7)
	argn := 1

	addClause := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argn))
		args = append(args, value)
		argn++
	}

	if patch.Name != nil {
		addClause("name", *patch.Name)
	}
	if patch.Description != nil {
		addClause("description", *patch.Description)
	}
	if patch.Price != nil {
		addClause("price", *patch.Price)
	}
	if patch.DurationDays != nil {
		addClause("duration_days", *patch.DurationDays)
	}
	if patch.Features != nil {
		addClause("features", *patch.Features)
	}
	if patch.IsActive != nil {
		addClause("is_active", *patch.IsActive)
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE subscription_plans SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argn, planColumns)
	args = append(args, id)

	plan, err := scanPlan(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// DeletePlan удаляет тарифный план по ID и возвращает количество удалённых строк.
func (s *Storage) DeletePlan(ctx context.Context, id int) (int, error) {
	const op = "storage.DeletePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscription_plans WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// PlanNameExists проверяет занятость имени плана, исключая запись с excludeID.
// Для проверки при создании передаётся excludeID = 0.
func (s *Storage) PlanNameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	const op = "storage.PlanNameExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM subscription_plans WHERE name = $1 AND id <> $2
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
