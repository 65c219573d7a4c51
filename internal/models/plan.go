package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan описывает тарифный план подписки.
type Plan struct {
	ID           int             `json:"id"`            // Уникальный идентификатор плана
	Name         string          `json:"name"`          // Название плана (уникальное)
	Description  *string         `json:"description"`   // Описание плана
	Price        decimal.Decimal `json:"price"`         // Цена с точностью два знака
	DurationDays int             `json:"duration_days"` // Длительность в днях; 0 — бессрочный план
	Features     *string         `json:"features"`      // Перечень возможностей плана
	IsActive     bool            `json:"is_active"`     // Доступен ли план для оформления
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PlanFilter задаёт фильтр списка планов по признаку активности.
type PlanFilter string

const (
	// PlanFilterActive — только активные планы.
	PlanFilterActive PlanFilter = "active"
	// PlanFilterInactive — только неактивные планы.
	PlanFilterInactive PlanFilter = "inactive"
	// PlanFilterAll — все планы без фильтрации.
	PlanFilterAll PlanFilter = "all"
)

// PlanPatch перечисляет изменяемые поля плана для частичного обновления.
// Нулевой указатель означает, что поле не затрагивается.
type PlanPatch struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	DurationDays *int
	Features     *string
	IsActive     *bool
}

// IsEmpty сообщает, что ни одно поле не подлежит обновлению.
func (p PlanPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.DurationDays == nil && p.Features == nil && p.IsActive == nil
}

// CreatePlanRequest — тело запроса на создание тарифного плана.
// Цена передаётся десятичной строкой и нормализуется сервисом.
type CreatePlanRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Description  *string `json:"description"`
	Price        string  `json:"price" validate:"required"`
	DurationDays *int    `json:"duration_days" validate:"required"`
	Features     *string `json:"features"`
	IsActive     *bool   `json:"is_active"`
}

// UpdatePlanRequest — тело запроса на частичное обновление плана.
// Отсутствующие поля не изменяются.
type UpdatePlanRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description  *string `json:"description"`
	Price        *string `json:"price"`
	DurationDays *int    `json:"duration_days"`
	Features     *string `json:"features"`
	IsActive     *bool   `json:"is_active"`
}

// IsEmpty сообщает, что запрос не содержит ни одного поля для обновления.
func (r UpdatePlanRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Price == nil &&
		r.DurationDays == nil && r.Features == nil && r.IsActive == nil
}
