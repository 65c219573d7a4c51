package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus — состояние записи подписки в истории пользователя.
type SubscriptionStatus string

const (
	// SubscriptionStatusActive — действующая подписка.
	SubscriptionStatusActive SubscriptionStatus = "active"
	// SubscriptionStatusCancelled — подписка отменена пользователем или вытеснена новой.
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	// SubscriptionStatusExpired — срок подписки истёк.
	SubscriptionStatusExpired SubscriptionStatus = "expired"
	// SubscriptionStatusUpgraded — подписка закрыта переходом на другой план.
	SubscriptionStatusUpgraded SubscriptionStatus = "upgraded"
	// SubscriptionStatusPendingCancellation — зарезервированный статус отложенной
	// отмены; принимается операцией отмены, но ни одной операцией не выставляется.
	SubscriptionStatusPendingCancellation SubscriptionStatus = "pending_cancellation"
)

// Subscription — одна запись в истории подписок пользователя.
// История ведётся в режиме дозаписи: переходы закрывают старую запись
// и добавляют новую, ничего не удаляя.
type Subscription struct {
	ID                 int                `json:"id"`
	UserID             int                `json:"user_id"`
	PlanID             int                `json:"plan_id"`
	StartDate          time.Time          `json:"start_date"`
	EndDate            *time.Time         `json:"end_date"` // nil — бессрочная подписка
	Status             SubscriptionStatus `json:"status"`
	AutoRenew          bool               `json:"auto_renew"`
	PaymentIntentID    *string            `json:"-"` // Ссылка на внешний платёж; сервис её не выставляет
	CancellationReason *string            `json:"cancellation_reason"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`

	// PlanDetails заполняется при возврате записи вместе с данными плана.
	PlanDetails *PlanSummary `json:"plan_details,omitempty"`
}

// PlanSummary — краткие сведения о плане внутри выдачи подписки.
type PlanSummary struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"duration_days"`
}

// SubscriptionWithPlan — строка типизированной выборки подписки,
// соединённой с тарифным планом.
type SubscriptionWithPlan struct {
	SubscriptionID        int                `json:"subscription_id"`
	UserID                int                `json:"user_id"`
	PlanID                int                `json:"plan_id"`
	StartDate             time.Time          `json:"start_date"`
	EndDate               *time.Time         `json:"end_date"`
	Status                SubscriptionStatus `json:"status"`
	AutoRenew             bool               `json:"auto_renew"`
	SubscriptionCreatedAt time.Time          `json:"subscription_created_at"`
	PlanName              string             `json:"plan_name"`
	PlanPrice             decimal.Decimal    `json:"plan_price"`
	PlanDurationDays      int                `json:"plan_duration_days"`
	PlanFeatures          *string            `json:"plan_features,omitempty"`
}

// Pagination описывает параметры страницы выдачи.
type Pagination struct {
	TotalItems   int `json:"total_items"`
	CurrentPage  int `json:"current_page"`
	ItemsPerPage int `json:"items_per_page"`
	TotalPages   int `json:"total_pages"`
}

// SubscriptionHistory — страница истории подписок пользователя.
type SubscriptionHistory struct {
	Items      []*SubscriptionWithPlan `json:"items"`
	Pagination Pagination              `json:"pagination"`
}

// CalculateEndDate возвращает дату окончания подписки: начало плюс
// durationDays календарных дней. При нулевой длительности подписка
// бессрочная и дата окончания отсутствует. Функция чистая: дата
// окончания всегда пересчитывается из начала и длительности плана.
func CalculateEndDate(start time.Time, durationDays int) *time.Time {
	if durationDays <= 0 {
		return nil
	}
	end := start.AddDate(0, 0, durationDays)
	return &end
}

// SubscribeRequest — тело запроса на оформление подписки.
type SubscribeRequest struct {
	PlanID int `json:"plan_id" validate:"required,gt=0"`
}

// CancelRequest — тело запроса на отмену подписки. Оба поля необязательны:
// без subscription_id отменяется текущая активная подписка,
// без reason подставляется причина по умолчанию.
type CancelRequest struct {
	SubscriptionID int    `json:"subscription_id" validate:"omitempty,gt=0"`
	Reason         string `json:"reason"`
}

// UpgradeRequest — тело запроса на переход на другой план.
type UpgradeRequest struct {
	NewPlanID int `json:"new_plan_id" validate:"required,gt=0"`
}
