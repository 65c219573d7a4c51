// Package metrics собирает счётчики жизненного цикла подписок для Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SubscriptionMetrics интерфейс для метрик жизненного цикла подписок
type SubscriptionMetrics interface {
	IncSubscriptionCreated(planName string)
	IncSubscriptionSuperseded(planName string)
	IncSubscriptionCancelled(planName string)
	IncSubscriptionUpgraded(planName string)
	IncPlanMutation(operation string)
}

type subscriptionMetrics struct {
	transitions   *prometheus.CounterVec
	planMutations *prometheus.CounterVec
}

// NewSubscriptionMetrics создает новые метрики жизненного цикла подписок
func NewSubscriptionMetrics(registry prometheus.Registerer) SubscriptionMetrics {
	transitions := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_transitions_total",
			Help: "The total number of subscription lifecycle transitions",
		},
		[]string{"transition", "plan"},
	)

	planMutations := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_plan_mutations_total",
			Help: "The total number of administrative plan mutations",
		},
		[]string{"operation"},
	)

	return &subscriptionMetrics{
		transitions:   transitions,
		planMutations: planMutations,
	}
}

// IncSubscriptionCreated увеличивает счетчик оформленных подписок
func (m *subscriptionMetrics) IncSubscriptionCreated(planName string) {
	m.transitions.WithLabelValues("created", planName).Inc()
}

// IncSubscriptionSuperseded увеличивает счетчик вытесненных подписок
func (m *subscriptionMetrics) IncSubscriptionSuperseded(planName string) {
	m.transitions.WithLabelValues("superseded", planName).Inc()
}

// IncSubscriptionCancelled увеличивает счетчик отмененных подписок
func (m *subscriptionMetrics) IncSubscriptionCancelled(planName string) {
	m.transitions.WithLabelValues("cancelled", planName).Inc()
}

// IncSubscriptionUpgraded увеличивает счетчик апгрейдов подписок
func (m *subscriptionMetrics) IncSubscriptionUpgraded(planName string) {
	m.transitions.WithLabelValues("upgraded", planName).Inc()
}

// IncPlanMutation увеличивает счетчик административных изменений планов
func (m *subscriptionMetrics) IncPlanMutation(operation string) {
	m.planMutations.WithLabelValues(operation).Inc()
}
