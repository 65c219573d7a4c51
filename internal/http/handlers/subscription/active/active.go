// Package active реализует HTTP-обработчик получения активной подписки пользователя.
//
// Handler извлекает пользователя из контекста и возвращает его текущую
// активную подписку вместе с данными плана. Отсутствие активной подписки
// не является ошибкой: возвращается успешный ответ без данных.
package active

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/martin-karani/subscription-manager-api/internal/http/middlewarectx"
	"github.com/martin-karani/subscription-manager-api/internal/http/response"
	"github.com/martin-karani/subscription-manager-api/internal/lib/sl"
	"github.com/martin-karani/subscription-manager-api/internal/models"
)

// Handler обрабатывает запросы на получение активной подписки.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики подписок
}

// Service описывает интерфейс бизнес-логики чтения активной подписки.
type Service interface {
	GetActive(ctx context.Context, userID int) (*models.SubscriptionWithPlan, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Активная подписка пользователя
// @Description Возвращает текущую активную подписку с данными плана. Отсутствие активной подписки не является ошибкой.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.OKResponse "Активная подписка или пустой ответ"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/active [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.active"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(int)
	if !ok || userID <= 0 {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	subscription, err := h.service.GetActive(r.Context(), userID)
	if err != nil {
		log.Error("failed to read active subscription", sl.Err(err))
		w.WriteHeader(response.StatusFromError(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	if subscription == nil {
		log.Info("no active subscription", slog.Int("user_id", userID))
		render.JSON(w, r, response.OKWithData(nil))
		return
	}

	log.Info("active subscription retrieved",
		slog.Int("subscription_id", subscription.SubscriptionID))
	render.JSON(w, r, response.OKWithData(subscription))
}
