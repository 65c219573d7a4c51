// Package planremove реализует HTTP-обработчик удаления тарифного плана.
//
// Handler извлекает ID из URL-параметров и вызывает бизнес-логику удаления.
// План с активными подписками удалить нельзя: возвращается конфликт
// с предложением деактивировать план. Операция доступна только администраторам.
package planremove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/martin-karani/subscription-manager-api/internal/http/response"
	"github.com/martin-karani/subscription-manager-api/internal/lib/sl"
)

// Handler управляет HTTP-запросами на удаление тарифных планов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики тарифных планов
}

// Service описывает интерфейс бизнес-логики удаления плана.
type Service interface {
	DeletePlan(ctx context.Context, id int) error
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить тарифный план
// @Description Удаляет план по идентификатору. План с активными подписками удалить нельзя. Доступно только администраторам.
// @Tags Plans
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор плана"
// @Success 200 {object} response.OKResponse "План удален"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуются права администратора"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 409 {object} response.ErrorResponse "У плана есть активные подписки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	if err := h.service.DeletePlan(r.Context(), id); err != nil {
		log.Error("failed to delete plan", sl.Err(err))
		w.WriteHeader(response.StatusFromError(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("plan deleted", slog.Int("plan_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "Subscription plan deleted successfully.",
	}))
}
