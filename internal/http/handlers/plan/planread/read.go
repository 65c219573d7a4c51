// Package planread реализует HTTP-обработчик получения тарифного плана по ID.
//
// Handler извлекает ID из URL-параметров, вызывает бизнес-логику чтения плана
// и возвращает данные плана в JSON-формате. Неактивные планы также доступны
// для чтения по идентификатору.
package planread

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
	"github.com/martin-karani/subscription-manager-api/internal/models"
)

// Handler обрабатывает запросы на получение плана по уникальному идентификатору.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики тарифных планов
}

// Service описывает интерфейс бизнес-логики чтения плана.
type Service interface {
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить тарифный план
// @Description Возвращает тарифный план по его идентификатору.
// @Tags Plans
// @Produce  json
// @Param id path int true "Идентификатор плана"
// @Success 200 {object} response.OKResponse "Данные плана"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.read"

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

	plan, err := h.service.GetPlan(r.Context(), id)
	if err != nil {
		log.Error("failed to read plan", sl.Err(err))
		w.WriteHeader(response.StatusFromError(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("plan retrieved", slog.Int("plan_id", plan.ID))
	render.JSON(w, r, response.OKWithData(plan))
}
