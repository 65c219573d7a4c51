// Package planlist реализует HTTP-обработчик получения списка тарифных планов.
//
// Handler разбирает параметр фильтрации active из строки запроса и возвращает
// планы, подходящие под фильтр. По умолчанию возвращаются только активные планы.
package planlist

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/martin-karani/subscription-manager-api/internal/http/response"
	"github.com/martin-karani/subscription-manager-api/internal/lib/sl"
	"github.com/martin-karani/subscription-manager-api/internal/models"
)

// Handler обрабатывает запросы на получение списка тарифных планов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики тарифных планов
}

// Service описывает интерфейс бизнес-логики выборки планов.
type Service interface {
	ListPlans(ctx context.Context, filter models.PlanFilter) ([]*models.Plan, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список тарифных планов
// @Description Возвращает список планов. Параметр active принимает значения true, false или all; по умолчанию true.
// @Tags Plans
// @Produce  json
// @Param active query string false "Фильтр активности: true, false или all" default(true)
// @Success 200 {object} response.OKResponse "Список планов"
// @Failure 422 {object} response.ErrorResponse "Недопустимое значение фильтра"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var filter models.PlanFilter
	switch strings.ToLower(r.URL.Query().Get("active")) {
	case "", "true":
		filter = models.PlanFilterActive
	case "false":
		filter = models.PlanFilterInactive
	case "all":
		filter = models.PlanFilterAll
	default:
		log.Error("invalid active filter value", slog.String("active", r.URL.Query().Get("active")))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("Invalid value for 'active' parameter. Use 'true', 'false' or 'all'."))
		return
	}

	plans, err := h.service.ListPlans(r.Context(), filter)
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		w.WriteHeader(response.StatusFromError(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("plans listed", slog.Int("count", len(plans)), slog.String("filter", string(filter)))
	render.JSON(w, r, response.OKWithData(plans))
}
