// Package history реализует HTTP-обработчик получения истории подписок пользователя.
//
// Handler разбирает параметры пагинации из строки запроса и возвращает
// страницу истории, отсортированной от новых записей к старым. Некорректные
// значения параметров заменяются значениями по умолчанию.
package history

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/martin-karani/subscription-manager-api/internal/http/middlewarectx"
	"github.com/martin-karani/subscription-manager-api/internal/http/response"
	"github.com/martin-karani/subscription-manager-api/internal/lib/sl"
	"github.com/martin-karani/subscription-manager-api/internal/models"
)

// Handler обрабатывает запросы на получение истории подписок.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики подписок
}

// Service описывает интерфейс бизнес-логики чтения истории подписок.
type Service interface {
	History(ctx context.Context, userID, page, perPage int) (*models.SubscriptionHistory, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// queryInt возвращает целочисленный параметр запроса или значение по умолчанию.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// ServeHTTP godoc
// @Summary История подписок пользователя
// @Description Возвращает страницу истории подписок от новых записей к старым. Параметры page и per_page задают пагинацию.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы" default(1)
// @Param per_page query int false "Размер страницы, не более 100" default(10)
// @Success 200 {object} response.OKResponse "Страница истории"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.history"

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

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)

	history, err := h.service.History(r.Context(), userID, page, perPage)
	if err != nil {
		log.Error("failed to read subscription history", sl.Err(err))
		w.WriteHeader(response.StatusFromError(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("subscription history retrieved",
		slog.Int("user_id", userID),
		slog.Int("count", len(history.Items)))
	render.JSON(w, r, response.OKWithData(history))
}
