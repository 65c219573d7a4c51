// Package health реализует HTTP-обработчик проверки работоспособности сервиса.
package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/martin-karani/subscription-manager-api/internal/http/response"
)

// Handler обрабатывает запросы проверки работоспособности.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Проверка работоспособности
// @Description Возвращает состояние сервиса и текущее время.
// @Tags Health
// @Produce  json
// @Success 200 {object} response.OKResponse "Сервис работает"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	h.log.Debug("health check endpoint was called", slog.String("op", op))

	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message":   "Subscription Manager API is healthy!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}))
}
