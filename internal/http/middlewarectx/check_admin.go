package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/martin-karani/subscription-manager-api/internal/http/response"
)

// AdminOnlyMiddleware создает middleware для проверки прав администратора.
// Выполняется после JWTMiddleware и опирается на признак администратора,
// положенный им в контекст запроса.
func AdminOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isAdmin, ok := r.Context().Value(IsAdmin).(bool)
			if !ok {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			if !isAdmin {
				username, _ := r.Context().Value(User).(string)
				log.Warn("administrator access denied", slog.String("username", username))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("Forbidden: Administrator access required for this resource."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
