// Package health реализует проверку готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tasktracker/internal/http/response"
	"github.com/magabrotheeeer/tasktracker/internal/lib/sl"
)

// Pinger проверяет доступность документной базы.
type Pinger interface {
	Up(ctx context.Context) error
}

// Handler отвечает 200, если документная база доступна, иначе 503.
type Handler struct {
	log *slog.Logger
	db  Pinger
}

// New создаёт обработчик проверки готовности.
func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.db.Up(r.Context()); err != nil {
		h.log.Warn("document store is down", slog.String("op", op), sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("Document store is unavailable."))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"couchdb": "up",
	}))
}
