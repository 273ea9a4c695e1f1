// Package update реализует HTTP-обработчик изменения задачи.
package update

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
	"github.com/magabrotheeeer/tasktracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tasktracker/internal/http/response"
	"github.com/magabrotheeeer/tasktracker/internal/lib/sl"
)

const maxBodySize = 1 << 20

// Service описывает изменение задачи.
type Service interface {
	Update(ctx context.Context, username string, body []byte) (*couchdb.Response, error)
}

// Handler обрабатывает запрос изменения задачи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик изменения задачи.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Изменение задачи
// @Description Заменяет документ задачи. Тело должно содержать _id и текущую _rev; устаревшая ревизия отклоняется базой (409).
// @Tags Tasks
// @Accept  json
// @Produce  json
// @Param request body models.Task true "Задача"
// @Success 201 {object} couchdb.DocResult
// @Failure 409 {object} map[string]string "Конфликт ревизий"
// @Failure 400 {object} response.Response "Нет _id или _rev"
// @Failure 401 {object} response.Response "Нет сессии"
// @Router /api/tasks [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(middlewarectx.MsgNotAuthenticated))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid request body."))
		return
	}

	resp, err := h.service.Update(r.Context(), identity.Username, body)
	if err != nil {
		log.Info("task not updated", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("task update forwarded", slog.Int("status", resp.StatusCode))
	response.Raw(w, resp.StatusCode, resp.Body)
}
