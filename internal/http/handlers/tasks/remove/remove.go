// Package remove реализует HTTP-обработчик удаления задачи.
package remove

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

// Service описывает удаление задачи.
type Service interface {
	Delete(ctx context.Context, username string, body []byte) (*couchdb.Response, error)
}

// Handler обрабатывает запрос удаления задачи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик удаления задачи.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удаление задачи
// @Description Удаляет задачу по _id и _rev из тела запроса.
// @Tags Tasks
// @Accept  json
// @Produce  json
// @Param request body models.Task true "Задача с _id и _rev"
// @Success 200 {object} couchdb.DocResult
// @Failure 400 {object} response.Response "Нет _id или _rev"
// @Failure 401 {object} response.Response "Нет сессии"
// @Router /api/tasks [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.remove"

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

	resp, err := h.service.Delete(r.Context(), identity.Username, body)
	if err != nil {
		log.Info("task not removed", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("task removal forwarded", slog.Int("status", resp.StatusCode))
	response.Raw(w, resp.StatusCode, resp.Body)
}
