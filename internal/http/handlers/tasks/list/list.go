// Package list реализует HTTP-обработчик получения задач пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
	"github.com/magabrotheeeer/tasktracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tasktracker/internal/http/response"
	"github.com/magabrotheeeer/tasktracker/internal/lib/sl"
)

// Service описывает получение задач.
type Service interface {
	List(ctx context.Context, username string) (*couchdb.Response, error)
}

// Handler обрабатывает запрос списка задач.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик списка задач.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список задач
// @Description Возвращает все задачи текущего пользователя массивом документов.
// @Tags Tasks
// @Produce  json
// @Success 200 {array} models.Task
// @Failure 401 {object} response.Response "Нет сессии"
// @Failure 503 {object} response.Response "База данных недоступна"
// @Router /api/tasks [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.list"

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

	resp, err := h.service.List(r.Context(), identity.Username)
	if err != nil {
		log.Error("failed to list tasks", sl.Err(err))
		response.AppError(w, r, err)
		return
	}
	if !resp.OK() {
		log.Warn("store rejected list", slog.Int("status", resp.StatusCode))
	}
	response.Raw(w, resp.StatusCode, resp.Body)
}
