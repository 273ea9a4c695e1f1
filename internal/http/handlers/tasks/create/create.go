// Package create реализует HTTP-обработчик создания задачи.
package create

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

// Service описывает создание задачи.
type Service interface {
	Create(ctx context.Context, username string, body []byte) (*couchdb.Response, error)
}

// Handler обрабатывает запрос создания задачи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик создания задачи.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Создание задачи
// @Description Сохраняет документ задачи в базе пользователя. Ответ базы возвращается как есть.
// @Tags Tasks
// @Accept  json
// @Produce  json
// @Param request body models.Task true "Задача"
// @Success 201 {object} couchdb.DocResult
// @Failure 400 {object} response.Response "Пустое или некорректное тело"
// @Failure 401 {object} response.Response "Нет сессии"
// @Router /api/tasks [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.create"

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

	resp, err := h.service.Create(r.Context(), identity.Username, body)
	if err != nil {
		log.Info("task not created", sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("task created", slog.Int("status", resp.StatusCode))
	response.Raw(w, resp.StatusCode, resp.Body)
}
