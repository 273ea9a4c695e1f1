// Package logout реализует HTTP-обработчик выхода пользователя.
//
// Токен сессии не отзывается на сервере: обработчик только удаляет cookie в браузере.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tasktracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tasktracker/internal/http/response"
)

// Handler обрабатывает HTTP-запросы выхода.
type Handler struct {
	log     *slog.Logger
	cookies middlewarectx.Cookies
}

// New создаёт обработчик выхода.
func New(log *slog.Logger, cookies middlewarectx.Cookies) *Handler {
	return &Handler{log: log, cookies: cookies}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /api/logout [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	h.log.Debug("session cookie cleared",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	http.SetCookie(w, h.cookies.Clear())
	render.JSON(w, r, response.OK())
}
