// Package me реализует HTTP-обработчик профиля текущего пользователя.
package me

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tasktracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tasktracker/internal/http/response"
)

// Response — пользователь текущей сессии.
type Response struct {
	response.Response
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

// Handler возвращает пользователя, подтверждённого RequireAuth.
type Handler struct{}

// New создаёт обработчик профиля.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Success 200 {object} Response
// @Failure 401 {object} response.Response "Нет сессии"
// @Router /api/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(middlewarectx.MsgNotAuthenticated))
		return
	}

	render.JSON(w, r, Response{
		Response: response.OK(),
		Username: identity.Username,
		UserID:   identity.UserID,
	})
}
