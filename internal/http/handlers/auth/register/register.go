// Package register реализует HTTP-обработчик регистрации пользователя.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tasktracker/internal/http/response"
	"github.com/magabrotheeeer/tasktracker/internal/lib/sl"
)

// Сообщения об ошибках запроса.
const (
	MsgInvalidBody      = "Invalid request body."
	MsgCredentialsEmpty = "Username and password are required."
)

// Request — входные данные для регистрации.
type Request struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

// Response — ответ на успешную регистрацию.
type Response struct {
	response.Response
	ID string `json:"id"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, username, password string) (string, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт обработчик регистрации.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт персональную базу задач и учётную запись пользователя.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Имя пользователя и пароль"
// @Success 201 {object} Response
// @Failure 400 {object} response.Response "Некорректный запрос"
// @Failure 409 {object} response.Response "Имя пользователя занято"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Failure 503 {object} response.Response "База данных недоступна"
// @Router /api/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(MsgInvalidBody))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationResponse(err))
		return
	}

	id, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Error("registration failed", slog.String("username", req.Username), sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("user registered", slog.String("username", req.Username), slog.String("user_id", id))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{Response: response.OK(), ID: id})
}

func validationResponse(err error) response.Response {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return response.Error(MsgInvalidBody)
	}
	for _, e := range errs {
		if e.ActualTag() == "required" {
			return response.Error(MsgCredentialsEmpty)
		}
	}
	return response.ValidationError(errs)
}
