// Package login реализует HTTP-обработчик входа пользователя.
//
// При успешной проверке пароля токен сессии устанавливается в cookie auth
// с атрибутами HttpOnly, Secure и SameSite=Strict.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tasktracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tasktracker/internal/http/response"
	"github.com/magabrotheeeer/tasktracker/internal/lib/sl"
	"github.com/magabrotheeeer/tasktracker/internal/models"
)

// Сообщения об ошибках запроса.
const (
	MsgInvalidBody      = "Invalid request body."
	MsgCredentialsEmpty = "Username and password are required."
)

// Request — структура входных данных для входа.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Response — ответ на успешный вход.
type Response struct {
	response.Response
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, username, password string) (string, *models.Identity, error)
}

// Handler обрабатывает HTTP-запросы для входа.
type Handler struct {
	log      *slog.Logger // Логгер для записи операций и ошибок
	service  Service      // Сервис аутентификации
	cookies  middlewarectx.Cookies
	validate *validator.Validate // Валидатор для проверки входных данных
}

// New создаёт новый экземпляр Handler.
func New(log *slog.Logger, service Service, cookies middlewarectx.Cookies) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		cookies:  cookies,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет имя и пароль, устанавливает cookie сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} Response "Успешный вход"
// @Failure 400 {object} response.Response "Некорректный запрос"
// @Failure 401 {object} response.Response "Неверные учетные данные"
// @Failure 429 {object} response.Response "Слишком много попыток"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /api/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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
		render.JSON(w, r, response.Error(MsgCredentialsEmpty))
		return
	}

	token, identity, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Info("login failed", slog.String("username", req.Username), sl.Err(err))
		response.AppError(w, r, err)
		return
	}

	log.Info("login success", slog.String("username", identity.Username))
	http.SetCookie(w, h.cookies.Session(token))
	render.JSON(w, r, Response{
		Response: response.OK(),
		Username: identity.Username,
		UserID:   identity.UserID,
	})
}
