package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tasktracker/internal/http/response"
	"github.com/magabrotheeeer/tasktracker/internal/lib/apperr"
	"github.com/magabrotheeeer/tasktracker/internal/lib/sl"
	"github.com/magabrotheeeer/tasktracker/internal/models"
)

// Сообщения об отказе в доступе.
const (
	MsgNotAuthenticated = "Not authenticated."
	MsgInvalidToken     = "Invalid or expired token."
)

// Outcome итог проверки запроса.
type Outcome int

const (
	// Rejected запрос отклонён.
	Rejected Outcome = iota
	// Authenticated пользователь подтверждён.
	Authenticated
)

// Verification результат проверки сессии запроса.
type Verification struct {
	Outcome     Outcome
	Identity    *models.Identity // Заполнено при Authenticated
	Status      int              // HTTP-статус отказа
	Reason      string           // Сообщение отказа для клиента
	ClearCookie bool             // Клиенту нужно удалить cookie сессии
	Err         error            // Причина отказа, только для логов
}

// TokenValidator проверяет токен сессии.
type TokenValidator interface {
	ValidateToken(token string) (*models.Identity, error)
}

// IdentityChecker повторно проверяет учётную запись по ID.
type IdentityChecker interface {
	FindByID(ctx context.Context, id string) (*models.Identity, error)
}

// Authenticator проверяет cookie сессии входящих запросов.
type Authenticator struct {
	tokens     TokenValidator
	identities IdentityChecker
}

// NewAuthenticator создаёт проверку сессий. identities может быть nil,
// тогда учётная запись не перечитывается из хранилища.
func NewAuthenticator(tokens TokenValidator, identities IdentityChecker) *Authenticator {
	return &Authenticator{tokens: tokens, identities: identities}
}

// Verify проверяет запрос и возвращает пользователя или причину отказа.
func (a *Authenticator) Verify(r *http.Request) Verification {
	token := TokenFromRequest(r)
	if token == "" {
		return Verification{Outcome: Rejected, Status: http.StatusUnauthorized, Reason: MsgNotAuthenticated}
	}

	identity, err := a.tokens.ValidateToken(token)
	if err != nil {
		return Verification{
			Outcome:     Rejected,
			Status:      http.StatusUnauthorized,
			Reason:      MsgInvalidToken,
			ClearCookie: true,
			Err:         err,
		}
	}

	if a.identities != nil {
		stored, err := a.identities.FindByID(r.Context(), identity.UserID)
		if err != nil {
			appErr := apperr.From(err)
			return Verification{
				Outcome:     Rejected,
				Status:      appErr.Kind.Status(),
				Reason:      appErr.Message,
				ClearCookie: appErr.Kind == apperr.Unauthorized,
				Err:         err,
			}
		}
		if stored.Username != identity.Username {
			return Verification{
				Outcome:     Rejected,
				Status:      http.StatusUnauthorized,
				Reason:      MsgInvalidToken,
				ClearCookie: true,
			}
		}
	}

	return Verification{Outcome: Authenticated, Identity: identity}
}

// RequireAuth возвращает middleware, который пропускает только запросы с
// действительной сессией и добавляет пользователя в контекст.
func RequireAuth(a *Authenticator, cookies Cookies, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAuth"

			v := a.Verify(r)
			if v.Outcome != Authenticated {
				attrs := []any{slog.String("reason", v.Reason)}
				if v.Err != nil {
					attrs = append(attrs, sl.Err(v.Err))
				}
				log.With(
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				).Info("request rejected", attrs...)

				if v.ClearCookie {
					http.SetCookie(w, cookies.Clear())
				}
				render.Status(r, v.Status)
				render.JSON(w, r, response.Error(v.Reason))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), v.Identity)))
		})
	}
}
