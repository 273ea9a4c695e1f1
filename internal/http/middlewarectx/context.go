// Package middlewarectx содержит HTTP middleware сервиса и ключи контекста запроса.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/tasktracker/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// Identity — ключ для аутентифицированного пользователя в контексте.
const Identity Key = "identity"

// WithIdentity возвращает контекст с аутентифицированным пользователем.
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, Identity, id)
}

// IdentityFrom извлекает пользователя, добавленного RequireAuth.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(Identity).(*models.Identity)
	return id, ok && id != nil
}
