// Package services содержит логику бизнес-уровня для регистрации, входа и проверки сессий.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
	"github.com/magabrotheeeer/tasktracker/internal/lib/apperr"
	"github.com/magabrotheeeer/tasktracker/internal/lib/jwt"
	"github.com/magabrotheeeer/tasktracker/internal/lib/password"
	"github.com/magabrotheeeer/tasktracker/internal/lib/sl"
	"github.com/magabrotheeeer/tasktracker/internal/metrics"
	"github.com/magabrotheeeer/tasktracker/internal/models"
	"github.com/magabrotheeeer/tasktracker/internal/storage/repository"
)

// Сообщения, которые видит клиент.
const (
	MsgUsernameTaken      = "Username is already taken."
	MsgUsernameInvalid    = "Username is too long or contains unsupported characters."
	MsgCreateAccount      = "Could not create user account."
	MsgFinalizeRegister   = "Failed to finalize user registration."
	MsgInvalidCredentials = "Invalid username or password."
	MsgLoginFailed        = "Could not process login request."
	MsgTooManyAttempts    = "Too many login attempts. Try again later."
	MsgInvalidToken       = "Invalid or expired token."
	MsgUserNotFound       = "User not found."
	MsgStoreUnavailable   = "Could not reach authentication service."
)

// UserRepository описывает контракт хранилища учётных записей.
type UserRepository interface {
	// FindByUsername возвращает учётную запись по имени или repository.ErrUserNotFound.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByID возвращает учётную запись по идентификатору или repository.ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// CreateUserDatabase создаёт персональную базу или возвращает repository.ErrUserExists.
	CreateUserDatabase(ctx context.Context, username string) error
	// CreateIdentity сохраняет учётную запись и возвращает её ID.
	CreateIdentity(ctx context.Context, user models.User) (string, error)
}

// AttemptGuard ограничивает число неудачных попыток входа.
type AttemptGuard interface {
	Blocked(ctx context.Context, username string) (bool, error)
	Fail(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// AuthService отвечает за регистрацию, вход и проверку токенов сессии.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	guard    AttemptGuard
	log      *slog.Logger

	dummyHash string
	dummySalt string
}

// NewAuthService создаёт сервис. guard может быть nil, тогда попытки входа не ограничиваются.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, guard AttemptGuard, log *slog.Logger) *AuthService {
	salt := password.NewSalt()
	dummy, _ := password.GetHash(salt, salt)
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		guard:     guard,
		log:       log,
		dummyHash: dummy,
		dummySalt: salt,
	}
}

// Register создаёт персональную базу пользователя и учётную запись с новым хешем пароля.
// Возвращает ID учётной записи.
func (s *AuthService) Register(ctx context.Context, username, rawPassword string) (string, error) {
	const op = "services.auth.Register"
	log := s.log.With(slog.String("op", op), slog.String("username", username))

	if len(username) > couchdb.MaxUsernameBytes {
		return "", apperr.New(apperr.BadRequest, MsgUsernameInvalid, nil)
	}

	if err := s.users.CreateUserDatabase(ctx, username); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserExists):
			return "", apperr.New(apperr.Conflict, MsgUsernameTaken, err)
		case errors.Is(err, repository.ErrInvalidUsername):
			return "", apperr.New(apperr.BadRequest, MsgUsernameInvalid, err)
		case errors.Is(err, couchdb.ErrUnavailable):
			return "", apperr.New(apperr.ServiceUnavailable, MsgStoreUnavailable, err)
		}
		return "", apperr.New(apperr.Internal, MsgCreateAccount, err)
	}

	salt := password.NewSalt()
	hash, err := password.GetHash(rawPassword, salt)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return "", apperr.New(apperr.Internal, MsgFinalizeRegister, err)
	}

	id, err := s.users.CreateIdentity(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		// база пользователя уже создана, записи о нём нет: требуется ручная очистка
		log.Error("user database created without identity", sl.Err(err))
		return "", apperr.New(apperr.Internal, MsgFinalizeRegister, err)
	}

	log.Info("user registered", slog.String("user_id", id))
	return id, nil
}

// Login проверяет пароль и выпускает токен сессии.
// Неизвестное имя и неверный пароль дают одну и ту же ошибку.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, *models.Identity, error) {
	const op = "services.auth.Login"
	log := s.log.With(slog.String("op", op), slog.String("username", username))

	if s.guard != nil {
		blocked, err := s.guard.Blocked(ctx, username)
		if err != nil {
			log.Warn("failed to check login attempts", sl.Err(err))
		}
		if blocked {
			metrics.Login(metrics.LoginBlocked)
			return "", nil, apperr.New(apperr.TooManyRequests, MsgTooManyAttempts, nil)
		}
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		if errors.Is(err, couchdb.ErrUnavailable) {
			return "", nil, apperr.New(apperr.ServiceUnavailable, MsgStoreUnavailable, err)
		}
		return "", nil, apperr.New(apperr.Internal, MsgLoginFailed, err)
	}

	if user == nil {
		// сравнение с фиктивным хешем выравнивает время ответа для неизвестных имён
		password.CompareHash(s.dummyHash, rawPassword, s.dummySalt)
		s.fail(ctx, log, username)
		return "", nil, apperr.New(apperr.Unauthorized, MsgInvalidCredentials, err)
	}
	if !password.CompareHash(user.PasswordHash, rawPassword, user.Salt) {
		s.fail(ctx, log, username)
		return "", nil, apperr.New(apperr.Unauthorized, MsgInvalidCredentials, nil)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", nil, apperr.New(apperr.Internal, MsgLoginFailed, err)
	}
	if s.guard != nil {
		if err := s.guard.Reset(ctx, username); err != nil {
			log.Warn("failed to reset login attempts", sl.Err(err))
		}
	}
	metrics.Login(metrics.LoginSuccess)
	log.Info("user logged in", slog.String("user_id", user.ID))
	return token, &models.Identity{UserID: user.ID, Username: user.Username}, nil
}

func (s *AuthService) fail(ctx context.Context, log *slog.Logger, username string) {
	metrics.Login(metrics.LoginFailed)
	if s.guard == nil {
		return
	}
	if err := s.guard.Fail(ctx, username); err != nil {
		log.Warn("failed to count login attempt", sl.Err(err))
	}
}

// ValidateToken проверяет токен сессии и возвращает личность, записанную в нём.
func (s *AuthService) ValidateToken(token string) (*models.Identity, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized, MsgInvalidToken, err)
	}
	return &models.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// FindByID возвращает личность по ID учётной записи. Удалённая запись считается
// недействительными учётными данными.
func (s *AuthService) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, apperr.New(apperr.Unauthorized, MsgUserNotFound, err)
		case errors.Is(err, couchdb.ErrUnavailable):
			return nil, apperr.New(apperr.ServiceUnavailable, MsgStoreUnavailable, err)
		}
		return nil, apperr.New(apperr.Internal, MsgLoginFailed, err)
	}
	return &models.Identity{UserID: user.ID, Username: user.Username}, nil
}
