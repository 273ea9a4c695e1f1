// Package repository реализует доступ к учётным записям и задачам в документной базе.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
	"github.com/magabrotheeeer/tasktracker/internal/models"
)

const usernameIndex = "username-idx"

var (
	// ErrUserNotFound учётная запись не найдена.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists персональная база пользователя уже существует.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername из имени нельзя получить имя персональной базы.
	ErrInvalidUsername = errors.New("invalid username")
)

// Users хранилище учётных записей.
type Users struct {
	client *couchdb.Client
	authDB string
}

// NewUsers создаёт хранилище учётных записей поверх базы authDB.
func NewUsers(client *couchdb.Client, authDB string) *Users {
	return &Users{client: client, authDB: authDB}
}

// EnsureSchema создаёт базу учётных записей и индекс по имени пользователя, если их нет.
func (s *Users) EnsureSchema(ctx context.Context) error {
	const op = "storage.users.EnsureSchema"
	if err := s.client.EnsureDB(ctx, s.authDB); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.client.EnsureIndex(ctx, s.authDB, usernameIndex, "username"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindByUsername ищет учётную запись по точному совпадению имени.
// Возвращает первую найденную запись или ErrUserNotFound.
func (s *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.users.FindByUsername"
	docs, err := s.client.Find(ctx, s.authDB, couchdb.FindQuery{
		Selector: map[string]any{"username": username},
		Limit:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	var u models.User
	if err := json.Unmarshal(docs[0], &u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// FindByID читает учётную запись по идентификатору документа.
func (s *Users) FindByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.users.FindByID"
	var u models.User
	if err := s.client.GetDoc(ctx, s.authDB, id, &u); err != nil {
		if errors.Is(err, couchdb.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// CreateUserDatabase создаёт персональную базу задач пользователя.
// Существующая база означает занятое имя: возвращается ErrUserExists.
func (s *Users) CreateUserDatabase(ctx context.Context, username string) error {
	const op = "storage.users.CreateUserDatabase"
	if err := s.client.CreateDB(ctx, couchdb.UserDB(username)); err != nil {
		if errors.Is(err, couchdb.ErrExists) {
			return fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		if errors.Is(err, couchdb.ErrIllegalName) {
			return fmt.Errorf("%s: %w: %w", op, ErrInvalidUsername, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateIdentity сохраняет учётную запись и возвращает её идентификатор.
func (s *Users) CreateIdentity(ctx context.Context, user models.User) (string, error) {
	const op = "storage.users.CreateIdentity"
	user.ID, user.Rev = "", ""
	res, err := s.client.CreateDoc(ctx, s.authDB, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return res.ID, nil
}
