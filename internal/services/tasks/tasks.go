// Package services содержит логику работы с задачами пользователя.
//
// Задачи передаются в документную базу как есть: сервис проверяет только
// форму запроса, а статус и тело ответа базы возвращаются клиенту без изменений.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
	"github.com/magabrotheeeer/tasktracker/internal/lib/apperr"
	"github.com/magabrotheeeer/tasktracker/internal/lib/sl"
	"github.com/magabrotheeeer/tasktracker/internal/models"
)

// Сообщения, которые видит клиент.
const (
	MsgEmptyBody        = "Request body cannot be empty."
	MsgInvalidJSON      = "Invalid JSON."
	MsgMissingIdentity  = "Missing _id or _rev."
	MsgInvalidTask      = "Task fields have invalid types."
	MsgStoreUnavailable = "Could not reach the database."
	MsgServerError      = "Server Error"
)

// TaskRepository описывает контракт хранилища задач.
type TaskRepository interface {
	List(ctx context.Context, username string) (*couchdb.Response, error)
	Create(ctx context.Context, username string, doc json.RawMessage) (*couchdb.Response, error)
	Update(ctx context.Context, username, id string, doc json.RawMessage) (*couchdb.Response, error)
	Delete(ctx context.Context, username, id, rev string) (*couchdb.Response, error)
}

// TaskService реализует операции над задачами пользователя.
type TaskService struct {
	repo TaskRepository
	log  *slog.Logger
}

// NewTaskService создаёт сервис задач.
func NewTaskService(repo TaskRepository, log *slog.Logger) *TaskService {
	return &TaskService{repo: repo, log: log}
}

type docRef struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev"`
}

// List возвращает задачи пользователя.
func (s *TaskService) List(ctx context.Context, username string) (*couchdb.Response, error) {
	resp, err := s.repo.List(ctx, username)
	if err != nil {
		return nil, s.storeError("services.tasks.List", err)
	}
	return resp, nil
}

// Create сохраняет новую задачу. Тело должно быть непустым JSON-объектом,
// известные поля задачи должны иметь свои типы, createdAt в RFC 3339.
func (s *TaskService) Create(ctx context.Context, username string, body []byte) (*couchdb.Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, apperr.New(apperr.BadRequest, MsgInvalidJSON, err)
	}
	if len(fields) == 0 {
		return nil, apperr.New(apperr.BadRequest, MsgEmptyBody, nil)
	}
	if err := checkFields(body); err != nil {
		return nil, err
	}

	resp, err := s.repo.Create(ctx, username, compact(body))
	if err != nil {
		return nil, s.storeError("services.tasks.Create", err)
	}
	return resp, nil
}

// Update заменяет задачу. Тело должно содержать _id и текущую ревизию _rev
// и проходить ту же проверку полей, что и в Create, иначе запрос отклоняется
// до обращения к базе.
func (s *TaskService) Update(ctx context.Context, username string, body []byte) (*couchdb.Response, error) {
	ref, err := parseRef(body)
	if err != nil {
		return nil, err
	}
	if err := checkFields(body); err != nil {
		return nil, err
	}

	resp, err := s.repo.Update(ctx, username, ref.ID, compact(body))
	if err != nil {
		return nil, s.storeError("services.tasks.Update", err)
	}
	return resp, nil
}

// Delete удаляет задачу по _id и _rev из тела запроса.
func (s *TaskService) Delete(ctx context.Context, username string, body []byte) (*couchdb.Response, error) {
	ref, err := parseRef(body)
	if err != nil {
		return nil, err
	}

	resp, err := s.repo.Delete(ctx, username, ref.ID, ref.Rev)
	if err != nil {
		return nil, s.storeError("services.tasks.Delete", err)
	}
	return resp, nil
}

func parseRef(body []byte) (*docRef, error) {
	var ref docRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return nil, apperr.New(apperr.BadRequest, MsgInvalidJSON, err)
	}
	if ref.ID == "" || ref.Rev == "" {
		return nil, apperr.New(apperr.BadRequest, MsgMissingIdentity, nil)
	}
	return &ref, nil
}

// checkFields отклоняет документ, который клиенты не смогут прочитать как задачу.
// Неизвестные поля сохраняются без проверки.
func checkFields(body []byte) error {
	var task models.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return apperr.New(apperr.BadRequest, MsgInvalidTask, err)
	}
	return nil
}

func (s *TaskService) storeError(op string, err error) error {
	s.log.Error("task store request failed", slog.String("op", op), sl.Err(err))
	if errors.Is(err, couchdb.ErrUnavailable) {
		return apperr.New(apperr.ServiceUnavailable, MsgStoreUnavailable, err)
	}
	return apperr.New(apperr.Internal, MsgServerError, err)
}

// compact убирает незначащие пробелы, тело уже проверено как JSON.
func compact(body []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return body
	}
	return buf.Bytes()
}
