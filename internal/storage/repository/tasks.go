package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
)

// Tasks хранилище задач. Каждый пользователь работает только со своей базой,
// имя которой выводится из имени пользователя.
//
// Методы возвращают ответ базы как есть: статус и тело передаются клиенту
// без интерпретации, в том числе конфликты ревизий.
type Tasks struct {
	client *couchdb.Client
}

// NewTasks создаёт хранилище задач.
func NewTasks(client *couchdb.Client) *Tasks {
	return &Tasks{client: client}
}

// List возвращает все задачи пользователя JSON-массивом документов.
// Проектные документы (_design/) пропускаются. Неуспешный ответ базы возвращается без изменений.
func (s *Tasks) List(ctx context.Context, username string) (*couchdb.Response, error) {
	const op = "storage.tasks.List"
	resp, err := s.client.Do(ctx, http.MethodGet, couchdb.Path(couchdb.UserDB(username), "_all_docs"),
		url.Values{"include_docs": {"true"}}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !resp.OK() {
		return resp, nil
	}

	var all struct {
		Rows []struct {
			ID  string          `json:"id"`
			Doc json.RawMessage `json:"doc"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(resp.Body, &all); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	docs := make([]json.RawMessage, 0, len(all.Rows))
	for _, row := range all.Rows {
		if strings.HasPrefix(row.ID, "_design/") || len(row.Doc) == 0 {
			continue
		}
		docs = append(docs, row.Doc)
	}
	body, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &couchdb.Response{StatusCode: http.StatusOK, Body: body}, nil
}

// Create добавляет документ задачи в базу пользователя.
func (s *Tasks) Create(ctx context.Context, username string, doc json.RawMessage) (*couchdb.Response, error) {
	const op = "storage.tasks.Create"
	resp, err := s.client.Do(ctx, http.MethodPost, couchdb.Path(couchdb.UserDB(username)), nil, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

// Update заменяет документ задачи. Документ должен содержать текущую ревизию _rev.
func (s *Tasks) Update(ctx context.Context, username, id string, doc json.RawMessage) (*couchdb.Response, error) {
	const op = "storage.tasks.Update"
	resp, err := s.client.Do(ctx, http.MethodPut, couchdb.Path(couchdb.UserDB(username), id), nil, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

// Delete удаляет документ задачи в ревизии rev.
func (s *Tasks) Delete(ctx context.Context, username, id, rev string) (*couchdb.Response, error) {
	const op = "storage.tasks.Delete"
	resp, err := s.client.Do(ctx, http.MethodDelete, couchdb.Path(couchdb.UserDB(username), id),
		url.Values{"rev": {rev}}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}
