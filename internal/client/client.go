// Package client клиент HTTP API трекера задач.
//
// Сессия хранится в cookie auth. Клиент сам подставляет её в запросы и
// забывает, когда сервер отвечает 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
	"github.com/magabrotheeeer/tasktracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tasktracker/internal/models"
)

const maxResponseSize = 4 << 20

var (
	// ErrUnauthorized сессии нет или она истекла.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrConflict ревизия задачи устарела или имя пользователя занято.
	ErrConflict = errors.New("conflict")
	// ErrNotLoggedIn запрос к защищённому маршруту без сохранённой сессии.
	ErrNotLoggedIn = errors.New("not logged in")
)

// APIError неуспешный ответ сервера.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Is сопоставляет статус с ErrUnauthorized и ErrConflict.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}

// Client клиент API. Не безопасен для одновременного использования из нескольких горутин.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New создаёт клиент для сервера baseURL, например http://localhost:8080.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL адрес сервера.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token текущий токен сессии или пустая строка.
func (c *Client) Token() string {
	return c.token
}

// SetToken восстанавливает сессию, например из файла.
func (c *Client) SetToken(token string) {
	c.token = token
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register создаёт учётную запись и возвращает её ID.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	const op = "client.Register"
	var out struct {
		ID string `json:"id"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/register", credentials{username, password}, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out.ID, nil
}

// Login входит и запоминает токен сессии из cookie ответа.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	const op = "client.Login"
	var out models.Identity
	resp, err := c.do(ctx, http.MethodPost, "/api/login", credentials{username, password}, &out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middlewarectx.CookieName && cookie.Value != "" {
			c.token = cookie.Value
		}
	}
	if c.token == "" {
		return nil, fmt.Errorf("%s: session cookie missing in response", op)
	}
	return &out, nil
}

// Logout сообщает серверу о выходе и забывает токен.
func (c *Client) Logout(ctx context.Context) error {
	const op = "client.Logout"
	_, err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
	c.token = ""
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Me возвращает пользователя текущей сессии.
func (c *Client) Me(ctx context.Context) (*models.Identity, error) {
	const op = "client.Me"
	var out models.Identity
	if err := c.authorized(ctx, http.MethodGet, "/api/me", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// ListTasks возвращает все задачи пользователя.
// Документы, которые нельзя прочитать как задачу, пропускаются.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	const op = "client.ListTasks"
	var docs []json.RawMessage
	if err := c.authorized(ctx, http.MethodGet, "/api/tasks", nil, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		var task models.Task
		if err := json.Unmarshal(doc, &task); err != nil {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

// CreateTask сохраняет новую задачу и возвращает назначенные базой ID и ревизию.
func (c *Client) CreateTask(ctx context.Context, task models.Task) (*couchdb.DocResult, error) {
	const op = "client.CreateTask"
	task.ID, task.Rev = "", ""
	var out couchdb.DocResult
	if err := c.authorized(ctx, http.MethodPost, "/api/tasks", task, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// UpdateTask заменяет задачу целиком и возвращает новую ревизию.
// task.Rev должна быть текущей, иначе вернётся ErrConflict.
func (c *Client) UpdateTask(ctx context.Context, task models.Task) (string, error) {
	const op = "client.UpdateTask"
	var out couchdb.DocResult
	if err := c.authorized(ctx, http.MethodPut, "/api/tasks", task, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out.Rev, nil
}

// DeleteTask удаляет задачу в ревизии rev.
func (c *Client) DeleteTask(ctx context.Context, id, rev string) error {
	const op = "client.DeleteTask"
	ref := struct {
		ID  string `json:"_id"`
		Rev string `json:"_rev"`
	}{id, rev}
	if err := c.authorized(ctx, http.MethodDelete, "/api/tasks", ref, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) authorized(ctx context.Context, method, path string, body, out any) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	_, err := c.do(ctx, method, path, body, out)
	if errors.Is(err, ErrUnauthorized) {
		c.token = ""
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: middlewarectx.CookieName, Value: c.token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}

// errorMessage достаёт текст ошибки из конверта API или из ответа базы документов.
func errorMessage(data []byte) string {
	var body struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	if body.Reason != "" {
		return body.Reason
	}
	return body.Error
}
