// Package couchdb реализует HTTP-клиент документной базы данных с API CouchDB.
//
// Клиент выполняет одиночные запросы без повторов и аутентифицируется
// HTTP Basic с учётными данными сервиса.
package couchdb

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/tasktracker/internal/metrics"
)

const maxBodySize = 10 << 20

var (
	// ErrNotFound документ или база данных не найдены.
	ErrNotFound = errors.New("couchdb: not found")
	// ErrExists база данных уже существует.
	ErrExists = errors.New("couchdb: already exists")
	// ErrConflict ревизия документа устарела.
	ErrConflict = errors.New("couchdb: document update conflict")
	// ErrIllegalName имя базы данных не допускается сервером.
	ErrIllegalName = errors.New("couchdb: illegal database name")
	// ErrUnavailable база данных недоступна по сети.
	ErrUnavailable = errors.New("couchdb: unavailable")
)

// StatusError неуспешный ответ базы данных.
type StatusError struct {
	Code   int    // HTTP-статус ответа
	Reason string // Поле error из тела ответа
	Body   []byte // Тело ответа как есть
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("couchdb: status %d: %s", e.Code, e.Reason)
}

// Is сопоставляет статус ответа с ошибками пакета.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrExists:
		return e.Code == http.StatusPreconditionFailed && e.Reason == "file_exists"
	case ErrConflict:
		return e.Code == http.StatusConflict
	case ErrIllegalName:
		return e.Code == http.StatusBadRequest && e.Reason == "illegal_database_name"
	}
	return false
}

// Response сырой ответ базы данных.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK сообщает, что статус ответа 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DocResult ответ на создание, изменение или удаление документа.
type DocResult struct {
	OK  bool   `json:"ok"`
	ID  string `json:"id"`
	Rev string `json:"rev"`
}

// Client клиент CouchDB.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// New создаёт клиент. rawURL — корень сервера, например https://couch.example.com:5984/.
func New(rawURL, username, password string, timeout time.Duration) (*Client, error) {
	const op = "couchdb.New"
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: unsupported scheme %q", op, u.Scheme)
	}
	return &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// MaxUsernameBytes наибольшая длина имени пользователя в байтах, при которой
// имя персональной базы остаётся допустимым.
const MaxUsernameBytes = 115

// UserDB возвращает имя персональной базы пользователя в соглашении couch_peruser:
// "userdb-" и hex от имени. Имя пользователя чувствительно к регистру, а имена баз — нет,
// поэтому имя кодируется.
//
// Имя базы в CouchDB ограничено 238 символами, поэтому имя пользователя
// не должно превышать MaxUsernameBytes байт в UTF-8.
func UserDB(username string) string {
	return "userdb-" + hex.EncodeToString([]byte(username))
}

// Path собирает экранированный путь из сегментов.
func Path(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return "/" + strings.Join(escaped, "/")
}

// Do выполняет запрос и возвращает ответ с любым статусом.
// Ошибка возвращается только если ответ не получен.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	const op = "couchdb.Do"

	var reader io.Reader
	if body != nil {
		payload, err := encodeBody(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveStore(method, 0, time.Since(start))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.ObserveStore(method, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		return json.Marshal(body)
	}
}

// expect выполняет запрос и превращает неуспешный статус в *StatusError.
func (c *Client) expect(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return newStatusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("couchdb: decode response: %w", err)
	}
	return nil
}

func newStatusError(resp *Response) *StatusError {
	var body struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	_ = json.Unmarshal(resp.Body, &body)
	return &StatusError{Code: resp.StatusCode, Reason: body.Error, Body: resp.Body}
}

// Up проверяет доступность сервера.
func (c *Client) Up(ctx context.Context) error {
	const op = "couchdb.Up"
	if err := c.expect(ctx, http.MethodGet, "/_up", nil, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateDB создаёт базу данных. Если база уже есть, возвращает ошибку, совместимую с ErrExists.
func (c *Client) CreateDB(ctx context.Context, db string) error {
	const op = "couchdb.CreateDB"
	if err := c.expect(ctx, http.MethodPut, Path(db), nil, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EnsureDB создаёт базу данных, если её ещё нет.
func (c *Client) EnsureDB(ctx context.Context, db string) error {
	err := c.CreateDB(ctx, db)
	if errors.Is(err, ErrExists) {
		return nil
	}
	return err
}

// EnsureIndex создаёт Mango-индекс по полям. Повторное создание не является ошибкой.
func (c *Client) EnsureIndex(ctx context.Context, db, name string, fields ...string) error {
	const op = "couchdb.EnsureIndex"
	body := map[string]any{
		"index": map[string]any{"fields": fields},
		"name":  name,
		"type":  "json",
	}
	if err := c.expect(ctx, http.MethodPost, Path(db, "_index"), nil, body, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateDoc создаёт документ с идентификатором, назначенным базой.
func (c *Client) CreateDoc(ctx context.Context, db string, doc any) (*DocResult, error) {
	const op = "couchdb.CreateDoc"
	var res DocResult
	if err := c.expect(ctx, http.MethodPost, Path(db), nil, doc, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &res, nil
}

// GetDoc читает документ по идентификатору.
func (c *Client) GetDoc(ctx context.Context, db, id string, out any) error {
	const op = "couchdb.GetDoc"
	if err := c.expect(ctx, http.MethodGet, Path(db, id), nil, nil, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindQuery запрос _find.
type FindQuery struct {
	Selector map[string]any `json:"selector"`
	Limit    int            `json:"limit,omitempty"`
}

// Find выполняет Mango-запрос и возвращает найденные документы.
func (c *Client) Find(ctx context.Context, db string, q FindQuery) ([]json.RawMessage, error) {
	const op = "couchdb.Find"
	var res struct {
		Docs []json.RawMessage `json:"docs"`
	}
	if err := c.expect(ctx, http.MethodPost, Path(db, "_find"), nil, q, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res.Docs, nil
}
