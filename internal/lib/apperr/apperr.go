// Package apperr описывает таксономию ошибок, видимых клиенту HTTP API.
//
// Каждая ошибка имеет вид (Kind), который однозначно определяет HTTP-статус,
// и безопасное для клиента сообщение. Исходная причина сохраняется для логов
// и доступна через errors.Unwrap, но клиенту не возвращается.
package apperr

import (
	"errors"
	"net/http"
)

// Kind вид ошибки.
type Kind int

// Виды ошибок.
const (
	Internal Kind = iota
	BadRequest
	Unauthorized
	Conflict
	TooManyRequests
	ServiceUnavailable
)

// String возвращает имя вида ошибки.
func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "BadRequest"
	case Unauthorized:
		return "Unauthorized"
	case Conflict:
		return "Conflict"
	case TooManyRequests:
		return "TooManyRequests"
	case ServiceUnavailable:
		return "ServiceUnavailable"
	default:
		return "InternalError"
	}
}

// Status возвращает HTTP-статус для вида ошибки.
func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Conflict:
		return http.StatusConflict
	case TooManyRequests:
		return http.StatusTooManyRequests
	case ServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error ошибка уровня API.
type Error struct {
	Kind    Kind   // Вид ошибки
	Message string // Сообщение для клиента
	Err     error  // Исходная причина, только для логов
}

// New создаёт ошибку указанного вида.
func New(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// From извлекает *Error из цепочки. Любая другая ошибка считается
// внутренней с обобщённым сообщением.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: Internal, Message: "Internal server error.", Err: err}
}

// IsKind сообщает, относится ли ошибка к указанному виду.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
