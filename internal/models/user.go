// Package models содержит доменные модели сервиса: учётную запись пользователя,
// задачу и аутентифицированную личность запроса.
package models

import "time"

// User представляет зарегистрированного пользователя, как он хранится
// в базе учётных записей.
type User struct {
	ID           string    `json:"_id,omitempty"`  // Идентификатор документа, назначается базой
	Rev          string    `json:"_rev,omitempty"` // Ревизия документа
	Username     string    `json:"username"`       // Имя пользователя, уникальное, чувствительно к регистру
	PasswordHash string    `json:"passwordHash"`   // hex-хеш пароля
	Salt         string    `json:"salt"`           // Персональная соль
	CreatedAt    time.Time `json:"createdAt"`      // Дата регистрации
}

// Identity аутентифицированный пользователь запроса.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}
