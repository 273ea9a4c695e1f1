// Package jwt реализует выпуск и проверку подписанных токенов сессии.
//
// Токен — JWT (HS256), содержащий идентификатор и имя пользователя, время выпуска
// и время истечения. Серверного хранилища сессий нет: токен действителен, пока
// подпись сходится с секретом сервера и текущее время меньше exp.
package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается для любого токена, не прошедшего проверку:
// неверная подпись, неверный формат, истёкший срок или неполные claims.
var ErrInvalidToken = errors.New("invalid token")

// Claims описывает пользовательские данные, хранящиеся в токене.
type Claims struct {
	UserID               string `json:"userId"`   // Идентификатор документа пользователя
	Username             string `json:"username"` // Имя пользователя
	jwt.RegisteredClaims        // Стандартные claims (iat, exp, sub)
}
