// Package password реализует хеширование и проверку паролей.
//
// Хеш вычисляется Argon2id от пароля и персональной соли пользователя
// и хранится в виде hex-строки фиксированной длины. Для одной и той же пары
// (пароль, соль) результат детерминирован.
package password

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id.
const (
	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
	// KeyLen длина хеша в байтах, hex-представление вдвое длиннее.
	KeyLen = 32
)

var (
	// ErrEmptyPassword возвращается при попытке хешировать пустой пароль.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrEmptySalt возвращается при попытке хешировать без соли.
	ErrEmptySalt = errors.New("salt must not be empty")
)

// NewSalt генерирует новую случайную соль для пользователя.
func NewSalt() string {
	return uuid.NewString()
}

// GetHash принимает пароль и соль пользователя и возвращает hex-хеш.
func GetHash(password, salt string) (string, error) {
	const op = "password.GetHash"
	if password == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}
	if salt == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptySalt)
	}
	key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, KeyLen)
	return hex.EncodeToString(key), nil
}

// CompareHash сравнивает сохранённый хеш с хешем введённого пароля за постоянное время.
func CompareHash(originalHash, externalPassword, salt string) bool {
	hash, err := GetHash(externalPassword, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(originalHash), []byte(hash)) == 1
}
