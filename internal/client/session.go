package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Session сохранённая между запусками сессия.
type Session struct {
	Server   string `json:"server"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token"`
}

// LoadSession читает файл сессии. Отсутствие файла не ошибка: возвращается пустая сессия.
func LoadSession(path string) (*Session, error) {
	const op = "client.LoadSession"
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}

// Save записывает сессию с правами 0600, создавая каталог при необходимости.
func (s *Session) Save(path string) error {
	const op = "client.Session.Save"
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveSession удаляет файл сессии, если он есть.
func RemoveSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("client.RemoveSession: %w", err)
	}
	return nil
}
