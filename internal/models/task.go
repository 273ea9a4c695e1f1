package models

import (
	"strings"
	"time"
)

// DeadlineLayout формат даты срока выполнения задачи.
const DeadlineLayout = "2006-01-02"

// Task задача пользователя. Хранится в персональной базе владельца.
type Task struct {
	ID          string    `json:"_id,omitempty"`
	Rev         string    `json:"_rev,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    string    `json:"deadline"`
	CreatedAt   time.Time `json:"createdAt"`
	Completed   bool      `json:"completed"`
}

// Matches сообщает, содержит ли заголовок или описание строку term без учёта регистра.
// Пустая строка подходит под любую задачу.
func (t Task) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

// DeadlineTime разбирает срок выполнения. ok == false, если дата не задана или некорректна.
func (t Task) DeadlineTime() (time.Time, bool) {
	d, err := time.Parse(DeadlineLayout, t.Deadline)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
