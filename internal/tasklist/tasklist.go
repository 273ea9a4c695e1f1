// Package tasklist хранит клиентское состояние списка задач: сами задачи,
// фильтр, строку поиска и режим редактирования.
//
// Изменения применяются к локальному списку только после того, как сервер
// подтвердил их и вернул новую ревизию. При ошибке состояние не меняется.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
	"github.com/magabrotheeeer/tasktracker/internal/models"
)

// Filter отбор задач по статусу выполнения.
type Filter string

// Допустимые фильтры.
const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// Ошибки операций над списком.
var (
	ErrTitleRequired   = errors.New("title and deadline are required")
	ErrInvalidDeadline = errors.New("deadline must be in YYYY-MM-DD format")
	ErrTaskNotFound    = errors.New("task not found")
	ErrMissingRevision = errors.New("task has no revision")
	ErrNotEditing      = errors.New("no task is being edited")
	ErrUnknownFilter   = errors.New("unknown filter")
)

// ParseFilter разбирает имя фильтра. Пустая строка означает FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}

func (f Filter) match(t models.Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Store серверная сторона списка. Реализуется client.Client.
type Store interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.Task) (*couchdb.DocResult, error)
	UpdateTask(ctx context.Context, task models.Task) (string, error)
	DeleteTask(ctx context.Context, id, rev string) error
}

// Stats счётчики задач без учёта фильтра и поиска.
type Stats struct {
	Total     int
	Pending   int
	Completed int
}

// Draft поля формы задачи.
type Draft struct {
	Title       string
	Description string
	Deadline    string
}

func (d Draft) normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Deadline = strings.TrimSpace(d.Deadline)
	if d.Title == "" || d.Deadline == "" {
		return d, ErrTitleRequired
	}
	if _, err := time.Parse(models.DeadlineLayout, d.Deadline); err != nil {
		return d, ErrInvalidDeadline
	}
	return d, nil
}

// State состояние списка задач одного пользователя.
type State struct {
	store     Store
	now       func() time.Time
	tasks     []models.Task
	filter    Filter
	search    string
	editingID string
}

// New создаёт пустое состояние поверх store.
func New(store Store) *State {
	return &State{
		store:  store,
		now:    time.Now,
		filter: FilterAll,
	}
}

// WithClock подменяет источник времени для createdAt новых задач.
func (s *State) WithClock(now func() time.Time) *State {
	s.now = now
	return s
}

// Load загружает задачи с сервера, заменяя локальный список.
func (s *State) Load(ctx context.Context) error {
	const op = "tasklist.Load"
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.tasks = tasks
	if _, ok := s.index(s.editingID); !ok {
		s.editingID = ""
	}
	return nil
}

// Tasks копия всех задач в порядке загрузки.
func (s *State) Tasks() []models.Task {
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Find возвращает задачу по ID.
func (s *State) Find(id string) (models.Task, bool) {
	i, ok := s.index(id)
	if !ok {
		return models.Task{}, false
	}
	return s.tasks[i], true
}

// SetFilter задаёт фильтр по статусу.
func (s *State) SetFilter(f Filter) {
	s.filter = f
}

// Filter текущий фильтр.
func (s *State) Filter() Filter {
	return s.filter
}

// SetSearch задаёт строку поиска по заголовку и описанию.
func (s *State) SetSearch(term string) {
	s.search = term
}

// Search текущая строка поиска.
func (s *State) Search() string {
	return s.search
}

// Visible задачи, подходящие под фильтр и строку поиска.
func (s *State) Visible() []models.Task {
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if s.filter.match(t) && t.Matches(s.search) {
			out = append(out, t)
		}
	}
	return out
}

// Stats считает задачи по статусу.
func (s *State) Stats() Stats {
	st := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

// BeginEdit переводит состояние в режим редактирования задачи id.
func (s *State) BeginEdit(id string) (Draft, error) {
	t, ok := s.Find(id)
	if !ok {
		return Draft{}, ErrTaskNotFound
	}
	s.editingID = id
	return Draft{Title: t.Title, Description: t.Description, Deadline: t.Deadline}, nil
}

// CancelEdit выходит из режима редактирования.
func (s *State) CancelEdit() {
	s.editingID = ""
}

// Editing ID редактируемой задачи.
func (s *State) Editing() (string, bool) {
	return s.editingID, s.editingID != ""
}

// Submit сохраняет форму: в режиме редактирования обновляет задачу,
// иначе создаёт новую.
func (s *State) Submit(ctx context.Context, d Draft) (models.Task, error) {
	if s.editingID != "" {
		return s.saveEdit(ctx, d)
	}
	return s.Add(ctx, d)
}

// Add создаёт невыполненную задачу.
func (s *State) Add(ctx context.Context, d Draft) (models.Task, error) {
	const op = "tasklist.Add"
	d, err := d.normalize()
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}

	task := models.Task{
		Title:       d.Title,
		Description: d.Description,
		Deadline:    d.Deadline,
		CreatedAt:   s.now().UTC(),
	}
	res, err := s.store.CreateTask(ctx, task)
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	task.ID, task.Rev = res.ID, res.Rev
	s.tasks = append(s.tasks, task)
	return task, nil
}

func (s *State) saveEdit(ctx context.Context, d Draft) (models.Task, error) {
	const op = "tasklist.Edit"
	d, err := d.normalize()
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	i, ok := s.index(s.editingID)
	if !ok {
		s.editingID = ""
		return models.Task{}, fmt.Errorf("%s: %w", op, ErrTaskNotFound)
	}

	updated := s.tasks[i]
	updated.Title, updated.Description, updated.Deadline = d.Title, d.Description, d.Deadline
	if err := s.update(ctx, i, updated); err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	s.editingID = ""
	return s.tasks[i], nil
}

// SetCompleted отмечает задачу выполненной или снова активной.
func (s *State) SetCompleted(ctx context.Context, id string, completed bool) (models.Task, error) {
	const op = "tasklist.SetCompleted"
	i, ok := s.index(id)
	if !ok {
		return models.Task{}, fmt.Errorf("%s: %w", op, ErrTaskNotFound)
	}
	updated := s.tasks[i]
	updated.Completed = completed
	if err := s.update(ctx, i, updated); err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.tasks[i], nil
}

// Remove удаляет задачу в её текущей ревизии.
func (s *State) Remove(ctx context.Context, id string) error {
	const op = "tasklist.Remove"
	i, ok := s.index(id)
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrTaskNotFound)
	}
	if s.tasks[i].Rev == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingRevision)
	}
	if err := s.store.DeleteTask(ctx, id, s.tasks[i].Rev); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	if s.editingID == id {
		s.editingID = ""
	}
	return nil
}

func (s *State) update(ctx context.Context, i int, updated models.Task) error {
	if updated.Rev == "" {
		return ErrMissingRevision
	}
	rev, err := s.store.UpdateTask(ctx, updated)
	if err != nil {
		return err
	}
	updated.Rev = rev
	s.tasks[i] = updated
	return nil
}

func (s *State) index(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for i, t := range s.tasks {
		if t.ID == id {
			return i, true
		}
	}
	return 0, false
}
