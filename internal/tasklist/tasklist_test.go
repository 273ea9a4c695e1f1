package tasklist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tasktracker/internal/client"
	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
	"github.com/magabrotheeeer/tasktracker/internal/models"
	"github.com/magabrotheeeer/tasktracker/internal/tasklist"
)

// Мок серверной стороны списка
type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) ListTasks(ctx context.Context) ([]models.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *StoreMock) CreateTask(ctx context.Context, task models.Task) (*couchdb.DocResult, error) {
	args := m.Called(ctx, task)
	res, _ := args.Get(0).(*couchdb.DocResult)
	return res, args.Error(1)
}

func (m *StoreMock) UpdateTask(ctx context.Context, task models.Task) (string, error) {
	args := m.Called(ctx, task)
	return args.String(0), args.Error(1)
}

func (m *StoreMock) DeleteTask(ctx context.Context, id, rev string) error {
	args := m.Called(ctx, id, rev)
	return args.Error(0)
}

var _ tasklist.Store = (*client.Client)(nil)

func fixture() []models.Task {
	return []models.Task{
		{ID: "t1", Rev: "1-a", Title: "Buy milk", Description: "2 litres", Deadline: "2026-01-31"},
		{ID: "t2", Rev: "3-c", Title: "Write report", Description: "quarterly MILK numbers", Deadline: "2026-02-10", Completed: true},
		{ID: "t3", Rev: "1-d", Title: "Call mom", Deadline: "2026-02-01"},
	}
}

func loaded(t *testing.T) (*tasklist.State, *StoreMock) {
	t.Helper()
	store := new(StoreMock)
	store.On("ListTasks", mock.Anything).Return(fixture(), nil).Once()
	s := tasklist.New(store)
	require.NoError(t, s.Load(context.Background()))
	return s, store
}

func ids(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestState_VisibleAndStats(t *testing.T) {
	s, _ := loaded(t)

	tests := []struct {
		name   string
		filter tasklist.Filter
		search string
		want   []string
	}{
		{name: "all", filter: tasklist.FilterAll, want: []string{"t1", "t2", "t3"}},
		{name: "pending", filter: tasklist.FilterPending, want: []string{"t1", "t3"}},
		{name: "completed", filter: tasklist.FilterCompleted, want: []string{"t2"}},
		{name: "search is case-insensitive over title and description", filter: tasklist.FilterAll, search: "milk", want: []string{"t1", "t2"}},
		{name: "search combined with filter", filter: tasklist.FilterPending, search: "MILK", want: []string{"t1"}},
		{name: "nothing found", filter: tasklist.FilterCompleted, search: "mom", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetFilter(tt.filter)
			s.SetSearch(tt.search)
			assert.Equal(t, tt.want, ids(s.Visible()))
		})
	}

	assert.Equal(t, tasklist.Stats{Total: 3, Pending: 2, Completed: 1}, s.Stats())
}

func TestParseFilter(t *testing.T) {
	f, err := tasklist.ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, tasklist.FilterAll, f)

	f, err = tasklist.ParseFilter(" Pending ")
	require.NoError(t, err)
	assert.Equal(t, tasklist.FilterPending, f)

	_, err = tasklist.ParseFilter("overdue")
	assert.ErrorIs(t, err, tasklist.ErrUnknownFilter)
}

func TestState_Add(t *testing.T) {
	s, store := loaded(t)
	now := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
	s.WithClock(func() time.Time { return now })

	want := models.Task{Title: "Bake bread", Description: "rye", Deadline: "2026-01-10", CreatedAt: now}
	store.On("CreateTask", mock.Anything, want).Return(&couchdb.DocResult{OK: true, ID: "t4", Rev: "1-e"}, nil).Once()

	task, err := s.Add(context.Background(), tasklist.Draft{Title: "  Bake bread ", Description: "rye", Deadline: "2026-01-10"})
	require.NoError(t, err)
	assert.Equal(t, "t4", task.ID)
	assert.Equal(t, "1-e", task.Rev)
	assert.False(t, task.Completed)
	assert.Equal(t, 4, s.Stats().Total)
	store.AssertExpectations(t)
}

func TestState_AddValidation(t *testing.T) {
	s, store := loaded(t)

	_, err := s.Add(context.Background(), tasklist.Draft{Title: "  ", Deadline: "2026-01-10"})
	assert.ErrorIs(t, err, tasklist.ErrTitleRequired)

	_, err = s.Add(context.Background(), tasklist.Draft{Title: "x", Deadline: "10.01.2026"})
	assert.ErrorIs(t, err, tasklist.ErrInvalidDeadline)

	store.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
}

func TestState_EditMode(t *testing.T) {
	s, store := loaded(t)

	draft, err := s.BeginEdit("t1")
	require.NoError(t, err)
	assert.Equal(t, tasklist.Draft{Title: "Buy milk", Description: "2 litres", Deadline: "2026-01-31"}, draft)
	id, editing := s.Editing()
	assert.True(t, editing)
	assert.Equal(t, "t1", id)

	expected := fixture()[0]
	expected.Title = "Buy oat milk"
	store.On("UpdateTask", mock.Anything, expected).Return("2-a", nil).Once()

	draft.Title = "Buy oat milk"
	task, err := s.Submit(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "2-a", task.Rev)
	assert.Equal(t, "Buy oat milk", task.Title)

	_, editing = s.Editing()
	assert.False(t, editing)
	store.AssertExpectations(t)
}

func TestState_FailedMutationLeavesStateUnchanged(t *testing.T) {
	conflict := &client.APIError{Status: 409, Message: "Document update conflict."}

	t.Run("edit", func(t *testing.T) {
		s, store := loaded(t)
		store.On("UpdateTask", mock.Anything, mock.Anything).Return("", conflict).Once()

		draft, err := s.BeginEdit("t1")
		require.NoError(t, err)
		draft.Title = "changed"
		_, err = s.Submit(context.Background(), draft)
		assert.ErrorIs(t, err, client.ErrConflict)

		assert.Equal(t, fixture(), s.Tasks())
		_, editing := s.Editing()
		assert.True(t, editing)
	})

	t.Run("complete", func(t *testing.T) {
		s, store := loaded(t)
		store.On("UpdateTask", mock.Anything, mock.Anything).Return("", conflict).Once()

		_, err := s.SetCompleted(context.Background(), "t1", true)
		assert.ErrorIs(t, err, client.ErrConflict)
		assert.Equal(t, fixture(), s.Tasks())
	})

	t.Run("remove", func(t *testing.T) {
		s, store := loaded(t)
		store.On("DeleteTask", mock.Anything, "t2", "3-c").Return(conflict).Once()

		err := s.Remove(context.Background(), "t2")
		assert.ErrorIs(t, err, client.ErrConflict)
		assert.Equal(t, fixture(), s.Tasks())
	})

	t.Run("add", func(t *testing.T) {
		s, store := loaded(t)
		store.On("CreateTask", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

		_, err := s.Add(context.Background(), tasklist.Draft{Title: "x", Deadline: "2026-01-01"})
		assert.Error(t, err)
		assert.Equal(t, fixture(), s.Tasks())
	})
}

func TestState_SetCompletedAndRemove(t *testing.T) {
	s, store := loaded(t)

	done := fixture()[2]
	done.Completed = true
	store.On("UpdateTask", mock.Anything, done).Return("2-d", nil).Once()
	store.On("DeleteTask", mock.Anything, "t3", "2-d").Return(nil).Once()

	task, err := s.SetCompleted(context.Background(), "t3", true)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, tasklist.Stats{Total: 3, Pending: 1, Completed: 2}, s.Stats())

	require.NoError(t, s.Remove(context.Background(), "t3"))
	assert.Equal(t, []string{"t1", "t2"}, ids(s.Tasks()))

	assert.ErrorIs(t, s.Remove(context.Background(), "t3"), tasklist.ErrTaskNotFound)
	_, err = s.BeginEdit("missing")
	assert.ErrorIs(t, err, tasklist.ErrTaskNotFound)
	store.AssertExpectations(t)
}

func TestState_LoadError(t *testing.T) {
	store := new(StoreMock)
	store.On("ListTasks", mock.Anything).Return(nil, client.ErrUnauthorized).Once()

	s := tasklist.New(store)
	assert.ErrorIs(t, s.Load(context.Background()), client.ErrUnauthorized)
	assert.Empty(t, s.Tasks())
}
