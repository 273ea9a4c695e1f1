package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Matches(t *testing.T) {
	task := Task{Title: "Buy Milk", Description: "at the Corner shop"}

	tests := []struct {
		term string
		want bool
	}{
		{"", true},
		{"milk", true},
		{"CORNER", true},
		{"bread", false},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, task.Matches(tt.term))
		})
	}
}

func TestTask_DeadlineTime(t *testing.T) {
	d, ok := Task{Deadline: "2025-12-31"}.DeadlineTime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), d)

	_, ok = Task{Deadline: "31.12.2025"}.DeadlineTime()
	assert.False(t, ok)
}

func TestTask_DocumentFields(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"t1","_rev":"2-b","title":"x","deadline":"2025-01-02","completed":true}`), &task))

	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, "2-b", task.Rev)
	assert.True(t, task.Completed)
}
