package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
)

func TestTasks_List(t *testing.T) {
	db := couchdb.UserDB("alice")
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+db+"/_all_docs", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_docs"))
		_, _ = w.Write([]byte(`{"total_rows":3,"offset":0,"rows":[
			{"id":"_design/idx","doc":{"_id":"_design/idx","language":"query"}},
			{"id":"t1","doc":{"_id":"t1","_rev":"1-a","title":"one"}},
			{"id":"t2","doc":{"_id":"t2","_rev":"1-b","title":"two"}}
		]}`))
	})

	resp, err := NewTasks(c).List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"_id":"t1","_rev":"1-a","title":"one"},{"_id":"t2","_rev":"1-b","title":"two"}]`, string(resp.Body))
}

func TestTasks_List_Empty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total_rows":0,"offset":0,"rows":[]}`))
	})

	resp, err := NewTasks(c).List(context.Background(), "alice")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(resp.Body))
}

func TestTasks_List_StoreErrorPassedThrough(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","reason":"Database does not exist."}`))
	})

	resp, err := NewTasks(c).List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "Database does not exist.")
}

func TestTasks_Create(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/"+couchdb.UserDB("alice"), r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"buy milk"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true,"id":"t1","rev":"1-a"}`))
	})

	resp, err := NewTasks(c).Create(context.Background(), "alice", json.RawMessage(`{"title":"buy milk"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true,"id":"t1","rev":"1-a"}`, string(resp.Body))
}

func TestTasks_Update_ConflictForwarded(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/"+couchdb.UserDB("alice")+"/t1", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"conflict","reason":"Document update conflict."}`))
	})

	resp, err := NewTasks(c).Update(context.Background(), "alice", "t1", json.RawMessage(`{"_id":"t1","_rev":"1-old"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "conflict")
}

func TestTasks_Delete(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/"+couchdb.UserDB("alice")+"/t1", r.URL.Path)
		assert.Equal(t, "2-b", r.URL.Query().Get("rev"))
		_, _ = w.Write([]byte(`{"ok":true,"id":"t1","rev":"3-c"}`))
	})

	resp, err := NewTasks(c).Delete(context.Background(), "alice", "t1", "2-b")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
