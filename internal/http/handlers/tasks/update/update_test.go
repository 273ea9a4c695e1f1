package update

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tasktracker/internal/couchdb"
	"github.com/magabrotheeeer/tasktracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tasktracker/internal/lib/apperr"
	"github.com/magabrotheeeer/tasktracker/internal/models"
)

type UpdateServiceMock struct {
	mock.Mock
}

func (m *UpdateServiceMock) Update(ctx context.Context, username string, body []byte) (*couchdb.Response, error) {
	args := m.Called(ctx, username, string(body))
	resp, _ := args.Get(0).(*couchdb.Response)
	return resp, args.Error(1)
}

func TestUpdateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		resp       *couchdb.Response
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "updated",
			body:       `{"_id":"t1","_rev":"1-a","completed":true}`,
			resp:       &couchdb.Response{StatusCode: http.StatusCreated, Body: []byte(`{"ok":true,"id":"t1","rev":"2-b"}`)},
			wantStatus: http.StatusCreated,
			wantBody:   `{"ok":true,"id":"t1","rev":"2-b"}`,
		},
		{
			name:       "stale revision",
			body:       `{"_id":"t1","_rev":"1-old"}`,
			resp:       &couchdb.Response{StatusCode: http.StatusConflict, Body: []byte(`{"error":"conflict","reason":"Document update conflict."}`)},
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"conflict","reason":"Document update conflict."}`,
		},
		{
			name:       "missing revision",
			body:       `{"_id":"t1"}`,
			err:        apperr.New(apperr.BadRequest, "Missing _id or _rev.", nil),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"Missing _id or _rev."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(UpdateServiceMock)
			svc.On("Update", mock.Anything, "alice", tt.body).Return(tt.resp, tt.err).Once()
			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)

			req := httptest.NewRequest(http.MethodPut, "/api/tasks", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), &models.Identity{UserID: "u1", Username: "alice"}))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
