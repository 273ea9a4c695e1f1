package create

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

type CreateServiceMock struct {
	mock.Mock
}

func (m *CreateServiceMock) Create(ctx context.Context, username string, body []byte) (*couchdb.Response, error) {
	args := m.Called(ctx, username, string(body))
	resp, _ := args.Get(0).(*couchdb.Response)
	return resp, args.Error(1)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		resp       *couchdb.Response
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "created",
			body:       `{"title":"buy milk"}`,
			resp:       &couchdb.Response{StatusCode: http.StatusCreated, Body: []byte(`{"ok":true,"id":"t1","rev":"1-a"}`)},
			wantStatus: http.StatusCreated,
			wantBody:   `{"ok":true,"id":"t1","rev":"1-a"}`,
		},
		{
			name:       "empty body",
			body:       `{}`,
			err:        apperr.New(apperr.BadRequest, "Request body cannot be empty.", nil),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status":"Error","error":"Request body cannot be empty."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(CreateServiceMock)
			svc.On("Create", mock.Anything, "alice", tt.body).Return(tt.resp, tt.err).Once()
			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)

			req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), &models.Identity{UserID: "u1", Username: "alice"}))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestCreateHandler_BodyTooLarge(t *testing.T) {
	svc := new(CreateServiceMock)
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(strings.Repeat("a", maxBodySize+1)))
	req = req.WithContext(middlewarectx.WithIdentity(req.Context(), &models.Identity{UserID: "u1", Username: "alice"}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}
