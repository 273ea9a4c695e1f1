package me

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/tasktracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tasktracker/internal/models"
)

func TestMeHandler_ServeHTTP(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req = req.WithContext(middlewarectx.WithIdentity(req.Context(),
			&models.Identity{UserID: "u1", Username: "alice"}))
		rec := httptest.NewRecorder()

		New().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"OK","username":"alice","userId":"u1"}`, rec.Body.String())
	})

	t.Run("no identity", func(t *testing.T) {
		rec := httptest.NewRecorder()

		New().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"status":"Error","error":"Not authenticated."}`, rec.Body.String())
	})
}
