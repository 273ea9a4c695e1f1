package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/me", "200"))

	ObserveHTTP(http.MethodGet, "/api/me", http.StatusOK, 10*time.Millisecond)

	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/me", "200"))
	assert.Equal(t, before+1, after)
}

func TestObserveStore_NetworkError(t *testing.T) {
	before := testutil.ToFloat64(storeRequests.WithLabelValues(http.MethodPut, "error"))

	ObserveStore(http.MethodPut, 0, time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(storeRequests.WithLabelValues(http.MethodPut, "error")))
}

func TestLogin(t *testing.T) {
	before := testutil.ToFloat64(loginAttempts.WithLabelValues(LoginBlocked))

	Login(LoginBlocked)

	assert.Equal(t, before+1, testutil.ToFloat64(loginAttempts.WithLabelValues(LoginBlocked)))
}
