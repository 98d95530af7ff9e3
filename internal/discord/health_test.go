package discord

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	tc := SetupTestContext(t)
	tc.Mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	bot := &Bot{Session: tc.Session, Client: tc.APIClient}

	t.Run("gateway not ready", func(t *testing.T) {
		srv := NewHTTPServer("0", bot, nil)
		rec := httptest.NewRecorder()
		srv.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var status HealthStatus
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
		assert.Equal(t, "degraded", status.Status)
		assert.True(t, status.APIReachable)
		assert.False(t, status.EventsConnected)
	})

	t.Run("healthy", func(t *testing.T) {
		tc.Session.DataReady = true
		srv := NewHTTPServer("0", bot, nil)
		rec := httptest.NewRecorder()
		srv.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	})
}
