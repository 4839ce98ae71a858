package handler_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/handler"
)

func TestHealth_AllConnected(t *testing.T) {
	h := handler.NewHealthHandler(stubPinger{}, stubPinger{})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "user-service", body["service"])
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, "connected", body["sessions"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	h := handler.NewHealthHandler(stubPinger{err: errors.New("connection refused")}, stubPinger{})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "disconnected", body["database"])
	assert.Equal(t, "connected", body["sessions"])
	// Internal errors stay out of the response body.
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHealth_SessionStoreDown(t *testing.T) {
	h := handler.NewHealthHandler(stubPinger{}, stubPinger{err: errors.New("redis down")})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "disconnected", body["sessions"])
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "user-service 1.0.0", string(body))
}

func TestHello(t *testing.T) {
	h := handler.NewHealthHandler(stubPinger{}, stubPinger{})

	r := chi.NewRouter()
	r.Get("/hello/{name}", h.Hello)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/hello/world", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello world!", rec.Body.String())
}
