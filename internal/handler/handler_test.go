package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"user-service/internal/config"
	"user-service/internal/handler"
	"user-service/internal/middleware"
	"user-service/internal/repository"
	"user-service/internal/router"
	"user-service/internal/service"
	"user-service/internal/session"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type testEnv struct {
	server *httptest.Server
	users  *repository.MemoryUserRepository
	tokens *service.TokenService
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     0,
		AuthRateLimitRPM: 10000,
		SessionSecret:    "test-session-secret",
		SessionTTL:       time.Hour,
	}

	users := repository.NewMemoryUserRepository()
	sessionStore := session.NewMemoryStore()

	authService := service.NewAuthService(users, 4)
	tokenService, err := service.NewTokenService(service.TokenConfig{
		Secret:     "test-jwt-secret",
		AccessTTL:  24 * time.Hour,
		RefreshTTL: 168 * time.Hour,
	})
	require.NoError(t, err)

	sessionManager := middleware.NewSessionManager(sessionStore, users, cfg.SessionSecret,
		session.CookieOptions{MaxAge: cfg.SessionTTL}, cfg.SessionTTL)
	jwtMiddleware := middleware.NewJWTMiddleware(tokenService, users)

	h := router.Handlers{
		Auth:   handler.NewAuthHandler(authService, tokenService),
		Web:    handler.NewWebHandler(authService, sessionManager),
		Health: handler.NewHealthHandler(stubPinger{}, stubPinger{}),
	}

	server := httptest.NewServer(router.New(cfg, sessionManager, jwtMiddleware, h))
	t.Cleanup(server.Close)

	return &testEnv{server: server, users: users, tokens: tokenService, auth: authService}
}

// webClient carries cookies and surfaces redirects instead of following
// them, so tests can assert on Location headers.
func (e *testEnv) webClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) register(t *testing.T, username string, password string) {
	t.Helper()
	_, err := e.auth.Register(context.Background(), username, password)
	require.NoError(t, err)
}

func (e *testEnv) get(t *testing.T, client *http.Client, path string) *http.Response {
	t.Helper()

	resp, err := client.Get(e.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) postForm(t *testing.T, client *http.Client, path string, form url.Values) *http.Response {
	t.Helper()

	resp, err := client.Post(e.server.URL+path, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) getWithToken(t *testing.T, path string, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest("GET", e.server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) apiEnvelope {
	t.Helper()

	var env apiEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

type tokenPairData struct {
	User struct {
		ID       string `json:"_id"`
		Username string `json:"username"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func decodeTokenPair(t *testing.T, env apiEnvelope) tokenPairData {
	t.Helper()

	var data tokenPairData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}
