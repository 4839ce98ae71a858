package handler_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formPageData struct {
	Page        string   `json:"page"`
	Messages    []string `json:"messages"`
	CallbackURL string   `json:"callbackUrl"`
}

func decodeFormPage(t *testing.T, resp *http.Response) formPageData {
	t.Helper()

	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)

	var data formPageData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func TestWebSignup_EstablishesSession(t *testing.T) {
	env := newTestEnv(t)
	client := env.webClient(t)

	resp := env.postForm(t, client, "/signup", credentials("alice", "Passw0rd!"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	// The redirect target must already be authenticated: the session was
	// written to the store before the response was sent.
	resp = env.get(t, client, "/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebSignup_ValidationFlashes(t *testing.T) {
	env := newTestEnv(t)
	client := env.webClient(t)

	resp := env.postForm(t, client, "/signup", credentials("ab", "short"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/signup", resp.Header.Get("Location"))

	page := decodeFormPage(t, env.get(t, client, "/signup"))
	assert.Equal(t, "signup", page.Page)
	assert.NotEmpty(t, page.Messages)

	// Flashes are consumed on read.
	page = decodeFormPage(t, env.get(t, client, "/signup"))
	assert.Empty(t, page.Messages)
}

func TestWebSignup_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "Passw0rd!")
	client := env.webClient(t)

	resp := env.postForm(t, client, "/signup", credentials("alice", "Passw0rd!"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/signup", resp.Header.Get("Location"))

	page := decodeFormPage(t, env.get(t, client, "/signup"))
	assert.Equal(t, []string{"Username already exists. Please choose a different username."}, page.Messages)
}

func TestWebLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "Passw0rd!")
	client := env.webClient(t)

	resp := env.postForm(t, client, "/login", credentials("alice", "Passw0rd!"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp = env.get(t, client, "/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// Unknown username and wrong password must be indistinguishable to the
// client: same status, same redirect, same flashed message.
func TestWebLogin_FailureIsUniform(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "Passw0rd!")

	attempts := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "WrongPass1"},
		{"unknown username", "nobody", "Passw0rd!"},
	}

	for _, tc := range attempts {
		t.Run(tc.name, func(t *testing.T) {
			client := env.webClient(t)

			resp := env.postForm(t, client, "/login", credentials(tc.username, tc.password))
			require.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, "/login", resp.Header.Get("Location"))

			page := decodeFormPage(t, env.get(t, client, "/login"))
			assert.Equal(t, []string{"Incorrect username or password."}, page.Messages)
		})
	}
}

func TestWebLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	client := env.webClient(t)

	resp := env.postForm(t, client, "/login", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	page := decodeFormPage(t, env.get(t, client, "/login"))
	assert.Equal(t, []string{"Username is required", "Password is required"}, page.Messages)
}

func TestWebDashboard_RequiresSession(t *testing.T) {
	env := newTestEnv(t)
	client := env.webClient(t)

	resp := env.get(t, client, "/dashboard")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard", resp.Header.Get("Location"))
}

func TestWebDashboard_ListsUsers(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "Passw0rd!")
	env.register(t, "bob", "Passw0rd!")
	client := env.webClient(t)

	env.postForm(t, client, "/login", credentials("alice", "Passw0rd!"))

	resp := env.get(t, client, "/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envData := decodeEnvelope(t, resp)
	require.True(t, envData.Success)

	var data struct {
		Users []struct {
			ID       string `json:"_id"`
			Username string `json:"username"`
		} `json:"users"`
		CurrentUser struct {
			Username string `json:"username"`
		} `json:"currentUser"`
	}
	require.NoError(t, json.Unmarshal(envData.Data, &data))

	assert.Equal(t, "alice", data.CurrentUser.Username)
	names := make([]string, 0, len(data.Users))
	for _, u := range data.Users {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)
}

func TestWebLogout_RevokesSessionAuthority(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "Passw0rd!")
	client := env.webClient(t)

	env.postForm(t, client, "/login", credentials("alice", "Passw0rd!"))

	resp := env.postForm(t, client, "/logout", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// The cookie the client still carries no longer authenticates.
	resp = env.get(t, client, "/dashboard")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard", resp.Header.Get("Location"))
}

func TestWebLogin_CallbackRedirect(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "Passw0rd!")

	cases := []struct {
		name     string
		callback string
		want     string
	}{
		{"relative path honored", "/dashboard?tab=users", "/dashboard?tab=users"},
		{"absolute url rejected", "https://evil.example", "/dashboard"},
		{"protocol-relative rejected", "//evil.example", "/dashboard"},
		{"backslash rejected", "/\\evil.example", "/dashboard"},
		{"empty falls back", "", "/dashboard"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := env.webClient(t)

			form := credentials("alice", "Passw0rd!")
			form.Set("callbackUrl", tc.callback)

			resp := env.postForm(t, client, "/login", form)
			require.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, tc.want, resp.Header.Get("Location"))
		})
	}
}

func TestSessionInfo(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "Passw0rd!")

	t.Run("anonymous", func(t *testing.T) {
		client := env.webClient(t)

		resp := env.get(t, client, "/api/v1/session")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Not authenticated", body["error"])
	})

	t.Run("authenticated", func(t *testing.T) {
		client := env.webClient(t)
		env.postForm(t, client, "/login", credentials("alice", "Passw0rd!"))

		resp := env.get(t, client, "/api/v1/session")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			User struct {
				ID       string `json:"_id"`
				Username string `json:"username"`
			} `json:"user"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "alice", body.User.Username)
		assert.NotEmpty(t, body.User.ID)
	})
}

func TestWelcome(t *testing.T) {
	env := newTestEnv(t)
	client := env.webClient(t)

	resp := env.get(t, client, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envData := decodeEnvelope(t, resp)
	assert.True(t, envData.Success)
}
