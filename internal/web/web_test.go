package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forumauth/internal/web"
	"github.com/dmitrymomot/forumauth/pkg/account"
	"github.com/dmitrymomot/forumauth/pkg/auth"
	"github.com/dmitrymomot/forumauth/pkg/cookie"
	"github.com/dmitrymomot/forumauth/pkg/health"
	"github.com/dmitrymomot/forumauth/pkg/settings"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type forumTransport struct {
	handler http.Handler
}

func (t forumTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.handler.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

type fakeForum struct {
	mu         sync.Mutex
	requests   []string
	tokenFails bool
}

func (f *fakeForum) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeForum) client() *http.Client {
	record := func(r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	}
	reply := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token/", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if f.tokenFails {
			reply(w, http.StatusBadRequest, `{"error":"invalid_grant"}`)
			return
		}
		reply(w, http.StatusOK, `{"access_token":"tok","token_type":"bearer"}`)
	})
	mux.HandleFunc("GET /api/core/me", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		reply(w, http.StatusOK, `{"id":"42"}`)
	})
	mux.HandleFunc("GET /api/core/members/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		reply(w, http.StatusOK,
			`{"id":"42","name":"Alice","email":"alice@example.com","primaryGroup":{"name":"Admins"},"secondaryGroups":[{"name":"Mods"}]}`)
	})
	return &http.Client{Transport: forumTransport{handler: mux}}
}

type testEnv struct {
	router http.Handler
	forum  *fakeForum
	repo   *account.MemoryRepository
}

func newEnv(t *testing.T, creation string, opts ...web.Option) *testEnv {
	t.Helper()

	forum := &fakeForum{}
	store := settings.NewMemoryStore(map[string]string{
		settings.KeyClientID:        "client",
		settings.KeyClientSecret:    "secret",
		settings.KeyScopes:          "profile email",
		settings.KeyBaseURL:         "https://forum.example/",
		settings.KeyAPIKey:          "K",
		settings.KeyAccountCreation: creation,
	})
	repo := account.NewMemoryRepository()
	resolver := account.NewResolver(repo)
	factory := auth.NewFactory(store, resolver,
		auth.WithHTTPClient(forum.client()),
		auth.WithUnlinker(resolver),
		auth.WithRedirectURL("https://app.example/oauth/callback"),
	)
	cookies, err := cookie.New(testSecret)
	require.NoError(t, err)

	h := web.New(factory, resolver, cookies, opts...)
	return &testEnv{router: h.Router(), forum: forum, repo: repo}
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// login follows /oauth/login and returns the state and its cookie.
func (e *testEnv) login(t *testing.T) (string, *http.Cookie) {
	t.Helper()

	rec := e.do(httptest.NewRequest(http.MethodGet, "/oauth/login", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "forum.example", loc.Host)
	require.Equal(t, "/oauth/authorize/", loc.Path)
	require.Equal(t, "client", loc.Query().Get("client_id"))
	require.Equal(t, "https://app.example/oauth/callback", loc.Query().Get("redirect_uri"))

	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	for _, c := range rec.Result().Cookies() {
		if c.Name == web.StateCookie {
			return state, c
		}
	}
	t.Fatal("state cookie not set")
	return "", nil
}

func callbackURL(code, state string) string {
	q := url.Values{}
	if code != "" {
		q.Set("code", code)
	}
	if state != "" {
		q.Set("state", state)
	}
	return "/oauth/callback?" + q.Encode()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error     string `json:"error"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.RequestID)
	return body.Error
}

func TestCallback(t *testing.T) {
	t.Parallel()

	t.Run("creates the account", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		state, stateCookie := env.login(t)

		rec := env.do(httptest.NewRequest(http.MethodGet, callbackURL("abc123", state), nil), stateCookie)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Status string `json:"status"`
			UserID string `json:"user_id"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "ok", body.Status)

		u, err := env.repo.FindByExternalID(context.Background(), "42")
		require.NoError(t, err)
		require.Equal(t, u.ID.String(), body.UserID)
		require.Equal(t, "Alice", u.Name)
		require.Equal(t, "alice@example.com", u.Email)

		groups, err := env.repo.ListUserGroups(context.Background(), u.ID)
		require.NoError(t, err)
		require.Len(t, groups, 2)

		var session bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == web.SessionCookie {
				session = true
			}
		}
		require.True(t, session)
		require.Equal(t, []string{
			"POST /oauth/token/",
			"GET /api/core/me",
			"GET /api/core/members/42",
		}, env.forum.Requests())
	})

	t.Run("second login links the same account", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		var ids []string
		for range 2 {
			state, c := env.login(t)
			rec := env.do(httptest.NewRequest(http.MethodGet, callbackURL("abc123", state), nil), c)
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				UserID string `json:"user_id"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			ids = append(ids, body.UserID)
		}
		require.Equal(t, ids[0], ids[1])
	})

	t.Run("forum error", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		rec := env.do(httptest.NewRequest(http.MethodGet, "/oauth/callback?error=access_denied", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "authorization denied", decodeError(t, rec))
		require.Empty(t, env.forum.Requests())
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		state, c := env.login(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, callbackURL("", state), nil), c)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "missing authorization code", decodeError(t, rec))
	})

	t.Run("state mismatch", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		_, c := env.login(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, callbackURL("abc123", "forged"), nil), c)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid state", decodeError(t, rec))
		require.Empty(t, env.forum.Requests())
	})

	t.Run("missing state cookie", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		state, _ := env.login(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, callbackURL("abc123", state), nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("token exchange fails", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		env.forum.tokenFails = true
		state, c := env.login(t)

		rec := env.do(httptest.NewRequest(http.MethodGet, callbackURL("abc123", state), nil), c)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "authentication failed", decodeError(t, rec))
		require.Equal(t, []string{"POST /oauth/token/"}, env.forum.Requests())
	})

	t.Run("creation not permitted", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "0")
		state, c := env.login(t)

		rec := env.do(httptest.NewRequest(http.MethodGet, callbackURL("abc123", state), nil), c)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "account creation not permitted", decodeError(t, rec))

		_, err := env.repo.FindByExternalID(context.Background(), "42")
		require.ErrorIs(t, err, account.ErrUserNotFound)
	})
}

// sessionFor signs a session cookie the way the callback does.
func sessionFor(t *testing.T, userID string) *http.Cookie {
	t.Helper()

	cookies, err := cookie.New(testSecret)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	cookies.SetSigned(rec, web.SessionCookie, userID, time.Hour)
	return rec.Result().Cookies()[0]
}

func unlinkRequest(id string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/users/"+id+"/oauth2/unlink", nil)
}

func TestUnlink(t *testing.T) {
	t.Parallel()

	linkedUser := func(t *testing.T, env *testEnv, externalID string) *account.User {
		t.Helper()

		u := &account.User{Username: "member" + externalID, ExternalID: externalID, IsExternal: true}
		require.NoError(t, env.repo.Create(context.Background(), u))
		return u
	}

	t.Run("owner unlinks twice", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		u := linkedUser(t, env, "42")
		session := sessionFor(t, u.ID.String())

		for range 2 {
			rec := env.do(unlinkRequest(u.ID.String()), session)
			require.Equal(t, http.StatusNoContent, rec.Code)
		}

		got, err := env.repo.FindByID(context.Background(), u.ID)
		require.NoError(t, err)
		require.Empty(t, got.ExternalID)
	})

	t.Run("session from callback", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		state, c := env.login(t)
		rec := env.do(httptest.NewRequest(http.MethodGet, callbackURL("abc123", state), nil), c)
		require.Equal(t, http.StatusOK, rec.Code)

		var session *http.Cookie
		for _, ck := range rec.Result().Cookies() {
			if ck.Name == web.SessionCookie {
				session = ck
			}
		}
		require.NotNil(t, session)

		u, err := env.repo.FindByExternalID(context.Background(), "42")
		require.NoError(t, err)

		rec = env.do(unlinkRequest(u.ID.String()), session)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		u := linkedUser(t, env, "42")

		rec := env.do(unlinkRequest(u.ID.String()))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "authentication required", decodeError(t, rec))

		got, err := env.repo.FindByID(context.Background(), u.ID)
		require.NoError(t, err)
		require.Equal(t, "42", got.ExternalID)
	})

	t.Run("tampered session", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		u := linkedUser(t, env, "42")
		forged := &http.Cookie{Name: web.SessionCookie, Value: u.ID.String()}

		rec := env.do(unlinkRequest(u.ID.String()), forged)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("another user's account", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		owner := linkedUser(t, env, "42")
		other := linkedUser(t, env, "43")

		rec := env.do(unlinkRequest(other.ID.String()), sessionFor(t, owner.ID.String()))
		require.Equal(t, http.StatusForbidden, rec.Code)

		got, err := env.repo.FindByID(context.Background(), other.ID)
		require.NoError(t, err)
		require.Equal(t, "43", got.ExternalID)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		id := uuid.NewString()
		rec := env.do(unlinkRequest(id), sessionFor(t, id))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, "1")
		rec := env.do(unlinkRequest("42"), sessionFor(t, uuid.NewString()))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthRoutes(t *testing.T) {
	t.Parallel()

	env := newEnv(t, "1", web.WithHealthChecks(health.Checks{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("down") },
	}))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecover(t *testing.T) {
	t.Parallel()

	h := web.Recover(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
