package auth_test

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/dmitrymomot/forumauth/pkg/settings"
)

const (
	testBaseURL = "https://forum.example/"
	testAPIKey  = "K"
)

// forumTransport serves requests to the forum in-process, so tests can use
// the real https://forum.example/ base URL.
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

// fakeForum records requests and answers with the scenario member "42".
type fakeForum struct {
	mu         sync.Mutex
	requests   []string
	tokenCode  string
	memberKey  string
	tokenFails bool
	meBody     string
	memberBody string
}

func (f *fakeForum) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
}

func (f *fakeForum) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeForum) client() *http.Client {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_ = r.ParseForm()
		f.mu.Lock()
		f.tokenCode = r.PostForm.Get("code")
		fails := f.tokenFails
		f.mu.Unlock()

		if fails {
			writeJSON(w, http.StatusBadRequest, `{"error":"invalid_grant"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"access_token":"tok","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("GET /api/core/me", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, `{"errorCode":"3S290/7","errorMessage":"INVALID_ACCESS_TOKEN"}`)
			return
		}
		writeJSON(w, http.StatusOK, orBody(f.meBody, `{"id":"42"}`))
	})
	mux.HandleFunc("GET /api/core/members/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		f.memberKey = r.URL.Query().Get("key")
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, orBody(f.memberBody,
			`{"id":"42","name":"Alice","email":"alice@example.com","primaryGroup":{"name":"Staff"},"secondaryGroups":[]}`))
	})

	return &http.Client{Transport: forumTransport{handler: mux}}
}

func orBody(body, def string) string {
	if body != "" {
		return body
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func scenarioSettings() *settings.MemoryStore {
	return settings.NewMemoryStore(map[string]string{
		settings.KeyClientID:        "client",
		settings.KeyClientSecret:    "secret",
		settings.KeyScopes:          "profile email",
		settings.KeyBaseURL:         testBaseURL,
		settings.KeyAPIKey:          testAPIKey,
		settings.KeyAccountCreation: "1",
		settings.KeyEmailDomains:    "",
	})
}
