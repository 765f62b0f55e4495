package ipb_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forumauth/pkg/ipb"
)

const (
	testClientID     = "test-client"
	testClientSecret = "test-secret"
	testAPIKey       = "test-api-key"
)

// forum is a fake community exposing the token, me and member endpoints.
// Nil handlers fall back to a successful response for member "42".
type forum struct {
	token  http.HandlerFunc
	me     http.HandlerFunc
	member http.HandlerFunc
}

func (f forum) start(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token/", orDefault(f.token, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "test-access-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	mux.HandleFunc("GET /api/core/me", orDefault(f.me, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 42, "name": "Alice"})
	}))
	mux.HandleFunc("GET /api/core/members/{id}", orDefault(f.member, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":              42,
			"name":            "Alice",
			"email":           "alice@example.com",
			"primaryGroup":    map[string]any{"id": 4, "name": "Staff"},
			"secondaryGroups": []any{},
		})
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func orDefault(h, def http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testConfig(baseURL string) ipb.Config {
	return ipb.Config{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		BaseURL:      baseURL + "/",
		APIKey:       testAPIKey,
		RedirectURL:  "https://app.example/oauth/callback",
		Scopes:       []string{"profile", "email"},
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...ipb.Option) *ipb.Client {
	t.Helper()

	opts = append([]ipb.Option{ipb.WithHTTPClient(srv.Client())}, opts...)
	client, err := ipb.New(testConfig(srv.URL), opts...)
	require.NoError(t, err)
	return client
}
