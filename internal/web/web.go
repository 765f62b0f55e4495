package web

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/forumauth/pkg/account"
	"github.com/dmitrymomot/forumauth/pkg/auth"
	"github.com/dmitrymomot/forumauth/pkg/cookie"
	"github.com/dmitrymomot/forumauth/pkg/health"
	"github.com/dmitrymomot/forumauth/pkg/identity"
)

const (
	StateCookie   = "forumauth_state"
	SessionCookie = "forumauth_session"

	defaultStateTTL   = 10 * time.Minute
	defaultSessionTTL = 24 * time.Hour
)

// ProviderFactory builds a Provider for one login attempt. *auth.Factory implements it.
type ProviderFactory interface {
	New(ctx context.Context) (*auth.Provider, error)
}

// AccountResolver turns an authenticated identity into a local user.
// *account.Resolver implements it.
type AccountResolver interface {
	Resolve(ctx context.Context, ident *identity.Identity) (*account.User, error)
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithHealthChecks sets the checks served on /health/ready.
func WithHealthChecks(checks health.Checks) Option {
	return func(h *Handler) { h.checks = checks }
}

// WithSessionTTL sets the lifetime of the session cookie. Default: 24h.
func WithSessionTTL(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.sessionTTL = d
		}
	}
}

// Handler serves the login, callback and unlink routes.
type Handler struct {
	providers  ProviderFactory
	accounts   AccountResolver
	cookies    *cookie.Manager
	logger     *slog.Logger
	checks     health.Checks
	stateTTL   time.Duration
	sessionTTL time.Duration
}

// New creates a Handler.
func New(providers ProviderFactory, accounts AccountResolver, cookies *cookie.Manager, opts ...Option) *Handler {
	h := &Handler{
		providers:  providers,
		accounts:   accounts,
		cookies:    cookies,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		stateTTL:   defaultStateTTL,
		sessionTTL: defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the chi router with all routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Recover(h.logger))

	r.Get("/health/live", health.Liveness())
	r.Get("/health/ready", health.Readiness(h.checks, health.WithLogger(h.logger)))

	r.Get("/oauth/login", h.login)
	r.Get("/oauth/callback", h.callback)
	r.Post("/users/{id}/oauth2/unlink", h.unlink)
	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.providers.New(ctx)
	if err != nil {
		h.serverError(w, r, "load provider", err)
		return
	}

	state, err := newState()
	if err != nil {
		h.serverError(w, r, "generate state", err)
		return
	}

	target, err := p.AuthCodeURL(state)
	if err != nil {
		h.serverError(w, r, "build authorization url", err)
		return
	}

	h.cookies.SetSigned(w, StateCookie, state, h.stateTTL)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		h.logger.WarnContext(ctx, "authorization denied by forum",
			slog.String("error", e),
			slog.String("description", q.Get("error_description")),
		)
		writeError(w, r, http.StatusUnauthorized, "authorization denied")
		return
	}

	code := q.Get("code")
	if code == "" {
		writeError(w, r, http.StatusBadRequest, "missing authorization code")
		return
	}

	expected, err := h.cookies.GetSigned(r, StateCookie)
	h.cookies.Delete(w, StateCookie)
	if err != nil || expected != q.Get("state") {
		if err != nil {
			h.logger.WarnContext(ctx, "state cookie rejected", slog.String("error", err.Error()))
		}
		writeError(w, r, http.StatusBadRequest, "invalid state")
		return
	}

	p, err := h.providers.New(ctx)
	if err != nil {
		h.serverError(w, r, "load provider", err)
		return
	}

	if !p.SetCode(code).Authenticate(ctx) {
		writeError(w, r, http.StatusUnauthorized, "authentication failed")
		return
	}

	user, err := h.accounts.Resolve(ctx, p.User())
	switch {
	case errors.Is(err, identity.ErrCreationDenied):
		writeError(w, r, http.StatusForbidden, "account creation not permitted")
		return
	case err != nil:
		h.serverError(w, r, "resolve account", err)
		return
	}

	h.cookies.SetSigned(w, SessionCookie, user.ID.String(), h.sessionTTL)
	writeJSON(w, http.StatusOK, loginResponse{Status: "ok", UserID: user.ID.String()})
}

// unlink is allowed only for the signed-in owner of the account.
func (h *Handler) unlink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.sessionUser(r)
	if err != nil {
		h.logger.WarnContext(ctx, "session cookie rejected", slog.String("error", err.Error()))
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid user id")
		return
	}
	if id != session {
		h.logger.WarnContext(ctx, "unlink of another account refused",
			slog.String("user_id", session.String()),
			slog.String("target_id", id.String()),
		)
		writeError(w, r, http.StatusForbidden, "not allowed to unlink this account")
		return
	}

	p, err := h.providers.New(ctx)
	if err != nil {
		h.serverError(w, r, "load provider", err)
		return
	}

	switch err := p.Unlink(ctx, id); {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, account.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, "user not found")
	case errors.Is(err, auth.ErrUnlinkUnsupported):
		writeError(w, r, http.StatusNotImplemented, "unlink not supported")
	default:
		h.serverError(w, r, "unlink account", err)
	}
}

// sessionUser returns the user id carried by a valid session cookie.
func (h *Handler) sessionUser(r *http.Request) (uuid.UUID, error) {
	raw, err := h.cookies.GetSigned(r, SessionCookie)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(raw)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type loginResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: middleware.GetReqID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
