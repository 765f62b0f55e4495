package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the request carries no cookie with the given name.
	ErrNotFound = errors.New("cookie: not found")

	// ErrBadSecret is returned when the signing secret is shorter than 32 bytes.
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")

	// ErrBadSig is returned when a cookie value is malformed or its signature
	// does not match.
	ErrBadSig = errors.New("cookie: invalid signature")

	// ErrExpired is returned when a correctly signed cookie is past its embedded expiry.
	ErrExpired = errors.New("cookie: expired")
)

// Manager writes HMAC-signed cookies that embed their expiry time.
// GetSigned rejects them after that time even if the browser still sends them.
type Manager struct {
	secret   []byte
	now      func() time.Time
	path     string
	secure   bool
	sameSite http.SameSite
}

// Option configures a Manager.
type Option func(*Manager)

// WithSecure sets the Secure flag. Enable it behind HTTPS.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithPath sets the cookie path. Default: "/".
func WithPath(path string) Option {
	return func(m *Manager) { m.path = path }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a Manager. The secret must be at least 32 bytes.
func New(secret string, opts ...Option) (*Manager, error) {
	if len(secret) < 32 {
		return nil, ErrBadSecret
	}

	m := &Manager{
		secret:   []byte(secret),
		now:      time.Now,
		path:     "/",
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// SetSigned writes value signed together with its expiry time.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, ttl time.Duration) {
	expires := m.now().Add(ttl).Unix()
	payload := value + "|" + strconv.FormatInt(expires, 10)

	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload)) +
		"." + base64.RawURLEncoding.EncodeToString(m.sign(name, payload))

	http.SetCookie(w, m.cookie(name, encoded, int(ttl.Seconds())))
}

// GetSigned returns the verified value of a cookie written by SetSigned.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	rawPayload, rawSig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return "", ErrBadSig
	}
	payload, err := base64.RawURLEncoding.DecodeString(rawPayload)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(rawSig)
	if err != nil {
		return "", ErrBadSig
	}
	if !hmac.Equal(sig, m.sign(name, string(payload))) {
		return "", ErrBadSig
	}

	i := strings.LastIndexByte(string(payload), '|')
	if i < 0 {
		return "", ErrBadSig
	}
	expires, err := strconv.ParseInt(string(payload[i+1:]), 10, 64)
	if err != nil {
		return "", ErrBadSig
	}
	if m.now().Unix() > expires {
		return "", ErrExpired
	}

	return string(payload[:i]), nil
}

// Delete expires the cookie in the browser.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// sign binds the signature to the cookie name so values cannot be moved
// between cookies.
func (m *Manager) sign(name, payload string) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(name))
	mac.Write([]byte{0})
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	}
}
