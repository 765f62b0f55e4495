package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Unlinker clears the external id stored on a local user.
type Unlinker interface {
	Unlink(ctx context.Context, userID uuid.UUID) error
}

// Option configures a Provider or a Factory.
type Option func(*options)

type options struct {
	httpClient  *http.Client
	logger      *slog.Logger
	unlinker    Unlinker
	redirectURL string
	timeout     time.Duration
}

func defaultOptions() *options {
	return &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithHTTPClient sets the HTTP client used for every call to the forum.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger. Failed attempts are logged at error level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimeout bounds each outbound call. Default: ipb.DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRedirectURL sets the callback URL registered with the forum.
func WithRedirectURL(u string) Option {
	return func(o *options) { o.redirectURL = u }
}

// WithUnlinker enables Provider.Unlink.
func WithUnlinker(u Unlinker) Option {
	return func(o *options) { o.unlinker = u }
}
