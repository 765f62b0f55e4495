package ipb

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds each outbound call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
}

func defaultOptions() *options {
	return &options{
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout:    DefaultTimeout,
	}
}

// WithHTTPClient sets a custom HTTP client for all outbound requests,
// including the token exchange.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithTimeout sets the deadline applied to each individual outbound call.
// Default: 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used for step-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
