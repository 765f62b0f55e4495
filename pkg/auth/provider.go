package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/forumauth/pkg/identity"
	"github.com/dmitrymomot/forumauth/pkg/ipb"
)

// Name is the provider name reported to the host application.
const Name = "OAuth2"

// State is the position of a Provider in its single attempt.
type State int

const (
	StateIdle State = iota
	StateCodeSet
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCodeSet:
		return "code_set"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Provider runs a single login attempt. It is not safe for concurrent use.
type Provider struct {
	cfg      Config
	registry identity.GroupRegistry
	opts     *options
	service  *ipb.Client
	user     *identity.Identity
	err      error
	code     string
	state    State
}

// NewProvider creates a Provider for one attempt. registry receives the
// member's external groups during Authenticate.
func NewProvider(cfg Config, registry identity.GroupRegistry, opts ...Option) *Provider {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.redirectURL != "" {
		cfg.RedirectURL = o.redirectURL
	}

	return &Provider{cfg: cfg, registry: registry, opts: o}
}

// Name returns "OAuth2".
func (p *Provider) Name() string {
	return Name
}

// Config returns the settings snapshot of this attempt.
func (p *Provider) Config() Config {
	return p.cfg
}

// SetCode stores the authorization code. Only the first code of an attempt is kept.
func (p *Provider) SetCode(code string) *Provider {
	if p.state == StateIdle && code != "" {
		p.code = code
		p.state = StateCodeSet
	}
	return p
}

// Service returns the exchange client, building it on first use.
func (p *Provider) Service() (*ipb.Client, error) {
	if p.service != nil {
		return p.service, nil
	}

	opts := []ipb.Option{ipb.WithLogger(p.opts.logger)}
	if p.opts.httpClient != nil {
		opts = append(opts, ipb.WithHTTPClient(p.opts.httpClient))
	}
	if p.opts.timeout > 0 {
		opts = append(opts, ipb.WithTimeout(p.opts.timeout))
	}

	svc, err := ipb.New(p.cfg.Client(), opts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	p.service = svc
	return svc, nil
}

// AuthCodeURL returns the forum authorization URL carrying state.
func (p *Provider) AuthCodeURL(state string) (string, error) {
	svc, err := p.Service()
	if err != nil {
		return "", err
	}
	return svc.AuthCodeURL(state), nil
}

// Authenticate exchanges the code and maps the member profile. It reports
// only success; the cause of a failure is logged and kept in Err.
func (p *Provider) Authenticate(ctx context.Context) bool {
	switch p.state {
	case StateIdle:
		return p.fail(ctx, "code", ErrNoCode)
	case StateAuthenticated, StateFailed:
		p.err = ErrCodeUsed
		p.opts.logger.WarnContext(ctx, "authentication attempted twice",
			slog.String("provider", Name),
			slog.String("state", p.state.String()),
		)
		return false
	}

	code := p.code
	p.code = ""

	svc, err := p.Service()
	if err != nil {
		return p.fail(ctx, "config", err)
	}

	profile, err := svc.FetchProfile(ctx, code)
	if err != nil {
		return p.fail(ctx, fetchStep(err), err)
	}
	if profile.IsEmpty() {
		return p.fail(ctx, "profile", ErrEmptyProfile)
	}

	mapper := identity.NewMapper(p.cfg.Policy(), p.registry,
		identity.WithMapperLogger(p.opts.logger),
	)
	ident, err := mapper.Map(ctx, profile)
	if err != nil {
		return p.fail(ctx, "map", err)
	}

	p.user = ident
	p.state = StateAuthenticated
	p.opts.logger.InfoContext(ctx, "member authenticated",
		slog.String("provider", Name),
		slog.String(identity.ExternalIDColumn, ident.ExternalID),
		slog.Bool("creation_allowed", ident.CreationAllowed),
	)
	return true
}

// fetchStep names the failed stage of ipb.Client.FetchProfile.
func fetchStep(err error) string {
	if errors.Is(err, ipb.ErrTokenExchange) {
		return "token"
	}
	return "profile"
}

func (p *Provider) fail(ctx context.Context, step string, err error) bool {
	p.state = StateFailed
	p.err = err
	p.opts.logger.ErrorContext(ctx, "authentication failed",
		slog.String("provider", Name),
		slog.String("step", step),
		slog.String("error", err.Error()),
	)
	return false
}

// User returns the mapped identity after a successful Authenticate, nil otherwise.
func (p *Provider) User() *identity.Identity {
	if p.state != StateAuthenticated {
		return nil
	}
	return p.user
}

// State returns the attempt state.
func (p *Provider) State() State {
	return p.state
}

// Err returns the cause of the last failed Authenticate.
func (p *Provider) Err() error {
	return p.err
}

// Unlink clears the forum link of a local user. Repeating it is harmless.
func (p *Provider) Unlink(ctx context.Context, userID uuid.UUID) error {
	if p.opts.unlinker == nil {
		return ErrUnlinkUnsupported
	}
	return p.opts.unlinker.Unlink(ctx, userID)
}
