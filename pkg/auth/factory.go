package auth

import (
	"context"

	"github.com/dmitrymomot/forumauth/pkg/identity"
	"github.com/dmitrymomot/forumauth/pkg/settings"
)

// Factory builds one Provider per login attempt from the current settings.
type Factory struct {
	settings settings.Reader
	registry identity.GroupRegistry
	opts     []Option
}

// NewFactory creates a Factory. opts apply to every Provider it builds.
func NewFactory(r settings.Reader, groups identity.GroupRegistry, opts ...Option) *Factory {
	return &Factory{settings: r, registry: groups, opts: opts}
}

// New loads a fresh settings snapshot and returns a Provider in StateIdle.
func (f *Factory) New(ctx context.Context) (*Provider, error) {
	cfg, err := LoadConfig(ctx, f.settings)
	if err != nil {
		return nil, err
	}
	return NewProvider(cfg, f.registry, f.opts...), nil
}
