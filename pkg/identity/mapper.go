package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/forumauth/pkg/ipb"
)

// GroupRegistry creates or returns the local group linked to an external group.
// Implementations must be atomic for concurrent calls with the same externalID.
type GroupRegistry interface {
	GetOrCreateExternalGroup(ctx context.Context, externalID, name string) (uuid.UUID, error)
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithMapperLogger sets the logger used to report registered groups.
func WithMapperLogger(l *slog.Logger) MapperOption {
	return func(m *Mapper) {
		if l != nil {
			m.logger = l
		}
	}
}

// Mapper turns member profiles into identities under a fixed Policy.
type Mapper struct {
	policy   Policy
	registry GroupRegistry
	logger   *slog.Logger
}

// NewMapper creates a Mapper. The registry must not be nil.
func NewMapper(policy Policy, registry GroupRegistry, opts ...MapperOption) *Mapper {
	m := &Mapper{
		policy:   policy,
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy returns the policy snapshot the mapper applies.
func (m *Mapper) Policy() Policy {
	return m.policy
}

// Map builds the identity for profile and registers its external groups.
// A policy denial is reported through Identity.CreationAllowed, not as an error.
func (m *Mapper) Map(ctx context.Context, profile *ipb.Profile) (*Identity, error) {
	if profile.IsEmpty() {
		return nil, ErrEmptyProfile
	}

	ident := &Identity{
		ExternalID:      profile.ID.String(),
		CreationAllowed: m.policy.CreationAllowed(profile.Email),
		Attributes:      map[string]int{},
	}

	if ident.CreationAllowed {
		ident.Username = profile.Name
		ident.Name = profile.Name
		ident.Email = profile.Email
		ident.Attributes[AttrExternalUser] = 1
		ident.Attributes[AttrDisableLoginForm] = 1
	}

	ident.Groups = uniqueNames(profile.GroupNames())
	ident.GroupIDs = make([]uuid.UUID, 0, len(ident.Groups))
	for _, name := range ident.Groups {
		id, err := m.registry.GetOrCreateExternalGroup(ctx, name, name)
		if err != nil {
			return nil, errors.Join(ErrGroupRegistration, fmt.Errorf("group %q: %w", name, err))
		}
		ident.GroupIDs = append(ident.GroupIDs, id)
	}

	m.logger.DebugContext(ctx, "identity mapped",
		slog.String("external_id", ident.ExternalID),
		slog.Bool("creation_allowed", ident.CreationAllowed),
		slog.Any("groups", ident.Groups),
	)

	return ident, nil
}

// uniqueNames drops empty and repeated names, keeping first-seen order.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
