package account

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/forumauth/pkg/identity"
)

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver turns a mapped identity into a local user.
type Resolver struct {
	repo   Repository
	logger *slog.Logger
}

// NewResolver creates a Resolver over repo.
func NewResolver(repo Repository, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		repo:   repo,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Repository returns the underlying repository.
func (r *Resolver) Repository() Repository {
	return r.repo
}

// Resolve returns the user linked to ident, creating one when the identity
// allows it. A member without a linked user and without creation rights
// yields identity.ErrCreationDenied.
func (r *Resolver) Resolve(ctx context.Context, ident *identity.Identity) (*User, error) {
	if ident == nil || ident.ExternalID == "" {
		return nil, ErrMissingExternalID
	}

	u, err := r.repo.FindByExternalID(ctx, ident.ExternalID)
	switch {
	case err == nil:
		return r.refresh(ctx, u, ident)
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	case !ident.CreationAllowed:
		r.logger.InfoContext(ctx, "account creation denied",
			slog.String(identity.ExternalIDColumn, ident.ExternalID),
		)
		return nil, identity.ErrCreationDenied
	}

	u = &User{
		Username:         ident.Username,
		Name:             ident.Name,
		Email:            ident.Email,
		Role:             ident.Role,
		ExternalID:       ident.ExternalID,
		IsExternal:       ident.IsExternalUser(),
		DisableLoginForm: ident.LoginFormDisabled(),
	}
	if err := r.repo.Create(ctx, u); err != nil {
		if !errors.Is(err, ErrAlreadyLinked) {
			return nil, err
		}
		// A concurrent login created the account first.
		existing, findErr := r.repo.FindByExternalID(ctx, ident.ExternalID)
		if findErr != nil {
			return nil, errors.Join(err, findErr)
		}
		return r.refresh(ctx, existing, ident)
	}

	if err := r.repo.SyncExternalGroups(ctx, u.ID, ident.GroupIDs); err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "account created",
		slog.String("user_id", u.ID.String()),
		slog.String(identity.ExternalIDColumn, u.ExternalID),
		slog.Int("groups", len(ident.GroupIDs)),
	)
	return u, nil
}

func (r *Resolver) refresh(ctx context.Context, u *User, ident *identity.Identity) (*User, error) {
	update := ProfileUpdate{Username: ident.Username, Name: ident.Name, Email: ident.Email}
	if !update.IsEmpty() {
		if err := r.repo.UpdateProfile(ctx, u.ID, update); err != nil {
			return nil, err
		}
	}
	if err := r.repo.SyncExternalGroups(ctx, u.ID, ident.GroupIDs); err != nil {
		return nil, err
	}

	fresh, err := r.repo.FindByID(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "account linked",
		slog.String("user_id", fresh.ID.String()),
		slog.String(identity.ExternalIDColumn, fresh.ExternalID),
	)
	return fresh, nil
}

// Unlink clears the user's external id. Unlinking an unlinked user succeeds.
func (r *Resolver) Unlink(ctx context.Context, userID uuid.UUID) error {
	if err := r.repo.ClearExternalID(ctx, userID); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "account unlinked", slog.String("user_id", userID.String()))
	return nil
}

// GetOrCreateExternalGroup lets a Resolver serve as the mapper's group registry.
func (r *Resolver) GetOrCreateExternalGroup(ctx context.Context, externalID, name string) (uuid.UUID, error) {
	return r.repo.GetOrCreateExternalGroup(ctx, externalID, name)
}

var _ identity.GroupRegistry = (*Resolver)(nil)
