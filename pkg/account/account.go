package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a local account.
type User struct {
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Username         string    `json:"username"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	ExternalID       string    `json:"-"`
	ID               uuid.UUID `json:"id"`
	IsExternal       bool      `json:"is_external"`
	DisableLoginForm bool      `json:"disable_login_form"`
}

// Group is a local group. ExternalID is empty for groups managed locally.
type Group struct {
	ExternalID string
	Name       string
	ID         uuid.UUID
}

// ProfileUpdate carries profile fields to refresh. Empty fields are left unchanged.
type ProfileUpdate struct {
	Username string
	Name     string
	Email    string
}

// IsEmpty reports whether the update changes nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Username == "" && p.Name == "" && p.Email == ""
}

// Repository persists users, groups and memberships.
type Repository interface {
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// Create inserts u, assigning ID and timestamps.
	Create(ctx context.Context, u *User) error
	UpdateProfile(ctx context.Context, id uuid.UUID, p ProfileUpdate) error
	// ClearExternalID unlinks the user. Clearing an unlinked user is not an error.
	ClearExternalID(ctx context.Context, id uuid.UUID) error
	GetOrCreateExternalGroup(ctx context.Context, externalID, name string) (uuid.UUID, error)
	// SyncExternalGroups makes the user's memberships in externally managed
	// groups exactly groupIDs. Local group memberships are untouched.
	SyncExternalGroups(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) error
	ListUserGroups(ctx context.Context, userID uuid.UUID) ([]Group, error)
}
