package identity

import "github.com/google/uuid"

// ExternalIDColumn is the local account column holding the remote member id.
const ExternalIDColumn = "oauth2_user_id"

// Extra attribute keys set on identities that may create an account.
const (
	AttrExternalUser     = "is_ldap_user"
	AttrDisableLoginForm = "disable_login_form"
)

// Identity is the normalized result of mapping one member profile.
//
// Username, Name and Email are empty when CreationAllowed is false, so that
// downstream code neither creates nor overwrites an account from them.
type Identity struct {
	ExternalID string
	Username   string
	Name       string
	Email      string
	// Role is always empty: the remote platform never overrides local roles.
	Role            string
	Groups          []string
	GroupIDs        []uuid.UUID
	CreationAllowed bool
	Attributes      map[string]int
}

// IsExternalUser reports whether the identity is flagged as externally managed.
func (i *Identity) IsExternalUser() bool {
	return i != nil && i.Attributes[AttrExternalUser] == 1
}

// LoginFormDisabled reports whether password login must be disabled for the
// account created from this identity.
func (i *Identity) LoginFormDisabled() bool {
	return i != nil && i.Attributes[AttrDisableLoginForm] == 1
}
