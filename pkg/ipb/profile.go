package ipb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MemberID is a member identifier. The REST API sends it as a JSON number;
// string ids are accepted as well and kept verbatim.
type MemberID string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *MemberID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("member id: %w", err)
		}
		*id = MemberID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("member id: %w", err)
	}
	*id = MemberID(n.String())
	return nil
}

func (id MemberID) String() string {
	return string(id)
}

// Group is a member group as embedded in a member profile.
type Group struct {
	Name string `json:"name"`
}

// Profile is the subset of the member resource this package reads.
// Unknown fields in the response are ignored.
type Profile struct {
	PrimaryGroup    *Group   `json:"primaryGroup"`
	ID              MemberID `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	SecondaryGroups []Group  `json:"secondaryGroups"`
}

// IsEmpty reports whether the profile carries no member id.
func (p *Profile) IsEmpty() bool {
	return p == nil || p.ID == ""
}

// GroupNames returns the primary group name followed by the secondary group
// names, in response order. Duplicates and empty names are preserved.
func (p *Profile) GroupNames() []string {
	if p == nil {
		return nil
	}

	names := make([]string, 0, len(p.SecondaryGroups)+1)
	if p.PrimaryGroup != nil {
		names = append(names, p.PrimaryGroup.Name)
	}
	for _, g := range p.SecondaryGroups {
		names = append(names, g.Name)
	}
	return names
}

// currentUser is the response of the api/core/me endpoint.
type currentUser struct {
	ID MemberID `json:"id"`
}

// apiError is the error body returned by the REST API on non-2xx responses.
type apiError struct {
	Code    string `json:"errorCode"`
	Message string `json:"errorMessage"`
}
