package interfaces

// Identity describes the authenticated principal performing a store
// operation. It is the result shape supplied by the host application's
// identity provider; the wiki core never authenticates anyone itself.
type Identity struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles,omitempty"`
}

// HasRole reports whether the identity carries the named role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsZero reports whether the identity is unauthenticated.
func (i Identity) IsZero() bool {
	return i.ID == ""
}
