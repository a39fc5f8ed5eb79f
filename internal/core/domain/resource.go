package domain

// User is a user record as returned by the Kinde management API.
// Resources are read-only once fetched; purge flows only consume the ID.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// OrganizationUser is a user's membership record within an organisation.
type OrganizationUser struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// Identity is a single sign-in identity attached to a user (email, social
// provider, username and so on).
type Identity struct {
	ID        string `json:"id"`
	Type      string `json:"type,omitempty"`
	Name      string `json:"name,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}
