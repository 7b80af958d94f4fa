package authclient

import (
	"encoding/json"
	"maps"
)

const (
	// RoleAdmin is the only role allowed past the admin guard
	RoleAdmin = "ADMIN"
	// RoleUser is the role of every other authenticated account
	RoleUser = "USER"
)

// User is the account record returned by the backend. Fields the backend
// sends that are not modeled here are kept in Extra.
type User struct {
	ID         string         `json:"userId,omitempty"`
	Username   string         `json:"username,omitempty"`
	Email      string         `json:"email,omitempty"`
	FirstName  string         `json:"firstName,omitempty"`
	MiddleName string         `json:"middleName,omitempty"`
	LastName   string         `json:"lastName,omitempty"`
	Role       string         `json:"role"`
	Extra      map[string]any `json:"-"`
}

type userFields User

var userKnownKeys = map[string]struct{}{
	"userId":     {},
	"username":   {},
	"email":      {},
	"firstName":  {},
	"middleName": {},
	"lastName":   {},
	"role":       {},
}

func (u *User) UnmarshalJSON(data []byte) error {
	var fields userFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key := range userKnownKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		fields.Extra = raw
	}

	*u = User(fields)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(userFields(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return known, nil
	}

	out := make(map[string]any, len(u.Extra)+len(userKnownKeys))
	for k, v := range u.Extra {
		out[k] = v
	}
	if err := json.Unmarshal(known, &out); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// Clone returns a deep enough copy for readers outside the store
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Extra != nil {
		c.Extra = maps.Clone(u.Extra)
	}
	return &c
}

// FullName joins the name parts that are set
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	name := ""
	for _, part := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if part == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	return name
}

// Credentials is the login payload
type Credentials struct {
	Username string `json:"login"`
	Password string `json:"password"`
}

// TokenResponse is what login and refresh produce once the configured
// properties have been extracted from the backend payload.
type TokenResponse struct {
	AccessToken  string
	RefreshToken string
	User         *User
}
