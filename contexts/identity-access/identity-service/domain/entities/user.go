package entities

import "time"

// Role is a named grant. The name is the only semantic attribute; the
// `admin` name is distinguished and bypasses every route check.
type Role struct {
	RoleID string `json:"role_id"`
	Name   string `json:"name"`
}

// User is a local account. Password and reset state are never serialized
// to callers.
type User struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	// Password holds the bcrypt hash, empty for provider-only accounts.
	Password string `json:"-"`
	Roles    []Role `json:"roles"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

// RoleNames supports the authorization pipeline, which reasons about
// role names only.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}
