package entities

import "strings"

// Route is a persisted route-permission record. One record exists per
// declared "<verb> <path>" name; the Synchronizer owns its lifecycle.
type Route struct {
	RouteID                string
	Name                   string
	Controller             string
	Action                 string
	Verb                   string
	IsPublic               bool
	RegisteredAuthorized   bool
	ContributorsAuthorized bool
	Roles                  []Role
}

type Role struct {
	RoleID string
	Name   string
}

// NormalizeRouteName produces the canonical "<lowercase-verb> <path>" form
// shared between configuration and persisted records.
func NormalizeRouteName(verb string, path string) string {
	return strings.ToLower(strings.TrimSpace(verb)) + " " + strings.TrimSpace(path)
}

// HasRole reports whether the route's explicit grant set names the role.
func (r Route) HasRole(name string) bool {
	for _, role := range r.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}
