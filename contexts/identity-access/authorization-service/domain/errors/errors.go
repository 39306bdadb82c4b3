package errors

import "errors"

var (
	// ErrRouteNotFound marks a request name with no persisted route record.
	ErrRouteNotFound = errors.New("route not found")

	// ErrNotAuthenticated marks a caller who must sign in before the
	// request can be evaluated further.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotAuthorized marks an authenticated caller whose grants do not
	// cover the route.
	ErrNotAuthorized = errors.New("not authorized")

	ErrRoleNotFound = errors.New("role not found")
)
