package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"keystone/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/authorization-service/domain/errors"
)

// Store is an in-memory adapter implementing the authorization ports.
// Contributor relations are settable from tests and from the in-memory
// bootstrap via SetContributors.
type Store struct {
	mu sync.RWMutex

	routes       map[string]entities.Route
	roles        map[string]entities.Role
	routeRoles   map[string][]string
	contributors map[string]map[string][]string
}

func NewStore() *Store {
	return &Store{
		routes:       make(map[string]entities.Route),
		roles:        make(map[string]entities.Role),
		routeRoles:   make(map[string][]string),
		contributors: make(map[string]map[string][]string),
	}
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) populate(route entities.Route) entities.Route {
	route.Roles = nil
	for _, roleID := range s.routeRoles[route.RouteID] {
		if role, ok := s.roles[roleID]; ok {
			route.Roles = append(route.Roles, role)
		}
	}
	return route
}

func (s *Store) FindRouteByName(_ context.Context, name string) (entities.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, route := range s.routes {
		if route.Name == name {
			return s.populate(route), nil
		}
	}
	return entities.Route{}, domainerrors.ErrRouteNotFound
}

func (s *Store) ListRoutes(_ context.Context) ([]entities.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Route, 0, len(s.routes))
	for _, route := range s.routes {
		items = append(items, s.populate(route))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *Store) CreateRoute(_ context.Context, route entities.Route) (entities.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[route.RouteID] = route
	return route, nil
}

func (s *Store) UpdateRoute(_ context.Context, route entities.Route) (entities.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes[route.RouteID]; !ok {
		return entities.Route{}, domainerrors.ErrRouteNotFound
	}
	s.routes[route.RouteID] = route
	return s.populate(route), nil
}

func (s *Store) DeleteRoute(_ context.Context, routeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes[routeID]; !ok {
		return domainerrors.ErrRouteNotFound
	}
	delete(s.routes, routeID)
	delete(s.routeRoles, routeID)
	return nil
}

func (s *Store) AttachRole(_ context.Context, routeID string, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, attached := range s.routeRoles[routeID] {
		if attached == roleID {
			return nil
		}
	}
	s.routeRoles[routeID] = append(s.routeRoles[routeID], roleID)
	return nil
}

func (s *Store) FindRoleByName(_ context.Context, name string) (entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, role := range s.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return entities.Role{}, domainerrors.ErrRoleNotFound
}

func (s *Store) CreateRole(_ context.Context, role entities.Role) (entities.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role.RoleID] = role
	return role, nil
}

// SetContributors replaces the contributor list recorded on one entity.
func (s *Store) SetContributors(collection string, entityID string, userIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contributors[collection] == nil {
		s.contributors[collection] = make(map[string][]string)
	}
	s.contributors[collection][entityID] = append([]string(nil), userIDs...)
}

func (s *Store) Contributors(_ context.Context, collection string, entityID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.contributors[collection][entityID]...), nil
}

func (s *Store) ContributedIDs(_ context.Context, collection string, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for entityID, userIDs := range s.contributors[collection] {
		for _, contributor := range userIDs {
			if contributor == userID {
				ids = append(ids, entityID)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
