package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"keystone/contexts/identity-access/identity-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
	"keystone/contexts/identity-access/identity-service/ports"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing the identity ports. It is
// intended for tests and local development wiring; it also records mail
// and events so flows can be asserted end to end.
type Store struct {
	mu sync.RWMutex

	users     map[string]entities.User
	passports map[string]entities.Passport
	userRoles map[string][]string
	roles     map[string]entities.Role

	SentMail []ports.Mail
	Events   []ports.UserRegisteredEvent
}

// NewStore builds an empty store seeded with the baseline roles.
func NewStore() *Store {
	roles := map[string]entities.Role{
		"role-admin":       {RoleID: "role-admin", Name: "admin"},
		"role-registered":  {RoleID: "role-registered", Name: "registered"},
		"role-contributor": {RoleID: "role-contributor", Name: "contributor"},
		"role-public":      {RoleID: "role-public", Name: "public"},
	}
	return &Store{
		users:     make(map[string]entities.User),
		passports: make(map[string]entities.Passport),
		userRoles: make(map[string][]string),
		roles:     roles,
	}
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) populate(user entities.User) entities.User {
	user.Roles = nil
	for _, roleID := range s.userRoles[user.UserID] {
		if role, ok := s.roles[roleID]; ok {
			user.Roles = append(user.Roles, role)
		}
	}
	return user
}

func (s *Store) FindByID(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return s.populate(user), nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return s.populate(user), nil
		}
	}
	return entities.User{}, domainerrors.ErrUserNotFound
}

func (s *Store) FindByUsername(_ context.Context, username string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return s.populate(user), nil
		}
	}
	return entities.User{}, domainerrors.ErrUserNotFound
}

func (s *Store) List(_ context.Context, filter ports.UserFilter) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var scope map[string]struct{}
	if filter.IDs != nil {
		scope = make(map[string]struct{}, len(filter.IDs))
		for _, id := range filter.IDs {
			scope[id] = struct{}{}
		}
	}

	items := make([]entities.User, 0, len(s.users))
	for _, user := range s.users {
		if scope != nil {
			if _, ok := scope[user.UserID]; !ok {
				continue
			}
		}
		items = append(items, s.populate(user))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UserID < items[j].UserID })
	return items, nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Store) Create(_ context.Context, user entities.User) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if (user.Email != "" && existing.Email == user.Email) ||
			(user.Username != "" && existing.Username == user.Username) {
			return entities.User{}, domainerrors.ErrDuplicateIdentity
		}
	}
	s.users[user.UserID] = user
	return user, nil
}

func (s *Store) Update(_ context.Context, user entities.User) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UserID]; !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	for _, existing := range s.users {
		if existing.UserID == user.UserID {
			continue
		}
		if (user.Email != "" && existing.Email == user.Email) ||
			(user.Username != "" && existing.Username == user.Username) {
			return entities.User{}, domainerrors.ErrDuplicateIdentity
		}
	}
	s.users[user.UserID] = user
	return s.populate(user), nil
}

func (s *Store) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return domainerrors.ErrUserNotFound
	}
	delete(s.users, userID)
	delete(s.userRoles, userID)
	return nil
}

func (s *Store) AssignRole(_ context.Context, userID string, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return domainerrors.ErrUserNotFound
	}
	for _, assigned := range s.userRoles[userID] {
		if assigned == roleID {
			return nil
		}
	}
	s.userRoles[userID] = append(s.userRoles[userID], roleID)
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

func (s *Store) FindByProviderIdentifier(_ context.Context, provider string, identifier string) (entities.Passport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, passport := range s.passports {
		if passport.Provider == provider && passport.Identifier == identifier {
			return passport, nil
		}
	}
	return entities.Passport{}, domainerrors.ErrPassportNotFound
}

func (s *Store) FindLocalByUserID(_ context.Context, userID string) (entities.Passport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, passport := range s.passports {
		if passport.UserID == userID && passport.Protocol == entities.ProtocolLocal {
			return passport, nil
		}
	}
	return entities.Passport{}, domainerrors.ErrPassportNotFound
}

func (s *Store) FindByResetCode(_ context.Context, code string) (entities.Passport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if code == "" {
		return entities.Passport{}, domainerrors.ErrPassportNotFound
	}
	for _, passport := range s.passports {
		if passport.ResetCode == code {
			return passport, nil
		}
	}
	return entities.Passport{}, domainerrors.ErrPassportNotFound
}

func (s *Store) CreatePassport(_ context.Context, passport entities.Passport) (entities.Passport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.passports {
		if passport.Identifier != "" &&
			existing.Provider == passport.Provider &&
			existing.Identifier == passport.Identifier {
			return entities.Passport{}, domainerrors.ErrDuplicateIdentity
		}
	}
	s.passports[passport.PassportID] = passport
	return passport, nil
}

func (s *Store) UpdatePassport(_ context.Context, passport entities.Passport) (entities.Passport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.passports[passport.PassportID]; !ok {
		return entities.Passport{}, domainerrors.ErrPassportNotFound
	}
	s.passports[passport.PassportID] = passport
	return passport, nil
}

func (s *Store) DeleteByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, passport := range s.passports {
		if passport.UserID == userID {
			delete(s.passports, id)
		}
	}
	return nil
}

func (s *Store) Send(_ context.Context, mail ports.Mail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SentMail = append(s.SentMail, mail)
	return nil
}

func (s *Store) PublishUserRegistered(_ context.Context, event ports.UserRegisteredEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return nil
}
