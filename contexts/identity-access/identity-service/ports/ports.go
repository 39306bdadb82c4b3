package ports

import (
	"context"
	"time"

	"keystone/contexts/identity-access/identity-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// UserFilter narrows List results. A nil IDs slice means no id scoping; an
// empty non-nil slice matches nothing (the authorization pipeline produces
// it when a caller contributes to no entity).
type UserFilter struct {
	IDs []string
}

// UserRepository is the datastore contract for the user collection.
// Find results come back with roles populated.
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (entities.User, error)
	FindByEmail(ctx context.Context, email string) (entities.User, error)
	FindByUsername(ctx context.Context, username string) (entities.User, error)
	List(ctx context.Context, filter UserFilter) ([]entities.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user entities.User) (entities.User, error)
	Update(ctx context.Context, user entities.User) (entities.User, error)
	Delete(ctx context.Context, userID string) error
	AssignRole(ctx context.Context, userID string, roleID string) error
}

// PassportRepository is the datastore contract for the passport collection.
type PassportRepository interface {
	FindByProviderIdentifier(ctx context.Context, provider string, identifier string) (entities.Passport, error)
	FindLocalByUserID(ctx context.Context, userID string) (entities.Passport, error)
	FindByResetCode(ctx context.Context, code string) (entities.Passport, error)
	CreatePassport(ctx context.Context, passport entities.Passport) (entities.Passport, error)
	UpdatePassport(ctx context.Context, passport entities.Passport) (entities.Passport, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// RoleDirectory exposes the persisted role records. Creation and seeding
// belong to the route registry synchronizer.
type RoleDirectory interface {
	FindRoleByName(ctx context.Context, name string) (entities.Role, error)
}

type Mail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers outbound mail. Delivery itself is an external
// collaborator; adapters may log, queue, or hand off to a relay.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

type UserRegisteredEvent struct {
	EventID    string
	UserID     string
	Username   string
	Email      string
	Provider   string
	OccurredAt time.Time
}

// EventPublisher fans identity events out to interested consumers.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event UserRegisteredEvent) error
}
