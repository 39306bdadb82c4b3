package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "keystone/contexts/identity-access/identity-service/application"
	"keystone/contexts/identity-access/identity-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
	"keystone/contexts/identity-access/identity-service/ports"
)

// LinkProviderCommand carries a normalized third-party identity. CallerID
// is empty for unauthenticated provider logins and set when an existing
// session links an additional provider.
type LinkProviderCommand struct {
	CallerID    string
	Protocol    string
	Provider    string
	Identifier  string
	Profile     entities.Profile
	AccessToken string
	TokenSecret string
}

// LinkProviderUseCase resolves a provider identity to a local user. It
// covers both "log in via provider" and "link a provider to the current
// account" without ever creating duplicate users for one identity:
//
//  1. no session, no passport:  create user + passport
//  2. no session, passport:     refresh stored tokens, return linked user
//  3. session, no passport:     attach passport to the session's user
//  4. session, passport:        no-op, return the session's user
type LinkProviderUseCase struct {
	Users     ports.UserRepository
	Passports ports.PassportRepository
	Clock     ports.Clock
	IDs       ports.IDGenerator
	Events    ports.EventPublisher
	Logger    *slog.Logger
}

func (u LinkProviderUseCase) Execute(ctx context.Context, cmd LinkProviderCommand) (entities.User, error) {
	logger := application.ResolveLogger(u.Logger)

	cmd.Provider = strings.ToLower(strings.TrimSpace(cmd.Provider))
	cmd.Identifier = strings.TrimSpace(cmd.Identifier)
	if cmd.Identifier == "" {
		return entities.User{}, domainerrors.ErrMissingProviderID
	}
	if cmd.Profile.Username == "" && cmd.Profile.Email == "" {
		return entities.User{}, domainerrors.ErrProfileUnusable
	}

	passport, err := u.Passports.FindByProviderIdentifier(ctx, cmd.Provider, cmd.Identifier)
	switch {
	case err == nil:
		if cmd.CallerID != "" {
			// Already linked; idempotent re-link.
			return u.Users.FindByID(ctx, cmd.CallerID)
		}
		return u.refreshTokens(ctx, passport, cmd)

	case errors.Is(err, domainerrors.ErrPassportNotFound):
		// fall through to creation below
	default:
		return entities.User{}, err
	}

	ownerID := cmd.CallerID
	created := false
	if ownerID == "" {
		user, err := u.createUserFromProfile(ctx, cmd.Profile)
		if err != nil {
			return entities.User{}, err
		}
		ownerID = user.UserID
		created = true
	}

	passportID, err := u.IDs.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}
	now := u.Clock.Now()
	if _, err := u.Passports.CreatePassport(ctx, entities.Passport{
		PassportID:  passportID,
		Protocol:    cmd.Protocol,
		Provider:    cmd.Provider,
		Identifier:  cmd.Identifier,
		AccessToken: cmd.AccessToken,
		TokenSecret: cmd.TokenSecret,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		if created {
			_ = u.Users.Delete(ctx, ownerID)
		}
		return entities.User{}, err
	}

	user, err := u.Users.FindByID(ctx, ownerID)
	if err != nil {
		return entities.User{}, err
	}

	if created {
		eventID, idErr := u.IDs.NewID(ctx)
		if idErr == nil && u.Events != nil {
			_ = u.Events.PublishUserRegistered(ctx, ports.UserRegisteredEvent{
				EventID:    eventID,
				UserID:     user.UserID,
				Username:   user.Username,
				Email:      user.Email,
				Provider:   cmd.Provider,
				OccurredAt: now,
			})
		}
	}

	logger.Info("provider linked",
		"event", "identity_provider_linked",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", user.UserID,
		"provider", cmd.Provider,
		"new_user", created,
	)
	return user, nil
}

func (u LinkProviderUseCase) refreshTokens(ctx context.Context, passport entities.Passport, cmd LinkProviderCommand) (entities.User, error) {
	if (cmd.AccessToken != "" && cmd.AccessToken != passport.AccessToken) ||
		(cmd.TokenSecret != "" && cmd.TokenSecret != passport.TokenSecret) {
		passport.AccessToken = cmd.AccessToken
		passport.TokenSecret = cmd.TokenSecret
		passport.UpdatedAt = u.Clock.Now()
		if _, err := u.Passports.UpdatePassport(ctx, passport); err != nil {
			return entities.User{}, err
		}
	}
	return u.Users.FindByID(ctx, passport.UserID)
}

func (u LinkProviderUseCase) createUserFromProfile(ctx context.Context, profile entities.Profile) (entities.User, error) {
	userID, err := u.IDs.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}
	now := u.Clock.Now()
	return u.Users.Create(ctx, entities.User{
		UserID:    userID,
		Username:  profile.Username,
		Email:     strings.ToLower(profile.Email),
		CreatedAt: now,
		UpdatedAt: now,
	})
}
