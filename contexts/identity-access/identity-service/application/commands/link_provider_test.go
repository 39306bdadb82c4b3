package commands

import (
	"context"
	"errors"
	"testing"

	"keystone/contexts/identity-access/identity-service/adapters/memory"
	"keystone/contexts/identity-access/identity-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
)

func newLinkUseCase(store *memory.Store) LinkProviderUseCase {
	return LinkProviderUseCase{
		Users:     store,
		Passports: store,
		Clock:     store,
		IDs:       store,
		Events:    store,
	}
}

func TestLinkProviderCreatesUserWhenAnonymous(t *testing.T) {
	store := memory.NewStore()
	link := newLinkUseCase(store)

	user, err := link.Execute(context.Background(), LinkProviderCommand{
		Protocol:    entities.ProtocolOAuth2,
		Provider:    "github",
		Identifier:  "gh-1001",
		Profile:     entities.Profile{Username: "octo", Email: "octo@example.com"},
		AccessToken: "tok-1",
	})
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if user.Username != "octo" || user.Email != "octo@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
	if len(store.Events) != 1 {
		t.Fatalf("expected registration event, got %d", len(store.Events))
	}

	// Same provider identity again must resolve to the same user.
	again, err := link.Execute(context.Background(), LinkProviderCommand{
		Protocol:   entities.ProtocolOAuth2,
		Provider:   "github",
		Identifier: "gh-1001",
		Profile:    entities.Profile{Username: "octo"},
	})
	if err != nil {
		t.Fatalf("second link failed: %v", err)
	}
	if again.UserID != user.UserID {
		t.Fatalf("provider login created a second user %s", again.UserID)
	}
	if len(store.Events) != 1 {
		t.Fatalf("re-login must not publish another registration event, got %d", len(store.Events))
	}
}

func TestLinkProviderAttachesToCaller(t *testing.T) {
	store := memory.NewStore()
	link := newLinkUseCase(store)

	owner, err := store.Create(context.Background(), entities.User{
		UserID:   "user-1",
		Username: "owner",
		Email:    "owner@example.com",
	})
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	linked, err := link.Execute(context.Background(), LinkProviderCommand{
		CallerID:   owner.UserID,
		Protocol:   entities.ProtocolOAuth2,
		Provider:   "google",
		Identifier: "goog-7",
		Profile:    entities.Profile{Username: "owner"},
	})
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if linked.UserID != owner.UserID {
		t.Fatalf("passport attached to wrong user %s", linked.UserID)
	}

	passport, err := store.FindByProviderIdentifier(context.Background(), "google", "goog-7")
	if err != nil {
		t.Fatalf("passport lookup failed: %v", err)
	}
	if passport.UserID != owner.UserID {
		t.Fatalf("passport owner %s, want %s", passport.UserID, owner.UserID)
	}

	// Re-linking the same identity while signed in is a no-op.
	relinked, err := link.Execute(context.Background(), LinkProviderCommand{
		CallerID:   owner.UserID,
		Protocol:   entities.ProtocolOAuth2,
		Provider:   "google",
		Identifier: "goog-7",
		Profile:    entities.Profile{Username: "owner"},
	})
	if err != nil {
		t.Fatalf("re-link failed: %v", err)
	}
	if relinked.UserID != owner.UserID {
		t.Fatalf("re-link resolved wrong user %s", relinked.UserID)
	}
}

func TestLinkProviderRefreshesTokens(t *testing.T) {
	store := memory.NewStore()
	link := newLinkUseCase(store)

	if _, err := link.Execute(context.Background(), LinkProviderCommand{
		Protocol:    entities.ProtocolOAuth2,
		Provider:    "twitter",
		Identifier:  "tw-3",
		Profile:     entities.Profile{Username: "bird"},
		AccessToken: "stale",
	}); err != nil {
		t.Fatalf("initial link failed: %v", err)
	}

	if _, err := link.Execute(context.Background(), LinkProviderCommand{
		Protocol:    entities.ProtocolOAuth2,
		Provider:    "twitter",
		Identifier:  "tw-3",
		Profile:     entities.Profile{Username: "bird"},
		AccessToken: "fresh",
	}); err != nil {
		t.Fatalf("re-login failed: %v", err)
	}

	passport, err := store.FindByProviderIdentifier(context.Background(), "twitter", "tw-3")
	if err != nil {
		t.Fatalf("passport lookup failed: %v", err)
	}
	if passport.AccessToken != "fresh" {
		t.Fatalf("access token not refreshed, got %q", passport.AccessToken)
	}
}

func TestLinkProviderRejectsUnusableInput(t *testing.T) {
	store := memory.NewStore()
	link := newLinkUseCase(store)

	_, err := link.Execute(context.Background(), LinkProviderCommand{
		Protocol: entities.ProtocolOAuth2,
		Provider: "github",
		Profile:  entities.Profile{Username: "octo"},
	})
	if !errors.Is(err, domainerrors.ErrMissingProviderID) {
		t.Fatalf("got %v, want ErrMissingProviderID", err)
	}

	_, err = link.Execute(context.Background(), LinkProviderCommand{
		Protocol:   entities.ProtocolOAuth2,
		Provider:   "github",
		Identifier: "gh-2",
	})
	if !errors.Is(err, domainerrors.ErrProfileUnusable) {
		t.Fatalf("got %v, want ErrProfileUnusable", err)
	}
}
