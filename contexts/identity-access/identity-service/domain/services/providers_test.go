package services

import (
	"errors"
	"testing"

	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
)

func TestNormalizeGithubProfile(t *testing.T) {
	registry := NewProviderRegistry(DefaultProviders()...)
	profile, err := registry.Normalize("github", map[string]any{
		"login": "octocat",
		"email": "octocat@example.com",
	})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if profile.Username != "octocat" || profile.Email != "octocat@example.com" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestNormalizeNestedEmailList(t *testing.T) {
	registry := NewProviderRegistry(DefaultProviders()...)
	profile, err := registry.Normalize("google", map[string]any{
		"displayName": "Ada Lovelace",
		"emails":      []any{map[string]any{"value": "ada@example.com"}},
	})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if profile.Email != "ada@example.com" {
		t.Fatalf("nested email was not derived: %+v", profile)
	}
}

func TestNormalizeUnknownProvider(t *testing.T) {
	registry := NewProviderRegistry(DefaultProviders()...)
	if _, err := registry.Normalize("myspace", map[string]any{"email": "a@b.c"}); !errors.Is(err, domainerrors.ErrProviderUnknown) {
		t.Fatalf("expected unknown provider, got %v", err)
	}
}

func TestNormalizeUnusableProfile(t *testing.T) {
	registry := NewProviderRegistry(DefaultProviders()...)
	if _, err := registry.Normalize("twitter", map[string]any{"followers": "12"}); !errors.Is(err, domainerrors.ErrProfileUnusable) {
		t.Fatalf("expected unusable profile, got %v", err)
	}
}

func TestNormalizeEmailPolicyPerProvider(t *testing.T) {
	registry := NewProviderRegistry(DefaultProviders()...)

	// github requires an email, twitter never exposes one.
	if _, err := registry.Normalize("github", map[string]any{"login": "octocat"}); !errors.Is(err, domainerrors.ErrEmailRequired) {
		t.Fatalf("expected email required for github, got %v", err)
	}
	profile, err := registry.Normalize("twitter", map[string]any{"screen_name": "ada"})
	if err != nil {
		t.Fatalf("twitter profile without email should pass: %v", err)
	}
	if profile.Username != "ada" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}
