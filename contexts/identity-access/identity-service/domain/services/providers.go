package services

import (
	"strings"

	"keystone/contexts/identity-access/identity-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
)

// Provider describes how one third-party integration maps its profile shape
// onto a local identity. Providers are registered from static configuration
// at startup, never discovered dynamically.
type Provider struct {
	Name     string
	Protocol string
	// UsernameKeys are probed in order against the raw profile.
	UsernameKeys []string
	// RequireEmail rejects profiles without a derivable email. Policy
	// varies per integration: some providers never expose one.
	RequireEmail bool
}

// ProviderRegistry resolves provider names to their normalization rules.
type ProviderRegistry struct {
	providers map[string]Provider
}

func NewProviderRegistry(providers ...Provider) *ProviderRegistry {
	registry := &ProviderRegistry{providers: make(map[string]Provider)}
	for _, provider := range providers {
		registry.providers[strings.ToLower(provider.Name)] = provider
	}
	return registry
}

// DefaultProviders covers the integrations shipped with the backend.
func DefaultProviders() []Provider {
	return []Provider{
		{Name: "github", Protocol: entities.ProtocolOAuth2, UsernameKeys: []string{"login", "name"}, RequireEmail: true},
		{Name: "google", Protocol: entities.ProtocolOAuth2, UsernameKeys: []string{"displayName", "name"}, RequireEmail: true},
		{Name: "facebook", Protocol: entities.ProtocolOAuth2, UsernameKeys: []string{"name", "username"}, RequireEmail: true},
		{Name: "twitter", Protocol: entities.ProtocolOAuth, UsernameKeys: []string{"screen_name", "username"}},
	}
}

func (r *ProviderRegistry) Lookup(name string) (Provider, bool) {
	provider, ok := r.providers[strings.ToLower(name)]
	return provider, ok
}

// Normalize maps a provider-shaped raw profile to the canonical local
// profile. The profile is unusable when neither a username nor an email
// can be derived.
func (r *ProviderRegistry) Normalize(providerName string, raw map[string]any) (entities.Profile, error) {
	provider, ok := r.Lookup(providerName)
	if !ok {
		return entities.Profile{}, domainerrors.ErrProviderUnknown
	}

	profile := entities.Profile{
		Username: firstString(raw, append(provider.UsernameKeys, "username")...),
		Email:    profileEmail(raw),
	}

	if profile.Username == "" && profile.Email == "" {
		return entities.Profile{}, domainerrors.ErrProfileUnusable
	}
	if provider.RequireEmail && profile.Email == "" {
		return entities.Profile{}, domainerrors.ErrEmailRequired
	}
	return profile, nil
}

// profileEmail handles both the flat `email` field and the OpenID-style
// `emails: [{value: ...}]` list.
func profileEmail(raw map[string]any) string {
	if email := firstString(raw, "email"); email != "" {
		return email
	}
	emails, ok := raw["emails"].([]any)
	if !ok || len(emails) == 0 {
		return ""
	}
	entry, ok := emails[0].(map[string]any)
	if !ok {
		return ""
	}
	value, _ := entry["value"].(string)
	return strings.TrimSpace(value)
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := raw[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
