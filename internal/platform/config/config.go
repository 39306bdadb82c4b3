package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// TokenSecret is the JWT signing secret. The JWT_SECRET environment
	// variable wins over this value inside the token service; a hard-coded
	// fallback exists there for development only.
	TokenSecret string
	// TokenTTL of zero issues non-expiring tokens.
	TokenTTL time.Duration

	BcryptCost  int
	FrontendURL string
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "keystone"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		TokenSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:    envDuration("JWT_TTL", 0),
		BcryptCost:  envInt("BCRYPT_COST", 10),
		FrontendURL: strings.TrimRight(os.Getenv("FRONTEND_URL"), "/"),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
