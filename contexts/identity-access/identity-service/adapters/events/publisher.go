package events

import (
	"context"
	"log/slog"

	"keystone/contexts/identity-access/identity-service/ports"
	"keystone/internal/platform/messaging"
	"keystone/internal/shared/events"
)

const TopicUserRegistered = "identity.user.registered"

// Publisher bridges identity events onto the shared in-process bus.
type Publisher struct {
	bus    *messaging.Bus
	logger *slog.Logger
}

func NewPublisher(bus *messaging.Bus, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{bus: bus, logger: logger}
}

func (p *Publisher) PublishUserRegistered(ctx context.Context, event ports.UserRegisteredEvent) error {
	envelope := events.Envelope{
		EventID:       event.EventID,
		EventType:     "identity.user.registered",
		SourceService: "identity-access/identity-service",
		OccurredAtUTC: event.OccurredAt.UTC(),
		EntityType:    "user",
		EntityID:      event.UserID,
		Payload: map[string]string{
			"user_id":  event.UserID,
			"username": event.Username,
			"email":    event.Email,
			"provider": event.Provider,
		},
	}
	if err := p.bus.Publish(ctx, TopicUserRegistered, envelope); err != nil {
		return err
	}

	p.logger.Info("user registered event published",
		"event", "identity_user_registered_published",
		"module", "identity-access/identity-service",
		"layer", "adapter",
		"event_id", event.EventID,
		"user_id", event.UserID,
		"provider", event.Provider,
	)
	return nil
}
