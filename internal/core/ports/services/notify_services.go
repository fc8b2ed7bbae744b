package services

import "github.com/vzlabs/expense_tracker_app/internal/core/domain"

// EventPublisher is the outbound side of the notification bus. The expense
// service depends on this abstraction, not on a concrete transport.
// Publication is best-effort: it must never block and never fail the
// operation that triggered it.
type EventPublisher interface {
	Publish(channel string, event domain.Event)
}

// NoopPublisher discards every event. Useful for tools and tests that do not
// care about notifications.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, domain.Event) {}
