// Package events publishes domain change notifications to a message broker.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Routing keys of published events.
const (
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
	BudgetUpserted     = "budget.upserted"
	BudgetDeleted      = "budget.deleted"
)

// Event is the JSON body of a published message.
type Event struct {
	Type       string         `json:"type"`
	SpaceSlug  string         `json:"space_slug"`
	ResourceID string         `json:"resource_id"`
	ActorID    string         `json:"actor_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// New builds an event stamped with the current time.
func New(eventType, slug, resourceID, actorID string, data map[string]any) Event {
	return Event{
		Type:       eventType,
		SpaceSlug:  slug,
		ResourceID: resourceID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// ToJSON encodes the event.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
