// Package events publishes settlement lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types. The type doubles as the AMQP routing key.
const (
	SettlementSaved     = "settlement.saved"
	SettlementFinalized = "settlement.finalized"
	SettlementReopened  = "settlement.reopened"
	PaymentRecorded     = "payment.recorded"
	PaymentDeleted      = "payment.deleted"
)

// Event is one settlement lifecycle change.
type Event struct {
	Type        string `json:"type"`
	HouseholdID string `json:"household_id"`
	Month       string `json:"month,omitempty"`
	ActorUserID string `json:"actor_user_id"`
	OccurredAt  int64  `json:"occurred_at"`

	// Data carries the event-specific body.
	Data any `json:"data,omitempty"`
}

// New builds an event stamped with the current time.
func New(eventType, householdID, month, actorUserID string, data any) Event {
	return Event{
		Type:        eventType,
		HouseholdID: householdID,
		Month:       month,
		ActorUserID: actorUserID,
		OccurredAt:  time.Now().Unix(),
		Data:        data,
	}
}

func (e Event) marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher sends events. Publishing is best effort: callers log failures and
// carry on, since the database is the source of truth.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
