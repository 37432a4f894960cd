package negotiation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garimpo/backend/pkg/events"
)

// EventType represents the type of domain event
type EventType string

const (
	EventTypeOfferSubmitted       EventType = "offer.submitted"
	EventTypeOfferCanceled        EventType = "offer.canceled"
	EventTypeItemExpired          EventType = "item.expired"
	EventTypeNegotiationPending   EventType = "negotiation.pending"
	EventTypeNegotiationFinalized EventType = "negotiation.finalized"
	EventTypeNegotiationDeclined  EventType = "negotiation.declined"
)

// String returns the string representation of the event type
func (e EventType) String() string {
	return string(e)
}

// IsValid checks if the event type is valid
func (e EventType) IsValid() bool {
	switch e {
	case EventTypeOfferSubmitted, EventTypeOfferCanceled, EventTypeItemExpired,
		EventTypeNegotiationPending, EventTypeNegotiationFinalized, EventTypeNegotiationDeclined:
		return true
	default:
		return false
	}
}

// NegotiationEvent is the JSON payload carried by every outbox event
// produced by the engine. Fields not relevant to a given event type are
// left zero.
type NegotiationEvent struct {
	ItemID    uuid.UUID `json:"item_id"`
	OfferID   uuid.UUID `json:"offer_id,omitempty"`
	BidderID  uuid.UUID `json:"bidder_id,omitempty"`
	OwnerID   uuid.UUID `json:"owner_id,omitempty"`
	Price     int64     `json:"price,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// newOutboxEvent marshals the payload and wraps it into a pending outbox
// record ready to be saved in the same transaction as the state change.
func newOutboxEvent(eventType EventType, payload NegotiationEvent) (*events.OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &events.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType.String(),
		Payload:   body,
		Status:    events.OutboxStatusPending,
		CreatedAt: time.Now(),
	}, nil
}
