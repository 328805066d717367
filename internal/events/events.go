// Package events publishes storefront domain events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event types.
const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
	OfferMade          = "offer.made"
	OfferResolved      = "offer.resolved"
	VoucherRedeemed    = "voucher.redeemed"
)

// Event is the envelope written to the broker.
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

// New builds an event stamped with at.
func New(eventType string, at time.Time, data any) Event {
	return Event{Type: eventType, At: at.UTC(), Data: data}
}

// Encode returns the JSON body of the event.
func (e Event) Encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", e.Type, err)
	}
	return body, nil
}

// Publisher delivers events. Publishing is fire-and-forget from the caller's
// point of view: callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

func (nopPublisher) Close() error { return nil }
