package model

import "time"

// OfferStatus is the negotiation state of an offer.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferCountered OfferStatus = "countered"
)

// Offer is a buyer-proposed price for a product.
type Offer struct {
	ID           string      `json:"id,omitempty"`
	ProductID    string      `json:"productId"`
	UserID       string      `json:"userId"`
	OfferPrice   int64       `json:"offerPrice"`
	Message      string      `json:"message,omitempty"`
	Status       OfferStatus `json:"status"`
	CounterPrice *int64      `json:"counterPrice,omitempty"`
	AcceptedAt   *time.Time  `json:"acceptedAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}
