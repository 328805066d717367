// Package offer implements the buyer/seller price negotiation rules.
//
// An offer starts pending and is resolved once by the seller: accepted,
// rejected or countered. An accepted offer lowers the buyer's price for a
// limited window after acceptance. The window is evaluated against the
// supplied clock on every call and never cached.
package offer

import (
	"time"

	"storefront/internal/model"
)

// DefaultValidity is how long an accepted offer price is honoured.
const DefaultValidity = 24 * time.Hour

// Decision is the seller's resolution of a pending offer.
type Decision string

const (
	Accept  Decision = "accept"
	Reject  Decision = "reject"
	Counter Decision = "counter"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	switch d {
	case Accept, Reject, Counter:
		return true
	}
	return false
}

// ValidatePrice checks a proposed price against the product.
func ValidatePrice(p model.Product, price int64) error {
	if !p.AllowOffers {
		return model.ErrOffersNotAllowed
	}
	if price <= 0 || price >= p.Price {
		return model.ErrInvalidOfferPrice
	}
	return nil
}

// Resolve applies a seller decision to a pending offer and returns the updated copy.
// counterPrice is only read for Counter.
func Resolve(o model.Offer, d Decision, counterPrice int64, now time.Time) (model.Offer, error) {
	if o.Status != model.OfferPending {
		return o, model.ErrInvalidOfferTransition
	}

	switch d {
	case Accept:
		at := now.UTC()
		o.Status = model.OfferAccepted
		o.AcceptedAt = &at
	case Reject:
		o.Status = model.OfferRejected
	case Counter:
		if counterPrice <= 0 {
			return o, model.ErrInvalidOfferPrice
		}
		o.Status = model.OfferCountered
		o.CounterPrice = &counterPrice
	default:
		return o, model.ErrInvalidOfferTransition
	}
	return o, nil
}

// Evaluate applies the product's automatic thresholds to a proposed price.
// It returns false when neither threshold decides the offer.
func Evaluate(p model.Product, price int64) (Decision, bool) {
	if p.AutoAcceptPrice != nil && price >= *p.AutoAcceptPrice {
		return Accept, true
	}
	if p.AutoRejectPrice != nil && price <= *p.AutoRejectPrice {
		return Reject, true
	}
	return "", false
}

// Pricer evaluates effective prices with a fixed validity window.
type Pricer struct {
	validity time.Duration
}

// NewPricer creates a pricer. A non-positive validity uses DefaultValidity.
func NewPricer(validity time.Duration) *Pricer {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Pricer{validity: validity}
}

// IsLive reports whether an accepted offer's price is still honoured at now.
func (p *Pricer) IsLive(o model.Offer, now time.Time) bool {
	if o.Status != model.OfferAccepted || o.AcceptedAt == nil {
		return false
	}
	return now.Before(o.AcceptedAt.Add(p.validity))
}

// ExpiresAt returns when an accepted offer stops being honoured.
func (p *Pricer) ExpiresAt(o model.Offer) (time.Time, bool) {
	if o.Status != model.OfferAccepted || o.AcceptedAt == nil {
		return time.Time{}, false
	}
	return o.AcceptedAt.Add(p.validity), true
}

// LiveOffer returns the most recently accepted live offer of the user for the product.
func (p *Pricer) LiveOffer(productID, userID string, offers []model.Offer, now time.Time) (model.Offer, bool) {
	var best model.Offer
	found := false
	for _, o := range offers {
		if o.ProductID != productID || o.UserID != userID || !p.IsLive(o, now) {
			continue
		}
		if !found || o.AcceptedAt.After(*best.AcceptedAt) {
			best = o
			found = true
		}
	}
	return best, found
}

// EffectivePrice is the unit price the user pays for the product at now.
func (p *Pricer) EffectivePrice(product model.Product, userID string, offers []model.Offer, now time.Time) int64 {
	if userID == "" {
		return product.Price
	}
	if o, ok := p.LiveOffer(product.ID, userID, offers, now); ok {
		return o.OfferPrice
	}
	return product.Price
}
