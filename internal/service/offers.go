package service

import (
	"context"
	"fmt"

	"storefront/internal/dataservice"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/offer"
)

// MakeOffer proposes a price for a product on behalf of the signed-in user.
// With automatic resolution enabled, the product's thresholds may accept or
// reject the offer immediately.
func (s *Store) MakeOffer(ctx context.Context, productID string, price int64, message string) (*model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if err := s.validate.Var(message, "max=500"); err != nil {
		return nil, model.NewValidationError("field 'message' failed on the 'max' tag")
	}

	p, ok := findProduct(s.Snapshot().Products, productID)
	if !ok {
		return nil, model.ErrProductNotFound
	}
	if err := offer.ValidatePrice(p, price); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := model.Offer{
		ProductID:  p.ID,
		UserID:     u.ID,
		OfferPrice: price,
		Message:    message,
		Status:     model.OfferPending,
		CreatedAt:  now,
	}

	autoResolved := false
	if s.autoResolve {
		if d, ok := offer.Evaluate(p, price); ok {
			if o, err = offer.Resolve(o, d, 0, now); err != nil {
				return nil, err
			}
			autoResolved = true
		}
	}

	created, err := dataservice.CreateAs[model.Offer](ctx, s.data, dataservice.Offers, o)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to create offer")
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	s.logger.Info().
		Str("offer_id", created.ID).
		Str("product_id", p.ID).
		Int64("offer_price", price).
		Str("status", string(created.Status)).
		Msg("offer made")

	s.emit(ctx, events.OfferMade, map[string]any{
		"offerId":    created.ID,
		"productId":  created.ProductID,
		"userId":     created.UserID,
		"offerPrice": created.OfferPrice,
	})
	if autoResolved {
		s.emitOfferResolved(ctx, *created)
	}

	if err := s.refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// ResolveOffer records the seller's decision on a pending offer.
// counterPrice is only used when countering.
func (s *Store) ResolveOffer(ctx context.Context, offerID string, decision offer.Decision, counterPrice int64) (*model.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.currentAdmin(); err != nil {
		return nil, err
	}
	if !decision.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("unknown offer decision %q", decision))
	}

	o, ok := findOffer(s.Snapshot().Offers, offerID)
	if !ok {
		return nil, model.ErrOfferNotFound
	}

	resolved, err := offer.Resolve(o, decision, counterPrice, s.now())
	if err != nil {
		return nil, err
	}

	updated, err := dataservice.ReplaceAs[model.Offer](ctx, s.data, dataservice.Offers, o.ID, resolved)
	if err != nil {
		s.logger.Error().Err(err).Str("offer_id", o.ID).Msg("failed to resolve offer")
		return nil, fmt.Errorf("failed to resolve offer: %w", notFound(err, model.ErrOfferNotFound))
	}

	s.logger.Info().Str("offer_id", o.ID).Str("status", string(updated.Status)).Msg("offer resolved")
	s.emitOfferResolved(ctx, *updated)

	if err := s.refresh(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

func (s *Store) emitOfferResolved(ctx context.Context, o model.Offer) {
	s.emit(ctx, events.OfferResolved, map[string]any{
		"offerId":   o.ID,
		"productId": o.ProductID,
		"userId":    o.UserID,
		"status":    o.Status,
	})
}

// EffectivePrice is what the signed-in user would pay per unit of a product
// right now. Anonymous visitors always see the listed price.
func (s *Store) EffectivePrice(productID string) (int64, error) {
	st := s.Snapshot()
	p, ok := findProduct(st.Products, productID)
	if !ok {
		return 0, model.ErrProductNotFound
	}
	var userID string
	if st.User != nil {
		userID = st.User.ID
	}
	return s.pricer.EffectivePrice(p, userID, st.Offers, s.now()), nil
}

// MyOffers returns the signed-in user's offers.
func (s *Store) MyOffers() []model.Offer {
	st := s.Snapshot()
	if st.User == nil {
		return nil
	}
	var out []model.Offer
	for _, o := range st.Offers {
		if o.UserID == st.User.ID {
			out = append(out, o)
		}
	}
	return out
}
