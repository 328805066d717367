package service

import (
	"context"
	"fmt"
	"slices"

	"storefront/internal/dataservice"
	"storefront/internal/model"
)

// ToggleWishlist adds the product to the signed-in user's wishlist, or removes
// it when already there. It reports whether the product is now wishlisted.
// The user document is re-read and replaced as a whole.
func (s *Store) ToggleWishlist(ctx context.Context, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return false, err
	}
	if _, ok := findProduct(s.Snapshot().Products, productID); !ok {
		return false, model.ErrProductNotFound
	}

	fresh, err := dataservice.GetAs[model.User](ctx, s.data, dataservice.Users, u.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to load user for wishlist")
		return false, fmt.Errorf("failed to load wishlist: %w", notFound(err, model.ErrUserNotFound))
	}

	added := !slices.Contains(fresh.Wishlist, productID)
	if added {
		fresh.Wishlist = append(slices.Clone(fresh.Wishlist), productID)
	} else {
		fresh.Wishlist = slices.DeleteFunc(slices.Clone(fresh.Wishlist), func(id string) bool { return id == productID })
	}

	if _, err := s.data.Replace(ctx, dataservice.Users, fresh.ID, fresh); err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to save wishlist")
		return false, fmt.Errorf("failed to save wishlist: %w", err)
	}

	s.logger.Debug().Str("user_id", u.ID).Str("product_id", productID).Bool("added", added).Msg("wishlist toggled")

	if err := s.refresh(ctx); err != nil {
		return added, err
	}
	return added, nil
}
