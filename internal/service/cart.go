package service

import (
	"context"
	"fmt"

	"storefront/internal/dataservice"
	"storefront/internal/model"
	"storefront/internal/pricing"
)

// AddToCart adds qty of a product to the signed-in user's cart. The line is
// priced at the user's effective price right now, so adding to an existing
// line after an offer has expired moves it back to the listed price.
func (s *Store) AddToCart(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return err
	}
	if qty < 1 {
		return model.ErrInvalidQuantity
	}

	st := s.Snapshot()
	p, ok := findProduct(st.Products, productID)
	if !ok {
		return model.ErrProductNotFound
	}

	rows, err := s.cartRows(ctx, u.ID, productID)
	if err != nil {
		return err
	}

	price := s.pricer.EffectivePrice(p, u.ID, st.Offers, s.now())

	if len(rows) > 0 {
		row := rows[0]
		quantity := row.Quantity + qty
		if quantity > p.Stock {
			return model.ErrInsufficientStock
		}
		patch := map[string]any{"quantity": quantity, "priceUsed": price}
		if _, err := s.data.Patch(ctx, dataservice.Carts, row.ID, patch); err != nil {
			s.logger.Error().Err(err).Str("row_id", row.ID).Msg("failed to update cart row")
			return fmt.Errorf("failed to update cart: %w", err)
		}
	} else {
		if qty > p.Stock {
			return model.ErrInsufficientStock
		}
		row := model.CartRow{
			UserID:    u.ID,
			ProductID: productID,
			Quantity:  qty,
			PriceUsed: price,
		}
		if _, err := s.data.Create(ctx, dataservice.Carts, row); err != nil {
			s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to create cart row")
			return fmt.Errorf("failed to add to cart: %w", err)
		}
	}

	s.logger.Debug().Str("user_id", u.ID).Str("product_id", productID).Int("quantity", qty).Msg("added to cart")

	return s.refresh(ctx)
}

// UpdateCartQuantity sets the quantity of a product already in the cart.
func (s *Store) UpdateCartQuantity(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return err
	}
	if qty < 1 {
		return model.ErrInvalidQuantity
	}

	p, ok := findProduct(s.Snapshot().Products, productID)
	if !ok {
		return model.ErrProductNotFound
	}
	if qty > p.Stock {
		return model.ErrInsufficientStock
	}

	rows, err := s.cartRows(ctx, u.ID, productID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return model.ErrCartItemNotFound
	}

	for _, row := range rows {
		if _, err := s.data.Patch(ctx, dataservice.Carts, row.ID, map[string]any{"quantity": qty}); err != nil {
			s.logger.Error().Err(err).Str("row_id", row.ID).Msg("failed to update cart row")
			return fmt.Errorf("failed to update cart: %w", err)
		}
	}

	return s.refresh(ctx)
}

// RemoveFromCart deletes a product's line from the cart.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return err
	}

	rows, err := s.cartRows(ctx, u.ID, productID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return model.ErrCartItemNotFound
	}

	if err := s.deleteCartRows(ctx, rows); err != nil {
		return err
	}
	return s.refresh(ctx)
}

// ClearCart deletes every line of the signed-in user's cart.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return err
	}

	rows, err := s.cartRows(ctx, u.ID, "")
	if err != nil {
		return err
	}
	if err := s.deleteCartRows(ctx, rows); err != nil {
		return err
	}
	return s.refresh(ctx)
}

// Cart returns the signed-in user's cart lines.
func (s *Store) Cart() []model.CartItem {
	return s.Snapshot().Cart
}

// Summary prices the current cart with the applied voucher.
func (s *Store) Summary() pricing.Summary {
	return s.CartView().Summary
}

// CartView is the cart lines, their pricing and the applied voucher, all
// read from the same state.
type CartView struct {
	Items          []model.CartItem
	Summary        pricing.Summary
	AppliedVoucher *model.Voucher
}

// CartView prices the signed-in user's cart from a single snapshot.
func (s *Store) CartView() CartView {
	st := s.Snapshot()
	view := CartView{Items: st.Cart}
	if v, ok := findVoucher(st.Vouchers, st.AppliedVoucherID); ok {
		view.AppliedVoucher = &v
	}
	view.Summary = s.calc.Calculate(st.Cart, view.AppliedVoucher)
	return view
}

// cartRows lists the user's persisted cart rows, optionally for one product.
func (s *Store) cartRows(ctx context.Context, userID, productID string) ([]model.CartRow, error) {
	filter := dataservice.Filter{"userId": userID}
	if productID != "" {
		filter["productId"] = productID
	}
	rows, err := dataservice.ListAs[model.CartRow](ctx, s.data, dataservice.Carts, filter)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list cart rows")
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return rows, nil
}

func (s *Store) deleteCartRows(ctx context.Context, rows []model.CartRow) error {
	for _, row := range rows {
		if err := s.data.Delete(ctx, dataservice.Carts, row.ID); err != nil {
			s.logger.Error().Err(err).Str("row_id", row.ID).Msg("failed to delete cart row")
			return fmt.Errorf("failed to remove from cart: %w", err)
		}
	}
	return nil
}
