package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/dataservice"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/voucher"
)

// Checkout turns the signed-in user's cart into a pending order.
//
// The order is created first. Only then are the cart rows deleted, stock
// decremented and the used voucher taken from the user; those follow-up
// writes are best-effort and a failure is logged, not returned.
func (s *Store) Checkout(ctx context.Context, in CheckoutInput) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	st := s.Snapshot()
	if len(st.Cart) == 0 {
		return nil, model.ErrEmptyCart
	}
	for _, item := range st.Cart {
		if item.Quantity > item.Product.Stock {
			s.logger.Warn().
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Int("stock", item.Product.Stock).
				Msg("checkout exceeds stock")
			return nil, model.ErrInsufficientStock
		}
	}

	var applied *model.Voucher
	if st.AppliedVoucherID != "" {
		v, ok := findVoucher(st.Vouchers, st.AppliedVoucherID)
		if !ok {
			return nil, model.ErrVoucherNotFound
		}
		if err := pricing.CheckVoucher(pricing.Subtotal(st.Cart), &v); err != nil {
			return nil, err
		}
		applied = &v
	}

	summary := s.calc.Calculate(st.Cart, applied)

	items := make([]model.OrderItem, len(st.Cart))
	for i, item := range st.Cart {
		items[i] = model.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			Price:     item.PriceUsed,
		}
	}

	order := model.Order{
		UserID:          u.ID,
		Items:           items,
		Subtotal:        summary.Subtotal,
		ShippingFee:     summary.ShippingFee,
		Total:           summary.Total,
		Status:          model.OrderPending,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		VoucherDiscount: summary.VoucherDiscount,
		PointsEarned:    summary.PointsEarned,
		CreatedAt:       s.now().UTC(),
	}
	if applied != nil {
		order.VoucherID = &applied.ID
	}

	created, err := dataservice.CreateAs[model.Order](ctx, s.data, dataservice.Orders, order)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range st.Cart {
		if err := s.data.Delete(ctx, dataservice.Carts, item.RowID); err != nil {
			s.logger.Error().Err(err).Str("order_id", created.ID).Str("row_id", item.RowID).Msg("failed to clear cart row after checkout")
		}
		stock := max(item.Product.Stock-item.Quantity, 0)
		if _, err := s.data.Patch(ctx, dataservice.Products, item.ProductID, map[string]any{"stock": stock}); err != nil {
			s.logger.Error().Err(err).Str("order_id", created.ID).Str("product_id", item.ProductID).Msg("failed to decrement stock")
		}
	}

	if applied != nil {
		remaining, _ := voucher.Without(u.Vouchers, applied.ID)
		if _, err := s.data.Patch(ctx, dataservice.Users, u.ID, map[string]any{"vouchers": remaining}); err != nil {
			s.logger.Error().Err(err).Str("order_id", created.ID).Str("voucher_id", applied.ID).Msg("failed to consume voucher")
		}
	}

	s.swap(func(next *State) { next.AppliedVoucherID = "" })

	s.logger.Info().
		Str("order_id", created.ID).
		Str("user_id", u.ID).
		Int("item_count", len(items)).
		Int64("total", created.Total).
		Msg("order placed")

	s.emit(ctx, events.OrderPlaced, map[string]any{
		"orderId": created.ID,
		"userId":  u.ID,
		"total":   created.Total,
	})

	if err := s.refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Completing an order
// credits the buyer's points and the products' sold counts; cancelling it
// returns the items to stock.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.currentAdmin(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("unknown order status %q", status))
	}

	o, ok := findOrder(s.Snapshot().Orders, orderID)
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return s.transition(ctx, o, status)
}

// CancelOrder lets the signed-in user cancel one of their pending orders.
func (s *Store) CancelOrder(ctx context.Context, orderID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}

	o, ok := findOrder(s.Snapshot().Orders, orderID)
	if !ok || o.UserID != u.ID {
		return nil, model.ErrOrderNotFound
	}
	if o.Status != model.OrderPending {
		return nil, model.ErrInvalidOrderTransition
	}
	return s.transition(ctx, o, model.OrderCancelled)
}

// transition writes the new status and its side effects. Callers hold s.mu.
func (s *Store) transition(ctx context.Context, o model.Order, status model.OrderStatus) (*model.Order, error) {
	if !o.Status.CanTransitionTo(status) {
		return nil, model.ErrInvalidOrderTransition
	}

	updated, err := dataservice.PatchAs[model.Order](ctx, s.data, dataservice.Orders, o.ID, map[string]any{"status": status})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", o.ID).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order: %w", notFound(err, model.ErrOrderNotFound))
	}

	var errs []error
	switch status {
	case model.OrderCompleted:
		errs = s.completeOrder(ctx, o)
	case model.OrderCancelled:
		errs = s.restock(ctx, o)
	}

	s.logger.Info().
		Str("order_id", o.ID).
		Str("from", string(o.Status)).
		Str("to", string(status)).
		Msg("order status changed")

	s.emit(ctx, events.OrderStatusChanged, map[string]any{
		"orderId": o.ID,
		"userId":  o.UserID,
		"from":    o.Status,
		"to":      status,
	})

	if err := s.refresh(ctx); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return updated, errors.Join(errs...)
	}
	return updated, nil
}

// completeOrder credits points to the buyer and adds the quantities to sold.
func (s *Store) completeOrder(ctx context.Context, o model.Order) []error {
	var errs []error

	buyer, err := dataservice.GetAs[model.User](ctx, s.data, dataservice.Users, o.UserID)
	if err == nil {
		_, err = s.data.Patch(ctx, dataservice.Users, buyer.ID, map[string]any{"points": buyer.Points + o.PointsEarned})
	}
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", o.ID).Str("user_id", o.UserID).Msg("failed to credit points")
		errs = append(errs, fmt.Errorf("failed to credit points for order %s: %w", o.ID, err))
	}

	products := s.Snapshot().Products
	for _, item := range o.Items {
		p, ok := findProduct(products, item.ProductID)
		if !ok {
			continue
		}
		if _, err := s.data.Patch(ctx, dataservice.Products, p.ID, map[string]any{"sold": p.Sold + item.Quantity}); err != nil {
			s.logger.Error().Err(err).Str("order_id", o.ID).Str("product_id", p.ID).Msg("failed to record sale")
			errs = append(errs, fmt.Errorf("failed to record sale of %s: %w", p.ID, err))
		}
	}
	return errs
}

// restock returns a cancelled order's quantities to stock.
func (s *Store) restock(ctx context.Context, o model.Order) []error {
	var errs []error
	products := s.Snapshot().Products
	for _, item := range o.Items {
		p, ok := findProduct(products, item.ProductID)
		if !ok {
			continue
		}
		if _, err := s.data.Patch(ctx, dataservice.Products, p.ID, map[string]any{"stock": p.Stock + item.Quantity}); err != nil {
			s.logger.Error().Err(err).Str("order_id", o.ID).Str("product_id", p.ID).Msg("failed to restock")
			errs = append(errs, fmt.Errorf("failed to restock %s: %w", p.ID, err))
		}
	}
	return errs
}

// MyOrders returns the signed-in user's orders.
func (s *Store) MyOrders() []model.Order {
	st := s.Snapshot()
	if st.User == nil {
		return nil
	}
	var out []model.Order
	for _, o := range st.Orders {
		if o.UserID == st.User.ID {
			out = append(out, o)
		}
	}
	return out
}
