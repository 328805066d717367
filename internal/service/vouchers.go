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

// ApplyVoucher applies an owned voucher to the cart. A voucher whose minimum
// spend is not met is rejected and the applied voucher stays as it was.
func (s *Store) ApplyVoucher(ctx context.Context, voucherID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return err
	}

	st := s.Snapshot()
	v, ok := findVoucher(st.Vouchers, voucherID)
	if !ok {
		return model.ErrVoucherNotFound
	}
	if !u.OwnsVoucher(v.ID) {
		return model.ErrVoucherNotOwned
	}
	if err := pricing.CheckVoucher(pricing.Subtotal(st.Cart), &v); err != nil {
		return err
	}

	s.swap(func(next *State) { next.AppliedVoucherID = v.ID })
	s.logger.Debug().Str("user_id", u.ID).Str("voucher_id", v.ID).Msg("voucher applied")
	return nil
}

// RemoveVoucher clears the applied voucher.
func (s *Store) RemoveVoucher() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.swap(func(next *State) { next.AppliedVoucherID = "" })
}

// AppliedVoucher returns the voucher applied to the cart, or nil.
func (s *Store) AppliedVoucher() *model.Voucher {
	st := s.Snapshot()
	if v, ok := findVoucher(st.Vouchers, st.AppliedVoucherID); ok {
		return &v
	}
	return nil
}

// RedeemVoucher exchanges the signed-in user's points for a voucher.
func (s *Store) RedeemVoucher(ctx context.Context, voucherID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return err
	}

	v, ok := findVoucher(s.Snapshot().Vouchers, voucherID)
	if !ok {
		return model.ErrVoucherNotFound
	}

	redeemed, err := voucher.Redeem(u, v)
	if err != nil {
		s.logger.Debug().Err(err).Str("user_id", u.ID).Str("voucher_id", v.ID).Msg("voucher redemption rejected")
		return err
	}

	fields := map[string]any{
		"points":   redeemed.Points,
		"vouchers": redeemed.Vouchers,
	}
	if _, err := s.data.Patch(ctx, dataservice.Users, u.ID, fields); err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to redeem voucher")
		return fmt.Errorf("failed to redeem voucher: %w", err)
	}

	s.logger.Info().
		Str("user_id", u.ID).
		Str("voucher_id", v.ID).
		Int64("points_spent", v.PointCost).
		Msg("voucher redeemed")

	s.emit(ctx, events.VoucherRedeemed, map[string]any{
		"userId":      u.ID,
		"voucherId":   v.ID,
		"pointsSpent": v.PointCost,
	})

	return s.refresh(ctx)
}

// AddVoucher creates a voucher. Codes are unique ignoring case.
func (s *Store) AddVoucher(ctx context.Context, in VoucherInput) (*model.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.currentAdmin(); err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	code := voucher.NormalizeCode(in.Code)
	if s.codeTaken(code, "") {
		return nil, model.ErrVoucherCodeTaken
	}

	created, err := dataservice.CreateAs[model.Voucher](ctx, s.data, dataservice.Vouchers, model.Voucher{
		Code:        code,
		Discount:    in.Discount,
		MinSpend:    in.MinSpend,
		PointCost:   in.PointCost,
		Description: in.Description,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to create voucher")
		return nil, fmt.Errorf("failed to create voucher: %w", err)
	}

	if err := s.refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// UpdateVoucher patches a voucher.
func (s *Store) UpdateVoucher(ctx context.Context, voucherID string, in VoucherPatch) (*model.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.currentAdmin(); err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	if _, ok := findVoucher(s.Snapshot().Vouchers, voucherID); !ok {
		return nil, model.ErrVoucherNotFound
	}

	fields := make(map[string]any)
	if in.Code != nil {
		code := voucher.NormalizeCode(*in.Code)
		if s.codeTaken(code, voucherID) {
			return nil, model.ErrVoucherCodeTaken
		}
		fields["code"] = code
	}
	if in.Discount != nil {
		fields["discount"] = *in.Discount
	}
	if in.MinSpend != nil {
		fields["minSpend"] = *in.MinSpend
	}
	if in.PointCost != nil {
		fields["pointCost"] = *in.PointCost
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}

	updated, err := dataservice.PatchAs[model.Voucher](ctx, s.data, dataservice.Vouchers, voucherID, fields)
	if err != nil {
		s.logger.Error().Err(err).Str("voucher_id", voucherID).Msg("failed to update voucher")
		return nil, fmt.Errorf("failed to update voucher: %w", notFound(err, model.ErrVoucherNotFound))
	}

	if err := s.refresh(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// DeleteVoucher deletes a voucher and then removes it from every user
// holding it, one user at a time. A failed user update does not stop the
// cascade; all failures are returned together.
func (s *Store) DeleteVoucher(ctx context.Context, voucherID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.currentAdmin(); err != nil {
		return err
	}

	if err := s.data.Delete(ctx, dataservice.Vouchers, voucherID); err != nil {
		s.logger.Error().Err(err).Str("voucher_id", voucherID).Msg("failed to delete voucher")
		return fmt.Errorf("failed to delete voucher: %w", notFound(err, model.ErrVoucherNotFound))
	}

	users, err := dataservice.ListAs[model.User](ctx, s.data, dataservice.Users, nil)
	if err != nil {
		s.logger.Error().Err(err).Str("voucher_id", voucherID).Msg("failed to list voucher owners")
		return fmt.Errorf("failed to list voucher owners: %w", err)
	}

	var errs []error
	purged := 0
	for _, u := range users {
		remaining, removed := voucher.Without(u.Vouchers, voucherID)
		if !removed {
			continue
		}
		if _, err := s.data.Patch(ctx, dataservice.Users, u.ID, map[string]any{"vouchers": remaining}); err != nil {
			s.logger.Error().
				Err(err).
				Str("voucher_id", voucherID).
				Str("user_id", u.ID).
				Msg("failed to remove deleted voucher from user")
			errs = append(errs, fmt.Errorf("user %s: %w", u.ID, err))
			continue
		}
		purged++
	}

	if s.Snapshot().AppliedVoucherID == voucherID {
		s.swap(func(next *State) { next.AppliedVoucherID = "" })
	}

	s.logger.Info().
		Str("voucher_id", voucherID).
		Int("users_updated", purged).
		Int("users_failed", len(errs)).
		Msg("voucher deleted")

	if len(errs) > 0 {
		errs = []error{fmt.Errorf("failed to remove voucher %s from %d users: %w", voucherID, len(errs), errors.Join(errs...))}
	}
	if err := s.refresh(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// codeTaken reports whether another voucher already uses code.
func (s *Store) codeTaken(code, exceptID string) bool {
	for _, v := range s.Snapshot().Vouchers {
		if v.ID != exceptID && voucher.NormalizeCode(v.Code) == code {
			return true
		}
	}
	return false
}
