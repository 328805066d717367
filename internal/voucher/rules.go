package voucher

import (
	"storefront/internal/model"
)

// CheckRedeem reports whether the user may exchange points for the voucher.
func CheckRedeem(u model.User, v model.Voucher) error {
	if u.OwnsVoucher(v.ID) {
		return model.ErrVoucherAlreadyOwned
	}
	if u.Points < v.PointCost {
		return model.ErrInsufficientPoints
	}
	return nil
}

// Redeem returns the user after spending points on the voucher.
// The input is not modified.
func Redeem(u model.User, v model.Voucher) (model.User, error) {
	if err := CheckRedeem(u, v); err != nil {
		return u, err
	}
	u.Points -= v.PointCost
	owned := make([]string, 0, len(u.Vouchers)+1)
	owned = append(owned, u.Vouchers...)
	u.Vouchers = append(owned, v.ID)
	return u, nil
}

// Without returns ids with every occurrence of id removed, and whether any was.
func Without(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	removed := false
	for _, existing := range ids {
		if existing == id {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	return out, removed
}
