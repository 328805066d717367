// Package pricing derives cart totals from cart lines and an applied voucher.
// Everything here is a pure function of its inputs.
package pricing

import (
	"storefront/internal/model"
)

// Config holds the shipping and loyalty thresholds.
type Config struct {
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold int64

	// ShippingFee is the flat fee charged below the threshold.
	ShippingFee int64

	// PointsDivisor is the spend per loyalty point earned.
	PointsDivisor int64
}

// DefaultConfig returns the storefront's standard thresholds.
func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: 500_000,
		ShippingFee:           30_000,
		PointsDivisor:         10_000,
	}
}

// Summary is the derived pricing of a cart.
type Summary struct {
	Subtotal        int64 `json:"subtotal"`
	ShippingFee     int64 `json:"shippingFee"`
	VoucherDiscount int64 `json:"voucherDiscount"`
	Total           int64 `json:"total"`
	PointsEarned    int64 `json:"pointsEarned"`
}

// Calculator computes cart summaries.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator. Fields in cfg that are zero or negative
// fall back to the defaults.
func NewCalculator(cfg Config) *Calculator {
	def := DefaultConfig()
	if cfg.FreeShippingThreshold <= 0 {
		cfg.FreeShippingThreshold = def.FreeShippingThreshold
	}
	if cfg.ShippingFee <= 0 {
		cfg.ShippingFee = def.ShippingFee
	}
	if cfg.PointsDivisor <= 0 {
		cfg.PointsDivisor = def.PointsDivisor
	}
	return &Calculator{cfg: cfg}
}

// Config returns the thresholds in use.
func (c *Calculator) Config() Config {
	return c.cfg
}

// Subtotal sums price times quantity over the cart.
func Subtotal(items []model.CartItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	return subtotal
}

// ShippingFee returns the fee for a subtotal. An empty cart ships nothing.
func (c *Calculator) ShippingFee(subtotal int64) int64 {
	if subtotal <= 0 || subtotal >= c.cfg.FreeShippingThreshold {
		return 0
	}
	return c.cfg.ShippingFee
}

// VoucherDiscount returns the voucher's discount when it applies to the subtotal.
func VoucherDiscount(subtotal int64, v *model.Voucher) int64 {
	if CheckVoucher(subtotal, v) != nil || v == nil {
		return 0
	}
	return v.Discount
}

// CheckVoucher reports whether a voucher may be applied to a subtotal.
func CheckVoucher(subtotal int64, v *model.Voucher) error {
	if v == nil {
		return nil
	}
	if subtotal < v.MinSpend {
		return model.ErrVoucherMinSpend
	}
	return nil
}

// PointsEarned returns the loyalty points earned for a total.
func (c *Calculator) PointsEarned(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return total / c.cfg.PointsDivisor
}

// Calculate derives the full summary for a cart and an optional voucher.
func (c *Calculator) Calculate(items []model.CartItem, v *model.Voucher) Summary {
	subtotal := Subtotal(items)
	shipping := c.ShippingFee(subtotal)
	discount := VoucherDiscount(subtotal, v)

	total := subtotal + shipping - discount
	if total < 0 {
		total = 0
	}

	return Summary{
		Subtotal:        subtotal,
		ShippingFee:     shipping,
		VoucherDiscount: discount,
		Total:           total,
		PointsEarned:    c.PointsEarned(total),
	}
}
