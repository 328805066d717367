package pricing

import (
	"slices"
	"testing"

	"storefront/internal/model"

	"github.com/stretchr/testify/assert"
)

func line(price int64, qty int) model.CartItem {
	return model.CartItem{PriceUsed: price, Quantity: qty}
}

func TestCalculate(t *testing.T) {
	freeship := &model.Voucher{Code: "FREESHIP", Discount: 30_000, MinSpend: 300_000}
	big := &model.Voucher{Code: "BIG", Discount: 200_000, MinSpend: 0}

	tests := []struct {
		name     string
		items    []model.CartItem
		voucher  *model.Voucher
		expected Summary
	}{
		{
			name:     "Empty cart",
			items:    nil,
			expected: Summary{},
		},
		{
			name:    "Below free shipping with applicable voucher",
			items:   []model.CartItem{line(150_000, 3)},
			voucher: freeship,
			expected: Summary{
				Subtotal:        450_000,
				ShippingFee:     30_000,
				VoucherDiscount: 30_000,
				Total:           450_000,
				PointsEarned:    45,
			},
		},
		{
			name:  "Free shipping at threshold",
			items: []model.CartItem{line(500_000, 1)},
			expected: Summary{
				Subtotal:     500_000,
				Total:        500_000,
				PointsEarned: 50,
			},
		},
		{
			name:  "No voucher above threshold",
			items: []model.CartItem{line(200_000, 2), line(100_000, 2)},
			expected: Summary{
				Subtotal:     600_000,
				Total:        600_000,
				PointsEarned: 60,
			},
		},
		{
			name:    "Voucher below min spend is ignored",
			items:   []model.CartItem{line(100_000, 1)},
			voucher: freeship,
			expected: Summary{
				Subtotal:     100_000,
				ShippingFee:  30_000,
				Total:        130_000,
				PointsEarned: 13,
			},
		},
		{
			name:    "Total clamps at zero",
			items:   []model.CartItem{line(50_000, 1)},
			voucher: big,
			expected: Summary{
				Subtotal:        50_000,
				ShippingFee:     30_000,
				VoucherDiscount: 200_000,
				Total:           0,
				PointsEarned:    0,
			},
		},
		{
			name:  "Points are floored",
			items: []model.CartItem{line(19_999, 1)},
			expected: Summary{
				Subtotal:     19_999,
				ShippingFee:  30_000,
				Total:        49_999,
				PointsEarned: 4,
			},
		},
	}

	calc := NewCalculator(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Calculate(tt.items, tt.voucher)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got.Total, int64(0))
			assert.Equal(t, max(0, got.Subtotal+got.ShippingFee-got.VoucherDiscount), got.Total)
			assert.Equal(t, got.Total/10_000, got.PointsEarned)
		})
	}
}

func TestCalculate_OrderIndependent(t *testing.T) {
	calc := NewCalculator(DefaultConfig())
	items := []model.CartItem{line(120_000, 1), line(35_000, 4), line(9_900, 7)}
	v := &model.Voucher{Discount: 20_000, MinSpend: 200_000}

	forward := calc.Calculate(items, v)

	reversed := slices.Clone(items)
	slices.Reverse(reversed)

	assert.Equal(t, forward, calc.Calculate(reversed, v))
	assert.Equal(t, forward, calc.Calculate(items, v), "repeated calculation must be stable")
}

func TestCheckVoucher(t *testing.T) {
	v := &model.Voucher{MinSpend: 300_000}

	assert.ErrorIs(t, CheckVoucher(299_999, v), model.ErrVoucherMinSpend)
	assert.NoError(t, CheckVoucher(300_000, v))
	assert.NoError(t, CheckVoucher(0, nil))
}

func TestNewCalculator_Defaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero values", cfg: Config{}},
		{name: "negative values", cfg: Config{FreeShippingThreshold: -1, ShippingFee: -1, PointsDivisor: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator(tt.cfg)

			assert.Equal(t, DefaultConfig(), calc.Config())
			assert.Equal(t, int64(30_000), calc.ShippingFee(100_000))
		})
	}
}

func TestNewCalculator_CustomThresholds(t *testing.T) {
	calc := NewCalculator(Config{FreeShippingThreshold: 100, ShippingFee: 10, PointsDivisor: 5})

	got := calc.Calculate([]model.CartItem{line(50, 1)}, nil)

	assert.Equal(t, Summary{Subtotal: 50, ShippingFee: 10, Total: 60, PointsEarned: 12}, got)
}
