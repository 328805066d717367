package model

// Voucher is a flat discount redeemable with loyalty points.
type Voucher struct {
	ID          string `json:"id,omitempty"`
	Code        string `json:"code"`
	Discount    int64  `json:"discount"`
	MinSpend    int64  `json:"minSpend"`
	PointCost   int64  `json:"pointCost"`
	Description string `json:"description,omitempty"`
}
