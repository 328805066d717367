package voucher

import "storefront/internal/model"

// catalogRecord is one line of a catalog file. Catalog vouchers carry no ID;
// the data service assigns one on import.
type catalogRecord struct {
	Code        string `json:"code"`
	Discount    int64  `json:"discount"`
	MinSpend    int64  `json:"minSpend"`
	PointCost   int64  `json:"pointCost"`
	Description string `json:"description"`
}

func (r catalogRecord) toModel() model.Voucher {
	return model.Voucher{
		Code:        r.Code,
		Discount:    r.Discount,
		MinSpend:    r.MinSpend,
		PointCost:   r.PointCost,
		Description: r.Description,
	}
}
