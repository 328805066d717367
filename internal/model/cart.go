package model

// CartRow is the persisted form of a cart line in the carts collection.
type CartRow struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	PriceUsed int64  `json:"priceUsed"`
}

// CartItem is a cart row joined with the live product.
type CartItem struct {
	RowID     string  `json:"rowId"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	PriceUsed int64   `json:"priceUsed"`
	Product   Product `json:"product"`
}

// LineTotal is the line's contribution to the subtotal.
func (c CartItem) LineTotal() int64 {
	return c.PriceUsed * int64(c.Quantity)
}
