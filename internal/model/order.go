package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipping  OrderStatus = "shipping"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderShipping, OrderCancelled},
	OrderShipping: {OrderCompleted, OrderCancelled},
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipping, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order represents a placed customer order. Only Status changes after creation.
type Order struct {
	ID              string      `json:"id,omitempty"`
	UserID          string      `json:"userId"`
	Items           []OrderItem `json:"items"`
	Subtotal        int64       `json:"subtotal"`
	ShippingFee     int64       `json:"shippingFee"`
	Total           int64       `json:"total"`
	Status          OrderStatus `json:"status"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	VoucherID       *string     `json:"voucherId,omitempty"`
	VoucherDiscount int64       `json:"voucherDiscount,omitempty"`
	PointsEarned    int64       `json:"pointsEarned"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// OrderItem is a line in an order. Price is a snapshot taken at checkout.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}
