package handler

import (
	"context"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderStore is the part of the store the order endpoints use.
type OrderStore interface {
	CurrentUser() *model.User
	MyOrders() []model.Order
	Checkout(ctx context.Context, in service.CheckoutInput) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
}

type orderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	store  OrderStore
	logger zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(store OrderStore, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		store:  store,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// Checkout handles POST /api/checkout.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in service.CheckoutInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}

	order, err := h.store.Checkout(r.Context(), in)
	if err != nil {
		// The order exists even when the follow-up refresh failed.
		if order != nil {
			h.logger.Warn().Err(err).Str("order_id", order.ID).Msg("order placed with stale state")
			writeJSON(w, http.StatusCreated, order)
			return
		}
		writeStoreError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store.CurrentUser() == nil {
		writeStoreError(w, r, model.ErrNotAuthenticated, h.logger)
		return
	}
	orders := h.store.MyOrders()
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Cancel handles POST /api/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.CancelOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/admin/orders/{id}.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	order, err := h.store.UpdateOrderStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
