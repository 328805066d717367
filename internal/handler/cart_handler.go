package handler

import (
	"context"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CartStore is the part of the store the cart endpoints use.
type CartStore interface {
	CurrentUser() *model.User
	CartView() service.CartView
	AddToCart(ctx context.Context, productID string, qty int) error
	UpdateCartQuantity(ctx context.Context, productID string, qty int) error
	RemoveFromCart(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error
	ApplyVoucher(ctx context.Context, voucherID string) error
	RemoveVoucher()
}

// CartResponse is the cart with its priced summary.
type CartResponse struct {
	Items          []model.CartItem `json:"items"`
	Summary        pricing.Summary  `json:"summary"`
	AppliedVoucher *model.Voucher   `json:"appliedVoucher,omitempty"`
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type voucherRequest struct {
	VoucherID string `json:"voucherId"`
}

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	store  CartStore
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(store CartStore, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		store:  store,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store.CurrentUser() == nil {
		writeStoreError(w, r, model.ErrNotAuthenticated, h.logger)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := h.store.AddToCart(r.Context(), req.ProductID, req.Quantity); err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// UpdateItem handles PATCH /api/cart/items/{productId}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if err := h.store.UpdateCartQuantity(r.Context(), r.PathValue("productId"), req.Quantity); err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// RemoveItem handles DELETE /api/cart/items/{productId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveFromCart(r.Context(), r.PathValue("productId")); err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearCart(r.Context()); err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// ApplyVoucher handles PUT /api/cart/voucher.
func (h *CartHandler) ApplyVoucher(w http.ResponseWriter, r *http.Request) {
	var req voucherRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if err := h.store.ApplyVoucher(r.Context(), req.VoucherID); err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// RemoveVoucher handles DELETE /api/cart/voucher.
func (h *CartHandler) RemoveVoucher(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveVoucher()
	h.writeCart(w, http.StatusOK)
}

func (h *CartHandler) writeCart(w http.ResponseWriter, status int) {
	view := h.store.CartView()
	if view.Items == nil {
		view.Items = []model.CartItem{}
	}
	writeJSON(w, status, CartResponse{
		Items:          view.Items,
		Summary:        view.Summary,
		AppliedVoucher: view.AppliedVoucher,
	})
}
