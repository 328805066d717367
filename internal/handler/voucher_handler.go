package handler

import (
	"context"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/offer"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// LoyaltyStore is the part of the store the voucher and offer endpoints use.
type LoyaltyStore interface {
	Snapshot() service.State
	MyOffers() []model.Offer
	RedeemVoucher(ctx context.Context, voucherID string) error
	AddVoucher(ctx context.Context, in service.VoucherInput) (*model.Voucher, error)
	UpdateVoucher(ctx context.Context, voucherID string, in service.VoucherPatch) (*model.Voucher, error)
	DeleteVoucher(ctx context.Context, voucherID string) error
	MakeOffer(ctx context.Context, productID string, price int64, message string) (*model.Offer, error)
	ResolveOffer(ctx context.Context, offerID string, decision offer.Decision, counterPrice int64) (*model.Offer, error)
}

// VoucherView is a voucher as seen by the signed-in user.
type VoucherView struct {
	model.Voucher
	Owned bool `json:"owned"`
}

type offerRequest struct {
	ProductID string `json:"productId"`
	Price     int64  `json:"price"`
	Message   string `json:"message"`
}

type resolveRequest struct {
	Decision     offer.Decision `json:"decision"`
	CounterPrice int64          `json:"counterPrice"`
}

// LoyaltyHandler handles voucher and offer HTTP requests.
type LoyaltyHandler struct {
	store  LoyaltyStore
	logger zerolog.Logger
}

// NewLoyaltyHandler creates a new voucher and offer handler.
func NewLoyaltyHandler(store LoyaltyStore, logger zerolog.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{
		store:  store,
		logger: logger.With().Str("handler", "loyalty").Logger(),
	}
}

// Vouchers handles GET /api/vouchers.
func (h *LoyaltyHandler) Vouchers(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	views := make([]VoucherView, 0, len(st.Vouchers))
	for _, v := range st.Vouchers {
		views = append(views, VoucherView{
			Voucher: v,
			Owned:   st.User != nil && st.User.OwnsVoucher(v.ID),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// Redeem handles POST /api/vouchers/{id}/redeem.
func (h *LoyaltyHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RedeemVoucher(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Snapshot().User)
}

// CreateVoucher handles POST /api/admin/vouchers.
func (h *LoyaltyHandler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	var in service.VoucherInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}
	v, err := h.store.AddVoucher(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// UpdateVoucher handles PATCH /api/admin/vouchers/{id}.
func (h *LoyaltyHandler) UpdateVoucher(w http.ResponseWriter, r *http.Request) {
	var in service.VoucherPatch
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}
	v, err := h.store.UpdateVoucher(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// DeleteVoucher handles DELETE /api/admin/vouchers/{id}.
func (h *LoyaltyHandler) DeleteVoucher(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteVoucher(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MakeOffer handles POST /api/offers.
func (h *LoyaltyHandler) MakeOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	o, err := h.store.MakeOffer(r.Context(), req.ProductID, req.Price, req.Message)
	if err != nil {
		if o != nil {
			h.logger.Warn().Err(err).Str("offer_id", o.ID).Msg("offer made with stale state")
			writeJSON(w, http.StatusCreated, o)
			return
		}
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// Offers handles GET /api/offers.
func (h *LoyaltyHandler) Offers(w http.ResponseWriter, r *http.Request) {
	if h.store.Snapshot().User == nil {
		writeStoreError(w, r, model.ErrNotAuthenticated, h.logger)
		return
	}
	offers := h.store.MyOffers()
	if offers == nil {
		offers = []model.Offer{}
	}
	writeJSON(w, http.StatusOK, offers)
}

// ResolveOffer handles POST /api/admin/offers/{id}/resolve.
func (h *LoyaltyHandler) ResolveOffer(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	o, err := h.store.ResolveOffer(r.Context(), r.PathValue("id"), req.Decision, req.CounterPrice)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
