package handler

import (
	"context"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// AccountStore is the part of the store the session and profile endpoints use.
type AccountStore interface {
	CurrentUser() *model.User
	Login(ctx context.Context, email string, role model.Role) (*model.User, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	UpdateProfile(ctx context.Context, in service.ProfileInput) (*model.User, error)
	ToggleWishlist(ctx context.Context, productID string) (bool, error)
	AddAddress(ctx context.Context, in service.AddressInput) (*model.Address, error)
	Addresses(ctx context.Context) ([]model.Address, error)
	SubmitContact(ctx context.Context, in service.ContactInput) (*model.ContactMessage, error)
	BlockUser(ctx context.Context, userID string) error
	UnblockUser(ctx context.Context, userID string) error
}

type loginRequest struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

type wishlistResponse struct {
	ProductID  string `json:"productId"`
	Wishlisted bool   `json:"wishlisted"`
}

type blockRequest struct {
	Blocked bool `json:"isBlocked"`
}

// AccountHandler handles session, profile and user administration requests.
type AccountHandler struct {
	store  AccountStore
	logger zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(store AccountStore, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		store:  store,
		logger: logger.With().Str("handler", "account").Logger(),
	}
}

// Login handles POST /api/session.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	u, err := h.store.Login(r.Context(), req.Email, req.Role)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Logout handles DELETE /api/session.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Logout(r.Context()); err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register handles POST /api/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}
	u, err := h.store.Register(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Me handles GET /api/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := h.store.CurrentUser()
	if u == nil {
		writeStoreError(w, r, model.ErrNotAuthenticated, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateProfile handles PATCH /api/me.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in service.ProfileInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}
	u, err := h.store.UpdateProfile(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ToggleWishlist handles POST /api/wishlist/{productId}.
func (h *AccountHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	added, err := h.store.ToggleWishlist(r.Context(), productID)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, wishlistResponse{ProductID: productID, Wishlisted: added})
}

// Addresses handles GET /api/addresses.
func (h *AccountHandler) Addresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.store.Addresses(r.Context())
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	if addrs == nil {
		addrs = []model.Address{}
	}
	writeJSON(w, http.StatusOK, addrs)
}

// AddAddress handles POST /api/addresses.
func (h *AccountHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var in service.AddressInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}
	a, err := h.store.AddAddress(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Contact handles POST /api/contact.
func (h *AccountHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}
	msg, err := h.store.SubmitContact(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// SetBlocked handles PATCH /api/admin/users/{id}.
func (h *AccountHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	set := h.store.UnblockUser
	if req.Blocked {
		set = h.store.BlockUser
	}
	if err := set(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
