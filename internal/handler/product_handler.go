package handler

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CatalogStore is the part of the store the catalogue endpoints use.
type CatalogStore interface {
	Snapshot() service.State
	EffectivePrice(productID string) (int64, error)
	AddProduct(ctx context.Context, in service.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, productID string, in service.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	AddCategory(ctx context.Context, in service.CategoryInput) (*model.Category, error)
}

// ProductView is a product with the price the signed-in user would pay.
type ProductView struct {
	model.Product
	EffectivePrice int64 `json:"effectivePrice"`
}

// ProductHandler handles product and category HTTP requests.
type ProductHandler struct {
	store  CatalogStore
	logger zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(store CatalogStore, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		store:  store,
		logger: logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products with pagination and an optional category filter.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.queryInt(w, r, "limit", 20)
	if !ok {
		return
	}
	offset, ok := h.queryInt(w, r, "offset", 0)
	if !ok {
		return
	}
	if limit < 1 || offset < 0 {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "limit must be positive and offset non-negative", h.logger)
		return
	}
	category := r.URL.Query().Get("category")

	var views []ProductView
	for _, p := range h.store.Snapshot().Products {
		if category != "" && p.CategoryID != category {
			continue
		}
		views = append(views, h.view(p))
	}

	start := min(offset, len(views))
	end := min(start+limit, len(views))
	page := views[start:end]
	if page == nil {
		page = []ProductView{}
	}
	writeJSON(w, http.StatusOK, page)
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, p := range h.store.Snapshot().Products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, h.view(p))
			return
		}
	}
	writeStoreError(w, r, model.ErrProductNotFound, h.logger)
}

// Categories handles GET /api/categories.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := h.store.Snapshot().Categories
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// Create handles POST /api/admin/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}
	p, err := h.store.AddProduct(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PATCH /api/admin/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.ProductPatch
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}
	p, err := h.store.UpdateProduct(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/admin/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateCategory handles POST /api/admin/categories.
func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if !decodeJSON(w, r, &in, h.logger) {
		return
	}
	c, err := h.store.AddCategory(r.Context(), in)
	if err != nil {
		writeStoreError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ProductHandler) view(p model.Product) ProductView {
	price, err := h.store.EffectivePrice(p.ID)
	if err != nil {
		price = p.Price
	}
	return ProductView{Product: p, EffectivePrice: price}
}

func (h *ProductHandler) queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "invalid "+name+" parameter", h.logger)
		return 0, false
	}
	return v, true
}
