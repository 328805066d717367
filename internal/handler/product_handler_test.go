package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_GetAll(t *testing.T) {
	store, _ := newTestStore(t)
	handler := NewProductHandler(store, zerolog.Nop())

	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
		expectedIDs    []string
	}{
		{
			name:           "Default pagination",
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{"p-1", "p-2", "p-3"},
		},
		{
			name:           "Custom pagination",
			queryParams:    "?limit=1&offset=1",
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{"p-2"},
		},
		{
			name:           "Category filter",
			queryParams:    "?category=c-2",
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{"p-3"},
		},
		{
			name:           "Offset past the end",
			queryParams:    "?offset=10",
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{},
		},
		{
			name:           "Invalid limit",
			queryParams:    "?limit=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Zero limit",
			queryParams:    "?limit=0",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Negative offset",
			queryParams:    "?offset=-1",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			handler.GetAll(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, model.ErrCodeValidation, decodeError(t, w).Error)
				return
			}

			var products []ProductView
			require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	store, _ := newTestStore(t)
	handler := NewProductHandler(store, zerolog.Nop())

	t.Run("Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/p-2", nil)
		req.SetPathValue("id", "p-2")
		w := httptest.NewRecorder()

		handler.GetByID(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var p ProductView
		require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
		assert.Equal(t, "Shoes", p.Name)
		assert.Equal(t, int64(450_000), p.EffectivePrice)
	})

	t.Run("Not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/nope", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()

		handler.GetByID(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeProductNotFound, decodeError(t, w).Error)
	})
}

func TestProductHandler_EffectivePriceFollowsAcceptedOffer(t *testing.T) {
	store, _ := newTestStore(t)
	products := NewProductHandler(store, zerolog.Nop())
	loyalty := NewLoyaltyHandler(store, zerolog.Nop())

	signIn(t, store, "budi@example.com", model.RoleUser)
	w := httptest.NewRecorder()
	loyalty.MakeOffer(w, httptest.NewRequest(http.MethodPost, "/api/offers",
		jsonBody(t, `{"productId":"p-1","price":95000,"message":"please"}`)))
	require.Equal(t, http.StatusCreated, w.Code)
	var made model.Offer
	require.NoError(t, json.NewDecoder(w.Body).Decode(&made))
	assert.Equal(t, model.OfferPending, made.Status)

	signIn(t, store, "admin@example.com", model.RoleAdmin)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/offers/"+made.ID+"/resolve", jsonBody(t, `{"decision":"accept"}`))
	req.SetPathValue("id", made.ID)
	w = httptest.NewRecorder()
	loyalty.ResolveOffer(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	priceFor := func(t *testing.T) ProductView {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/products/p-1", nil)
		req.SetPathValue("id", "p-1")
		w := httptest.NewRecorder()
		products.GetByID(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		var p ProductView
		require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
		return p
	}

	// The admin sees the listed price; the offer belongs to Budi.
	assert.Equal(t, int64(100_000), priceFor(t).EffectivePrice)

	signIn(t, store, "budi@example.com", model.RoleUser)
	p := priceFor(t)
	assert.Equal(t, int64(100_000), p.Price)
	assert.Equal(t, int64(95_000), p.EffectivePrice)
}

func TestProductHandler_Admin(t *testing.T) {
	store, _ := newTestStore(t)
	handler := NewProductHandler(store, zerolog.Nop())

	t.Run("Create requires admin", func(t *testing.T) {
		signIn(t, store, "budi@example.com", model.RoleUser)

		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/admin/products",
			jsonBody(t, `{"name":"Hat","price":75000,"stock":3,"categoryId":"c-1"}`)))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, model.ErrCodeForbidden, decodeError(t, w).Error)
	})

	signIn(t, store, "admin@example.com", model.RoleAdmin)

	var created model.Product
	t.Run("Create", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/admin/products",
			jsonBody(t, `{"name":"Hat","price":75000,"stock":3,"categoryId":"c-1"}`)))

		require.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.NotEmpty(t, created.ID)
		assert.Len(t, store.Snapshot().Products, 4)
	})

	t.Run("Create with invalid price", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/admin/products",
			jsonBody(t, `{"name":"Free","price":0}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeValidation, decodeError(t, w).Error)
	})

	t.Run("Update", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/products/"+created.ID, jsonBody(t, `{"stock":9}`))
		req.SetPathValue("id", created.ID)
		w := httptest.NewRecorder()

		handler.Update(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var updated model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, 9, updated.Stock)
		assert.Equal(t, "Hat", updated.Name)
	})

	t.Run("Delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/products/"+created.ID, nil)
		req.SetPathValue("id", created.ID)
		w := httptest.NewRecorder()

		handler.Delete(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Len(t, store.Snapshot().Products, 3)
	})

	t.Run("Create category", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.CreateCategory(w, httptest.NewRequest(http.MethodPost, "/api/admin/categories",
			jsonBody(t, `{"name":"Home Goods"}`)))

		require.Equal(t, http.StatusCreated, w.Code)
		var c model.Category
		require.NoError(t, json.NewDecoder(w.Body).Decode(&c))
		assert.Equal(t, "home-goods", c.Slug)

		w = httptest.NewRecorder()
		handler.Categories(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
		var all []model.Category
		require.NoError(t, json.NewDecoder(w.Body).Decode(&all))
		assert.Len(t, all, 2)
	})
}
