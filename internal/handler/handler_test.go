package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"storefront/internal/dataservice"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/offer"
	"storefront/internal/pricing"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a store over an in-memory data service holding a
// small catalogue, one shopper and one admin.
func newTestStore(t *testing.T) (*service.Store, dataservice.Service) {
	t.Helper()
	ctx := context.Background()
	data := dataservice.NewMemory()

	accept := int64(90_000)
	docs := []struct {
		collection string
		doc        any
	}{
		{dataservice.Users, model.User{ID: "u-1", Name: "Budi", Email: "budi@example.com", Role: model.RoleUser, Points: 300, Vouchers: []string{"v-1"}, Wishlist: []string{}}},
		{dataservice.Users, model.User{ID: "u-admin", Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin, Vouchers: []string{}, Wishlist: []string{}}},
		{dataservice.Categories, model.Category{ID: "c-1", Name: "Fashion", Slug: "fashion"}},
		{dataservice.Products, model.Product{ID: "p-1", Name: "Shirt", Price: 100_000, Stock: 5, CategoryID: "c-1", AllowOffers: true, AutoAcceptPrice: &accept}},
		{dataservice.Products, model.Product{ID: "p-2", Name: "Shoes", Price: 450_000, Stock: 2, CategoryID: "c-1"}},
		{dataservice.Products, model.Product{ID: "p-3", Name: "Lamp", Price: 80_000, Stock: 1, CategoryID: "c-2"}},
		{dataservice.Vouchers, model.Voucher{ID: "v-1", Code: "FREESHIP", Discount: 30_000, MinSpend: 300_000, PointCost: 100}},
		{dataservice.Vouchers, model.Voucher{ID: "v-2", Code: "BIG", Discount: 50_000, MinSpend: 500_000, PointCost: 500}},
	}
	for _, d := range docs {
		_, err := data.Create(ctx, d.collection, d.doc)
		require.NoError(t, err)
	}

	store := service.NewStore(
		data,
		session.NewFileStore(filepath.Join(t.TempDir(), "session.json"), zerolog.Nop()),
		events.NewNopPublisher(),
		pricing.NewCalculator(pricing.DefaultConfig()),
		offer.NewPricer(offer.DefaultValidity),
		zerolog.Nop(),
	)
	require.NoError(t, store.Refresh(ctx))
	return store, data
}

func signIn(t *testing.T, store *service.Store, email string, role model.Role) {
	t.Helper()
	_, err := store.Login(context.Background(), email, role)
	require.NoError(t, err)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestDomainStatus(t *testing.T) {
	tests := []struct {
		err  *model.DomainError
		want int
	}{
		{model.ErrValidation, http.StatusBadRequest},
		{model.ErrInvalidQuantity, http.StatusBadRequest},
		{model.ErrVoucherMinSpend, http.StatusBadRequest},
		{model.ErrInsufficientPoints, http.StatusBadRequest},
		{model.ErrEmptyCart, http.StatusBadRequest},
		{model.ErrNotAuthenticated, http.StatusUnauthorized},
		{model.ErrInvalidCredentials, http.StatusUnauthorized},
		{model.ErrForbidden, http.StatusForbidden},
		{model.ErrUserBlocked, http.StatusForbidden},
		{model.ErrVoucherNotOwned, http.StatusForbidden},
		{model.ErrProductNotFound, http.StatusNotFound},
		{model.ErrOrderNotFound, http.StatusNotFound},
		{model.ErrCartItemNotFound, http.StatusNotFound},
		{model.ErrEmailTaken, http.StatusConflict},
		{model.ErrInsufficientStock, http.StatusConflict},
		{model.ErrInvalidOrderTransition, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.want, domainStatus(tt.err.Code))
		})
	}
}

func TestWriteStoreError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "domain error",
			err:        model.ErrVoucherMinSpend,
			wantStatus: http.StatusBadRequest,
			wantCode:   model.ErrCodeVoucherMinSpend,
		},
		{
			name:       "wrapped domain error",
			err:        fmt.Errorf("failed to update order: %w", model.ErrOrderNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   model.ErrCodeOrderNotFound,
		},
		{
			name:       "refresh failed after write",
			err:        fmt.Errorf("%w: %w", service.ErrRefreshFailed, errors.New("connection refused")),
			wantStatus: http.StatusBadGateway,
			wantCode:   model.ErrCodeDataServiceUnavailable,
		},
		{
			name:       "data service status",
			err:        fmt.Errorf("failed to create order: %w", &dataservice.StatusError{Method: "POST", Path: "/orders", StatusCode: 503}),
			wantStatus: http.StatusBadGateway,
			wantCode:   model.ErrCodeDataServiceUnavailable,
		},
		{
			name:       "anything else",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()

			writeStoreError(w, req, tt.err, zerolog.Nop())

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
	}{
		{name: "valid", body: `{"voucherId":"v-1"}`, wantOK: true},
		{name: "malformed", body: `{"voucherId":`},
		{name: "unknown field", body: `{"voucher":"v-1"}`},
		{name: "empty", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			var dst voucherRequest
			ok := decodeJSON(w, req, &dst, zerolog.Nop())

			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, model.ErrCodeInvalidJSON, decodeError(t, w).Error)
			}
		})
	}
}
