package service

import (
	"testing"

	"storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AdminOperationsRequireAdmin(t *testing.T) {
	f := newFixture(t)
	f.loginBudi()

	_, err := f.store.AddProduct(f.ctx, ProductInput{Name: "Hat", Price: 1})
	assert.ErrorIs(t, err, model.ErrForbidden)
	_, err = f.store.UpdateProduct(f.ctx, "p-shirt", ProductPatch{Price: ptr(int64(1))})
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.ErrorIs(t, f.store.DeleteProduct(f.ctx, "p-shirt"), model.ErrForbidden)
	_, err = f.store.AddCategory(f.ctx, CategoryInput{Name: "Home"})
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.ErrorIs(t, f.store.BlockUser(f.ctx, "u-sari"), model.ErrForbidden)
	assert.ErrorIs(t, f.store.DeleteVoucher(f.ctx, "v-big"), model.ErrForbidden)

	assert.Len(t, f.store.Snapshot().Products, 4)
	assert.False(t, f.user("u-sari").IsBlocked)
}

func TestStore_AddProduct(t *testing.T) {
	tests := []struct {
		name    string
		input   ProductInput
		wantErr error
	}{
		{
			name:  "valid",
			input: ProductInput{Name: " Straw Hat ", Price: 75_000, Stock: 3, CategoryID: "c-fashion", AllowOffers: true, AutoAcceptPrice: ptr(int64(70_000))},
		},
		{name: "missing name", input: ProductInput{Price: 75_000}, wantErr: model.ErrValidation},
		{name: "zero price", input: ProductInput{Name: "Hat"}, wantErr: model.ErrValidation},
		{name: "negative stock", input: ProductInput{Name: "Hat", Price: 1, Stock: -1}, wantErr: model.ErrValidation},
		{name: "bad image url", input: ProductInput{Name: "Hat", Price: 1, Image: "not a url"}, wantErr: model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.loginAdmin()

			created, err := f.store.AddProduct(f.ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, f.store.Snapshot().Products, 4)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.Equal(t, "Straw Hat", created.Name)
			assert.Equal(t, t0, created.CreatedAt)
			assert.Len(t, f.store.Snapshot().Products, 5)
		})
	}
}

func TestStore_UpdateProduct(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	updated, err := f.store.UpdateProduct(f.ctx, "p-shoes", ProductPatch{Price: ptr(int64(400_000)), Stock: ptr(0)})

	require.NoError(t, err)
	assert.Equal(t, int64(400_000), updated.Price)
	assert.Equal(t, 0, updated.Stock)
	assert.Equal(t, "Running Shoes", updated.Name)
	require.NotNil(t, updated.OriginalPrice)
	assert.True(t, updated.OnSale())

	_, err = f.store.UpdateProduct(f.ctx, "p-missing", ProductPatch{Stock: ptr(1)})
	assert.ErrorIs(t, err, model.ErrProductNotFound)

	_, err = f.store.UpdateProduct(f.ctx, "p-shoes", ProductPatch{Price: ptr(int64(-5))})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestStore_DeleteProduct(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	require.NoError(t, f.store.DeleteProduct(f.ctx, "p-mug"))
	assert.Len(t, f.store.Snapshot().Products, 3)

	assert.ErrorIs(t, f.store.DeleteProduct(f.ctx, "p-mug"), model.ErrProductNotFound)
}

func TestStore_AddCategory(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	created, err := f.store.AddCategory(f.ctx, CategoryInput{Name: "Home & Living"})
	require.NoError(t, err)
	assert.Equal(t, "home-living", created.Slug)

	created, err = f.store.AddCategory(f.ctx, CategoryInput{Name: "Toys", Slug: "kids-toys"})
	require.NoError(t, err)
	assert.Equal(t, "kids-toys", created.Slug)

	assert.Len(t, f.store.Snapshot().Categories, 3)
}

func TestStore_BlockUser(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	require.NoError(t, f.store.BlockUser(f.ctx, "u-sari"))
	assert.True(t, f.user("u-sari").IsBlocked)

	require.NoError(t, f.store.UnblockUser(f.ctx, "u-tono"))
	assert.False(t, f.user("u-tono").IsBlocked)

	assert.ErrorIs(t, f.store.BlockUser(f.ctx, "u-admin"), model.ErrValidation)
	assert.ErrorIs(t, f.store.BlockUser(f.ctx, "u-missing"), model.ErrUserNotFound)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Fashion":           "fashion",
		"  Home & Living ":  "home-living",
		"Kids' Toys 2024":   "kids-toys-2024",
		"Elektronik--Rumah": "elektronik-rumah",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, slugify(in), in)
	}
}
