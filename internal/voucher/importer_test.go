package voucher

import (
	"context"
	"testing"

	"storefront/internal/dataservice"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImporter_SkipsExistingCodes(t *testing.T) {
	ctx := context.Background()
	data := dataservice.NewMemory()

	_, err := data.Create(ctx, dataservice.Vouchers, model.Voucher{ID: "v1", Code: "FREESHIP", Discount: 10})
	require.NoError(t, err)

	catalog := NewCatalog(
		model.Voucher{Code: "freeship", Discount: 30_000},
		model.Voucher{Code: "SAVE50K", Discount: 50_000, MinSpend: 500_000, PointCost: 300},
	)

	res, err := NewImporter(data, zerolog.Nop()).Import(ctx, catalog)

	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 1, Skipped: 1}, res)

	stored, err := dataservice.ListAs[model.Voucher](ctx, data, dataservice.Vouchers, nil)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, int64(10), stored[0].Discount, "existing voucher untouched")
	assert.Equal(t, "SAVE50K", stored[1].Code)
	assert.NotEmpty(t, stored[1].ID)

	res, err = NewImporter(data, zerolog.Nop()).Import(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 2}, res)
}
