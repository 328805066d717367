package voucher

import (
	"context"
	"fmt"

	"storefront/internal/dataservice"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Importer seeds the data service with catalog vouchers.
type Importer struct {
	data   dataservice.Service
	logger zerolog.Logger
}

// NewImporter creates an importer writing to data.
func NewImporter(data dataservice.Service, logger zerolog.Logger) *Importer {
	return &Importer{
		data:   data,
		logger: logger.With().Str("component", "voucher-importer").Logger(),
	}
}

// ImportResult counts what an import did.
type ImportResult struct {
	Created int
	Skipped int
}

// Import creates every catalog voucher whose code is not already stored.
// Existing vouchers are never modified.
func (i *Importer) Import(ctx context.Context, catalog Catalog) (ImportResult, error) {
	var res ImportResult

	existing, err := dataservice.ListAs[model.Voucher](ctx, i.data, dataservice.Vouchers, nil)
	if err != nil {
		return res, fmt.Errorf("failed to list vouchers: %w", err)
	}
	stored := NewCatalog(existing...)

	for _, v := range catalog.All() {
		if stored.Contains(v.Code) {
			res.Skipped++
			continue
		}
		v.ID = ""
		if _, err := i.data.Create(ctx, dataservice.Vouchers, v); err != nil {
			i.logger.Error().Err(err).Str("code", v.Code).Msg("failed to import voucher")
			return res, fmt.Errorf("failed to import voucher %s: %w", v.Code, err)
		}
		res.Created++
	}

	i.logger.Info().
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Msg("voucher catalog imported")

	return res, nil
}
