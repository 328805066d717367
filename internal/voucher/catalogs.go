package voucher

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// LoadCatalogs loads every catalog file concurrently and merges them in path
// order. When a code appears in several files the earliest file wins.
func LoadCatalogs(ctx context.Context, paths []string, loader Loader, logger zerolog.Logger) (Catalog, error) {
	logger = logger.With().Str("component", "voucher-catalogs").Logger()

	type loadResult struct {
		index   int
		catalog Catalog
		err     error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			catalog, err := loader.Load(ctx, path)
			resultChan <- loadResult{index: index, catalog: catalog, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	merged := newMapCatalog(0)
	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", paths[i]).
				Msg("failed to load voucher catalog")
			return nil, fmt.Errorf("failed to load voucher catalog %s: %w", paths[i], result.err)
		}

		dropped := 0
		for _, v := range result.catalog.All() {
			if !merged.Add(v) {
				dropped++
			}
		}
		logger.Debug().
			Str("file", paths[i]).
			Int("size", result.catalog.Size()).
			Int("duplicates", dropped).
			Msg("voucher catalog merged")
	}

	logger.Info().
		Int("file_count", len(paths)).
		Int("total_vouchers", merged.Size()).
		Msg("voucher catalogs loaded")

	return merged, nil
}
