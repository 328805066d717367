//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type record struct {
	Code        string `json:"code"`
	Discount    int64  `json:"discount"`
	MinSpend    int64  `json:"minSpend"`
	PointCost   int64  `json:"pointCost"`
	Description string `json:"description"`
}

// Writes sample voucher catalogs for CATALOG_FILES.
// FREESHIP appears in both files. The earliest listed file wins, so with
// base first the seasonal FREESHIP is dropped on import.
func main() {
	dataDir := "data/vouchers"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	catalogs := map[string][]record{
		"base.jsonl.gz": {
			{Code: "FREESHIP", Discount: 30_000, MinSpend: 300_000, PointCost: 100, Description: "Shipping on us"},
			{Code: "SAVE50K", Discount: 50_000, MinSpend: 500_000, PointCost: 500, Description: "Rp50.000 off big carts"},
			{Code: "WELCOME10K", Discount: 10_000, MinSpend: 100_000, PointCost: 0, Description: "Welcome gift"},
		},
		"seasonal.jsonl.gz": {
			{Code: "FREESHIP", Discount: 30_000, MinSpend: 250_000, PointCost: 100, Description: "Holiday free shipping"},
			{Code: "LEBARAN100K", Discount: 100_000, MinSpend: 1_000_000, PointCost: 900, Description: "Lebaran special"},
		},
	}

	for filename, vouchers := range catalogs {
		filePath := filepath.Join(dataDir, filename)

		if err := createCatalogFile(filePath, vouchers); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d vouchers\n", filePath, len(vouchers))
	}

	fmt.Println("\nSet CATALOG_FILES=data/vouchers/base.jsonl.gz,data/vouchers/seasonal.jsonl.gz to import them.")
}

func createCatalogFile(filePath string, vouchers []record) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for _, v := range vouchers {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to write voucher %s: %w", v.Code, err)
		}
	}

	return nil
}
