package voucher

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading gzipped catalog files from disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalog loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "voucher-loader").Logger(),
	}
}

// Load reads a gzipped catalog file with one JSON voucher per line.
func (l *fileLoader) Load(ctx context.Context, path string) (Catalog, error) {
	l.logger.Info().Str("file", path).Msg("loading voucher catalog")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open voucher catalog")
		return nil, fmt.Errorf("failed to open voucher catalog %s: %w", path, err)
	}
	defer file.Close()

	catalog, err := readCatalog(ctx, file, path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read voucher catalog")
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Int("vouchers_loaded", catalog.Size()).
		Msg("voucher catalog loaded successfully")

	return catalog, nil
}

// readCatalog decodes a gzip stream of JSON lines. Blank lines are skipped;
// a malformed line or a voucher without a code fails the whole catalog.
func readCatalog(ctx context.Context, r io.Reader, source string) (*mapCatalog, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	catalog := newMapCatalog(64)

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec catalogRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("invalid voucher on line %d of %s: %w", lineNo, source, err)
		}
		v := rec.toModel()
		if NormalizeCode(v.Code) == "" {
			return nil, fmt.Errorf("voucher on line %d of %s has no code", lineNo, source)
		}
		catalog.Add(v)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading voucher catalog %s: %w", source, err)
	}

	return catalog, nil
}
