package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"storefront/internal/dataservice"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// documentRepository implements dataservice.Service on the documents table.
type documentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDocumentRepository creates a PostgreSQL-backed data service.
// The documents table must exist; see database.Migrate.
func NewDocumentRepository(pool *pgxpool.Pool, logger zerolog.Logger) dataservice.Service {
	return &documentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "document").Logger(),
	}
}

// List returns matching documents in insertion order. Filter values are
// compared against the text form of the top-level JSON field.
func (r *documentRepository) List(ctx context.Context, collection string, filter dataservice.Filter) ([]json.RawMessage, error) {
	query, args := listQuery(collection, filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("collection", collection).Msg("failed to query documents")
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]json.RawMessage, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			r.logger.Error().Err(err).Str("collection", collection).Msg("failed to scan document row")
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		docs = append(docs, json.RawMessage(body))
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Str("collection", collection).Msg("error iterating document rows")
		return nil, fmt.Errorf("error iterating %s: %w", collection, err)
	}

	return docs, nil
}

// listQuery builds the SELECT for a filtered list. Field names are bound as
// parameters, never interpolated.
func listQuery(collection string, filter dataservice.Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT body FROM documents WHERE collection = $1")
	args := []any{collection}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		args = append(args, k, filter[k])
		fmt.Fprintf(&b, " AND body->>$%d::text = $%d", len(args)-1, len(args))
	}
	b.WriteString(" ORDER BY seq")

	return b.String(), args
}

func (r *documentRepository) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	query := `
		SELECT body
		FROM documents
		WHERE collection = $1 AND id = $2
	`

	var body []byte
	err := r.pool.QueryRow(ctx, query, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("collection", collection).Str("id", id).Msg("document not found")
			return nil, dataservice.ErrNotFound
		}
		r.logger.Error().Err(err).Str("collection", collection).Str("id", id).Msg("failed to query document")
		return nil, fmt.Errorf("failed to query %s/%s: %w", collection, id, err)
	}

	return body, nil
}

func (r *documentRepository) Create(ctx context.Context, collection string, doc any) (json.RawMessage, error) {
	fields, err := dataservice.Fields(doc)
	if err != nil {
		return nil, err
	}
	id := dataservice.AssignID(fields)

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, body)
		VALUES ($1, $2, $3::jsonb)
		RETURNING body
	`

	var body []byte
	err = r.pool.QueryRow(ctx, query, collection, id, string(raw)).Scan(&body)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("document %s/%s already exists", collection, id)
		}
		r.logger.Error().Err(err).Str("collection", collection).Str("id", id).Msg("failed to insert document")
		return nil, fmt.Errorf("failed to insert %s document: %w", collection, err)
	}

	r.logger.Debug().Str("collection", collection).Str("id", id).Msg("document created")
	return body, nil
}

func (r *documentRepository) Replace(ctx context.Context, collection, id string, doc any) (json.RawMessage, error) {
	fields, err := dataservice.Fields(doc)
	if err != nil {
		return nil, err
	}
	fields["id"] = id

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	query := `
		UPDATE documents
		SET body = $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
		RETURNING body
	`

	return r.update(ctx, query, collection, id, string(raw))
}

// Patch merges top-level fields with the JSONB concatenation operator.
func (r *documentRepository) Patch(ctx context.Context, collection, id string, patch map[string]any) (json.RawMessage, error) {
	fields, err := dataservice.Fields(patch)
	if err != nil {
		return nil, err
	}
	delete(fields, "id")

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	query := `
		UPDATE documents
		SET body = body || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
		RETURNING body
	`

	return r.update(ctx, query, collection, id, string(raw))
}

func (r *documentRepository) update(ctx context.Context, query, collection, id, body string) (json.RawMessage, error) {
	var out []byte
	err := r.pool.QueryRow(ctx, query, collection, id, body).Scan(&out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dataservice.ErrNotFound
		}
		r.logger.Error().Err(err).Str("collection", collection).Str("id", id).Msg("failed to update document")
		return nil, fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return out, nil
}

func (r *documentRepository) Delete(ctx context.Context, collection, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		r.logger.Error().Err(err).Str("collection", collection).Str("id", id).Msg("failed to delete document")
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return dataservice.ErrNotFound
	}
	return nil
}
