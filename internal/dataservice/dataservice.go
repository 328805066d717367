package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names exposed by the data service.
const (
	Products        = "products"
	Categories      = "categories"
	Users           = "users"
	Orders          = "orders"
	Offers          = "offers"
	Vouchers        = "vouchers"
	Carts           = "carts"
	Addresses       = "addresses"
	LoginHistory    = "loginHistory"
	ActiveSessions  = "activeSessions"
	ContactMessages = "contactMessages"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Filter restricts a list to documents whose top-level fields equal the given values.
type Filter map[string]string

// Service is a generic resource store holding JSON documents grouped by collection.
// It offers no transactions and no concurrency guarantees.
type Service interface {
	// List returns every document of a collection matching the filter.
	// A nil filter matches everything.
	List(ctx context.Context, collection string, filter Filter) ([]json.RawMessage, error)

	// Get returns a single document by ID.
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)

	// Create stores a new document and returns it as persisted.
	// A missing "id" field is assigned by the service.
	Create(ctx context.Context, collection string, doc any) (json.RawMessage, error)

	// Replace overwrites a document entirely.
	Replace(ctx context.Context, collection, id string, doc any) (json.RawMessage, error)

	// Patch merges the given top-level fields into a document.
	Patch(ctx context.Context, collection, id string, fields map[string]any) (json.RawMessage, error)

	// Delete removes a document.
	Delete(ctx context.Context, collection, id string) error
}

// ListAs lists a collection and decodes every document into T.
func ListAs[T any](ctx context.Context, s Service, collection string, filter Filter) ([]T, error) {
	docs, err := s.List(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// GetAs fetches a document and decodes it into T.
func GetAs[T any](ctx context.Context, s Service, collection, id string) (*T, error) {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return decode[T](collection, doc)
}

// CreateAs creates a document and decodes the persisted form into T.
func CreateAs[T any](ctx context.Context, s Service, collection string, doc any) (*T, error) {
	raw, err := s.Create(ctx, collection, doc)
	if err != nil {
		return nil, err
	}
	return decode[T](collection, raw)
}

// ReplaceAs replaces a document and decodes the persisted form into T.
func ReplaceAs[T any](ctx context.Context, s Service, collection, id string, doc any) (*T, error) {
	raw, err := s.Replace(ctx, collection, id, doc)
	if err != nil {
		return nil, err
	}
	return decode[T](collection, raw)
}

// PatchAs patches a document and decodes the persisted form into T.
func PatchAs[T any](ctx context.Context, s Service, collection, id string, fields map[string]any) (*T, error) {
	raw, err := s.Patch(ctx, collection, id, fields)
	if err != nil {
		return nil, err
	}
	return decode[T](collection, raw)
}

func decode[T any](collection string, raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
	}
	return &v, nil
}
